package services

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRateLimiterWindow(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := &memoryRateLimiter{
		windows: map[string]*memoryWindow{},
		now:     func() time.Time { return clock },
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "user:a", 3, time.Hour)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if allowed, _ := limiter.Allow(ctx, "user:a", 3, time.Hour); allowed {
		t.Fatal("fourth request in window should be denied")
	}

	// Another key has its own budget.
	if allowed, _ := limiter.Allow(ctx, "user:b", 3, time.Hour); !allowed {
		t.Fatal("separate key should be allowed")
	}

	// Window expiry resets the count.
	clock = clock.Add(time.Hour + time.Minute)
	if allowed, _ := limiter.Allow(ctx, "user:a", 3, time.Hour); !allowed {
		t.Fatal("request after window reset should be allowed")
	}
}
