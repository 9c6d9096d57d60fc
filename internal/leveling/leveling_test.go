package leveling

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestFactionLevelBaseOnly(t *testing.T) {
	for status := 1; status <= 10; status++ {
		want := status * 5
		if want < 1 {
			want = 1
		}
		if got := FactionLevel(status, 0); got != want {
			t.Fatalf("FactionLevel(%d, 0)=%d, want %d", status, got, want)
		}
	}
}

func TestFactionLevelClampsStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   int
	}{
		{name: "below_range", status: -3, want: 5},
		{name: "zero", status: 0, want: 5},
		{name: "above_range", status: 99, want: 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FactionLevel(tc.status, 0); got != tc.want {
				t.Fatalf("FactionLevel(%d, 0)=%d, want %d", tc.status, got, tc.want)
			}
		})
	}
}

func TestFactionLevelExperienceBonus(t *testing.T) {
	prev := 0
	for years := 0.0; years <= 15; years++ {
		got := FactionLevel(5, years)
		if got < prev {
			t.Fatalf("level decreased with more experience: years=%v level=%d prev=%d", years, got, prev)
		}
		prev = got
	}
	// The bonus saturates at 20 levels.
	if got := FactionLevel(5, 100); got != 25+MaxExperienceBonus {
		t.Fatalf("FactionLevel(5, 100)=%d, want %d", got, 25+MaxExperienceBonus)
	}
}

func TestXPMultiplier(t *testing.T) {
	cases := []struct {
		importance int
		want       float64
	}{
		{importance: 1, want: 1.0 / 3.0},
		{importance: 3, want: 1.0},
		{importance: 5, want: 5.0 / 3.0},
		{importance: -2, want: 1.0 / 3.0},
		{importance: 9, want: 5.0 / 3.0},
	}
	for _, tc := range cases {
		if got := XPMultiplier(tc.importance); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("XPMultiplier(%d)=%v, want %v", tc.importance, got, tc.want)
		}
	}
}

func TestSkillLevelRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cases := []struct {
		tier ExperienceTier
		lo   int
		hi   int
	}{
		{tier: TierBeginner, lo: 1, hi: 10},
		{tier: TierIntermediate, lo: 20, hi: 40},
		{tier: TierExpert, lo: 50, hi: 70},
		{tier: ExperienceTier("unknown"), lo: 1, hi: 10},
	}
	for _, tc := range cases {
		for i := 0; i < 200; i++ {
			got := SkillLevel(tc.tier, rng)
			if got < tc.lo || got > tc.hi {
				t.Fatalf("SkillLevel(%q)=%d, want in [%d,%d]", tc.tier, got, tc.lo, tc.hi)
			}
		}
	}
}

func TestSkillLevelDeterministicWithSeed(t *testing.T) {
	a := SkillLevel(TierExpert, rand.New(rand.NewSource(7)))
	b := SkillLevel(TierExpert, rand.New(rand.NewSource(7)))
	if a != b {
		t.Fatalf("same seed produced different levels: %d vs %d", a, b)
	}
}

func TestXPForLevel(t *testing.T) {
	if got := XPForLevel(0); got != 0 {
		t.Fatalf("XPForLevel(0)=%d, want 0", got)
	}
	if got := XPForLevel(-5); got != 0 {
		t.Fatalf("XPForLevel(-5)=%d, want 0", got)
	}
	if got := XPForLevel(1); got != 100 {
		t.Fatalf("XPForLevel(1)=%d, want 100", got)
	}
	// 100 + floor(100*2^1.5) = 100 + 282
	if got := XPForLevel(2); got != 382 {
		t.Fatalf("XPForLevel(2)=%d, want 382", got)
	}
	prev := 0
	for n := 1; n <= MaxLevel; n++ {
		cur := XPForLevel(n)
		if cur <= prev {
			t.Fatalf("XPForLevel not strictly increasing at %d: %d <= %d", n, cur, prev)
		}
		prev = cur
	}
}

func TestLevelForXPRoundTrips(t *testing.T) {
	for level := 1; level <= MaxLevel; level += 7 {
		xp := XPForLevel(level)
		if got := LevelForXP(xp); got != level {
			t.Fatalf("LevelForXP(XPForLevel(%d))=%d", level, got)
		}
		if got := LevelForXP(xp - 1); level > 1 && got != level-1 {
			t.Fatalf("LevelForXP(%d)=%d, want %d", xp-1, got, level-1)
		}
	}
	if got := LevelForXP(0); got != 1 {
		t.Fatalf("LevelForXP(0)=%d, want 1", got)
	}
}

func TestDefaultQuestXP(t *testing.T) {
	cases := []struct {
		qtype string
		diff  string
		want  int
	}{
		{qtype: "daily", diff: "hard", want: 150},
		{qtype: "daily", diff: "easy", want: 70},
		{qtype: "weekly", diff: "medium", want: 300},
		{qtype: "weekly", diff: "epic", want: 750},
		{qtype: "story", diff: "epic", want: 1500},
		{qtype: "story", diff: "hard", want: 900},
		{qtype: "bogus", diff: "bogus", want: 100},
	}
	for _, tc := range cases {
		if got := DefaultQuestXP(tc.qtype, tc.diff); got != tc.want {
			t.Fatalf("DefaultQuestXP(%q,%q)=%d, want %d", tc.qtype, tc.diff, got, tc.want)
		}
	}
}

func TestQuestExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	daily := QuestExpiry("daily", now)
	if daily == nil || !daily.Equal(now.Add(24*time.Hour)) {
		t.Fatalf("daily expiry = %v, want %v", daily, now.Add(24*time.Hour))
	}
	weekly := QuestExpiry("weekly", now)
	if weekly == nil || !weekly.Equal(now.Add(7*24*time.Hour)) {
		t.Fatalf("weekly expiry = %v, want %v", weekly, now.Add(7*24*time.Hour))
	}
	if story := QuestExpiry("story", now); story != nil {
		t.Fatalf("story expiry = %v, want nil", story)
	}
}

func TestCharacterClassForPair(t *testing.T) {
	if got := CharacterClassForPair("karriere", "finanzen"); got != "Händler" {
		t.Fatalf("karriere+finanzen=%q, want Händler", got)
	}
	if got := CharacterClassForPair("finanzen", "karriere"); got != "Händler" {
		t.Fatalf("finanzen+karriere=%q, want Händler", got)
	}
	if got := CharacterClassForPair("hobby", "finanzen"); got != DefaultCharacterClass {
		t.Fatalf("unmatched pair=%q, want %q", got, DefaultCharacterClass)
	}
}

func TestCharacterClassFromImportance(t *testing.T) {
	got := CharacterClassFromImportance(map[string]int{
		"karriere": 5,
		"finanzen": 4,
		"koerper":  2,
		"geist":    1,
	})
	if got != "Händler" {
		t.Fatalf("got %q, want Händler", got)
	}
	if got := CharacterClassFromImportance(map[string]int{"hobby": 5}); got != DefaultCharacterClass {
		t.Fatalf("single faction got %q, want %q", got, DefaultCharacterClass)
	}
}
