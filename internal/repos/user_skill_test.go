package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/projektl/projekt-l-backend/internal/repos/testutil"
	"github.com/projektl/projekt-l-backend/internal/types"
)

func TestUserSkillGetRecentlyUsed(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	user := createTestUser(t, tx)
	repo := NewUserSkillRepo(db, log)
	domainID := uuid.New()

	recent := time.Now().Add(-time.Hour)
	older := time.Now().Add(-48 * time.Hour)
	skills := []*types.UserSkill{
		{ID: uuid.New(), UserID: user.ID, DomainID: domainID, FactionID: types.FactionKoerper, Name: "Laufen", Level: 5, LastUsedAt: &older},
		{ID: uuid.New(), UserID: user.ID, DomainID: domainID, FactionID: types.FactionGeist, Name: "Meditation", Level: 3, LastUsedAt: &recent},
		{ID: uuid.New(), UserID: user.ID, DomainID: domainID, FactionID: types.FactionWissen, Name: "Lesen", Level: 7},
	}
	if err := repo.CreateMany(ctx, tx, skills); err != nil {
		t.Fatalf("CreateMany: %v", err)
	}

	rows, err := repo.GetRecentlyUsed(ctx, tx, user.ID, 2)
	if err != nil {
		t.Fatalf("GetRecentlyUsed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d skills, want 2", len(rows))
	}
	if rows[0].Name != "Meditation" {
		t.Errorf("first skill = %q, want most recently used", rows[0].Name)
	}
	// Never-used skills sort last.
	for _, row := range rows {
		if row.Name == "Lesen" {
			t.Error("never-used skill returned before used ones")
		}
	}
}
