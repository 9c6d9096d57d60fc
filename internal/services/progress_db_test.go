package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/leveling"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/repos/testutil"
	"github.com/projektl/projekt-l-backend/internal/types"
)

func createDBUser(t *testing.T, tx *gorm.DB) *types.User {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     uuid.New().String() + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Password:  "hashed",
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func newDBProgressService(t *testing.T, tx *gorm.DB) (ProgressService, repos.FactionStatRepo, repos.UserProfileRepo, repos.ActivityLogRepo) {
	t.Helper()
	log := testutil.Logger(t)
	statRepo := repos.NewFactionStatRepo(tx, log)
	profileRepo := repos.NewUserProfileRepo(tx, log)
	activityRepo := repos.NewActivityLogRepo(tx, log)
	return NewProgressService(tx, log, statRepo, profileRepo, activityRepo), statRepo, profileRepo, activityRepo
}

func TestAwardXPAppliesMultiplierAndRefreshesProfile(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	user := createDBUser(t, tx)
	svc, statRepo, profileRepo, activityRepo := newDBProgressService(t, tx)

	seed := &types.FactionStat{
		ID:           uuid.New(),
		UserID:       user.ID,
		FactionID:    types.FactionGeist,
		Level:        1,
		Importance:   5,
		XPMultiplier: 5.0 / 3.0,
	}
	if err := statRepo.Upsert(ctx, tx, seed); err != nil {
		t.Fatalf("seed stat: %v", err)
	}

	granted, err := svc.AwardXP(ctx, user.ID, types.FactionGeist, 100, types.ActivityHabitCompleted, "Meditation")
	if err != nil {
		t.Fatalf("AwardXP() error = %v", err)
	}
	if granted != 167 {
		t.Errorf("granted = %d, want 167", granted)
	}

	stat, err := statRepo.GetByUserAndFaction(ctx, tx, user.ID, types.FactionGeist)
	if err != nil || stat == nil {
		t.Fatalf("reload stat: %v (%v)", stat, err)
	}
	if stat.TotalXP != 167 || stat.WeeklyXP != 167 || stat.MonthlyXP != 167 {
		t.Errorf("stat xp = total %d weekly %d monthly %d, want 167 each", stat.TotalXP, stat.WeeklyXP, stat.MonthlyXP)
	}
	if stat.LastActivity == nil {
		t.Error("last_activity not stamped")
	}

	profile, err := profileRepo.GetByUserID(ctx, tx, user.ID)
	if err != nil || profile == nil {
		t.Fatalf("reload profile: %v (%v)", profile, err)
	}
	if profile.TotalXP != 167 || profile.TotalLevel != stat.Level {
		t.Errorf("profile = level %d xp %d, want level %d xp 167", profile.TotalLevel, profile.TotalXP, stat.Level)
	}

	entries, err := activityRepo.GetRecent(ctx, tx, user.ID, 5)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != types.ActivityHabitCompleted || entries[0].XP != 167 {
		t.Errorf("activity log = %+v, want one habit completion with 167 XP", entries)
	}
}

func TestAwardXPLevelNeverDecreases(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	user := createDBUser(t, tx)
	svc, statRepo, _, _ := newDBProgressService(t, tx)

	// The stored level outruns its XP threshold; the award must not pull
	// it back down to the threshold-derived one.
	seed := &types.FactionStat{
		ID:           uuid.New(),
		UserID:       user.ID,
		FactionID:    types.FactionKoerper,
		Level:        50,
		TotalXP:      100,
		Importance:   3,
		XPMultiplier: 1,
	}
	if err := statRepo.Upsert(ctx, tx, seed); err != nil {
		t.Fatalf("seed stat: %v", err)
	}

	granted, err := svc.AwardXP(ctx, user.ID, types.FactionKoerper, 10, types.ActivityHabitCompleted, "Liegestütze")
	if err != nil {
		t.Fatalf("AwardXP() error = %v", err)
	}
	if granted != 10 {
		t.Errorf("granted = %d, want 10", granted)
	}

	stat, err := statRepo.GetByUserAndFaction(ctx, tx, user.ID, types.FactionKoerper)
	if err != nil || stat == nil {
		t.Fatalf("reload stat: %v (%v)", stat, err)
	}
	if stat.Level != 50 {
		t.Errorf("level = %d, want 50", stat.Level)
	}
	if stat.TotalXP != 110 {
		t.Errorf("total xp = %d, want 110", stat.TotalXP)
	}
}

func TestOnboardingCompleteWritesCoreState(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	user := createDBUser(t, tx)

	domain := &types.SkillDomain{
		ID:        uuid.New(),
		FactionID: types.FactionKarriere,
		Name:      "Beruf & Laufbahn",
	}
	if err := tx.Create(domain).Error; err != nil {
		t.Fatalf("seed domain: %v", err)
	}

	svc := NewOnboardingService(tx, log,
		repos.NewFactionStatRepo(tx, log),
		repos.NewSkillDomainRepo(tx, log),
		repos.NewUserSkillRepo(tx, log),
		repos.NewHabitRepo(tx, log),
		repos.NewHabitFactionRepo(tx, log),
		repos.NewUserProfileRepo(tx, log),
		repos.NewUserRepo(tx, log),
		repos.NewOnboardingResponseRepo(tx, log),
		repos.NewNotificationSettingsRepo(tx, log),
		repos.NewActivityLogRepo(tx, log),
		rand.New(rand.NewSource(42)),
	)

	data := OnboardingData{
		FactionRatings: []FactionRating{
			{FactionID: types.FactionKarriere, CurrentStatus: 6, YearsExperience: 2, Importance: 5},
			{FactionID: types.FactionFinanzen, CurrentStatus: 4, YearsExperience: 0, Importance: 4},
		},
		Skills: []OnboardingSkill{
			{Name: "Networking", FactionID: types.FactionKarriere, Experience: "intermediate"},
			{Name: "Bogenschießen", FactionID: types.FactionHobby, Experience: "beginner"},
		},
		Habits: []OnboardingHabit{
			{Name: "Täglich lesen", FactionID: types.FactionKarriere, XPPerCompletion: 25},
		},
	}

	result, err := svc.Complete(ctx, user.ID, data)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.CharacterClass != "Händler" {
		t.Errorf("character class = %q, want Händler", result.CharacterClass)
	}
	if len(result.SkippedSkills) != 1 || result.SkippedSkills[0] != "Bogenschießen" {
		t.Errorf("skipped skills = %v, want [Bogenschießen]", result.SkippedSkills)
	}

	karriereLevel := leveling.FactionLevel(6, 2)
	finanzenLevel := leveling.FactionLevel(4, 0)
	wantLevel := (karriereLevel + finanzenLevel) / 2
	wantXP := leveling.XPForLevel(karriereLevel) + leveling.XPForLevel(finanzenLevel)
	if result.TotalLevel != wantLevel || result.TotalXP != wantXP {
		t.Errorf("result = level %d xp %d, want level %d xp %d", result.TotalLevel, result.TotalXP, wantLevel, wantXP)
	}

	stats, err := repos.NewFactionStatRepo(tx, log).GetByUserID(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d faction stats, want 2", len(stats))
	}

	profile, err := repos.NewUserProfileRepo(tx, log).GetByUserID(ctx, tx, user.ID)
	if err != nil || profile == nil {
		t.Fatalf("load profile: %v (%v)", profile, err)
	}
	if !profile.OnboardingCompleted || profile.TotalLevel != wantLevel {
		t.Errorf("profile = %+v, want completed with level %d", profile, wantLevel)
	}

	var reloaded types.User
	if err := tx.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !reloaded.OnboardingCompleted {
		t.Error("user onboarding flag not set")
	}
}
