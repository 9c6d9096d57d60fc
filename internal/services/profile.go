package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/projektl/projekt-l-backend/internal/leveling"
	"github.com/projektl/projekt-l-backend/internal/logger"
	"github.com/projektl/projekt-l-backend/internal/repos"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type ProfileView struct {
	Profile      *types.UserProfile   `json:"profile"`
	FactionStats []*types.FactionStat `json:"faction_stats"`
	Skills       []*types.UserSkill   `json:"skills"`
}

type ProfileService interface {
	GetView(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.UserProfileRepo
	statRepo    repos.FactionStatRepo
	skillRepo   repos.UserSkillRepo
}

func NewProfileService(
	db *gorm.DB,
	log *logger.Logger,
	profileRepo repos.UserProfileRepo,
	statRepo repos.FactionStatRepo,
	skillRepo repos.UserSkillRepo,
) ProfileService {
	return &profileService{
		db:          db,
		log:         log.With("service", "ProfileService"),
		profileRepo: profileRepo,
		statRepo:    statRepo,
		skillRepo:   skillRepo,
	}
}

func (s *profileService) GetView(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	view := &ProfileView{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := s.profileRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return err
		}
		if profile == nil {
			profile = &types.UserProfile{UserID: userID, CharacterClass: leveling.DefaultCharacterClass}
		}
		view.Profile = profile
		return nil
	})
	g.Go(func() error {
		stats, err := s.statRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return err
		}
		view.FactionStats = stats
		return nil
	})
	g.Go(func() error {
		skills, err := s.skillRepo.GetByUserID(gctx, nil, userID)
		if err != nil {
			return err
		}
		view.Skills = skills
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}
