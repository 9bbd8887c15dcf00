package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/pocketplan/budget-api/models"
	"github.com/pocketplan/budget-api/store"
	"github.com/pocketplan/budget-api/utils"

	"go.uber.org/zap"
)

var ErrUnknownChallenge = errors.New("unknown challenge")

type ChallengeService struct {
	store store.ProfileStore
}

func NewChallengeService(s store.ProfileStore) *ChallengeService {
	return &ChallengeService{store: s}
}

func (s *ChallengeService) Catalog() []models.Challenge {
	out := make([]models.Challenge, len(models.ChallengeCatalog))
	copy(out, models.ChallengeCatalog)
	return out
}

// Joined returns the user's challenges; a read failure shows none joined.
func (s *ChallengeService) Joined(ctx context.Context, userID string) []models.Challenge {
	joined, err := s.store.GetChallenges(ctx, userID)
	if err != nil {
		utils.Logger().Error("failed to load challenges",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		return []models.Challenge{}
	}
	return joined
}

// joinedForWrite is Joined for read-modify-write paths; a read failure is
// returned so the stored set is never replaced from an empty read.
func (s *ChallengeService) joinedForWrite(ctx context.Context, userID string) ([]models.Challenge, error) {
	joined, err := s.store.GetChallenges(ctx, userID)
	if err != nil {
		utils.Logger().Error("failed to load challenges for update",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		return nil, fmt.Errorf("load challenges: %w", err)
	}
	return joined, nil
}

// Toggle joins challenge when absent from joined and removes it otherwise.
// joined is not modified.
func Toggle(joined []models.Challenge, challenge models.Challenge) []models.Challenge {
	out := make([]models.Challenge, 0, len(joined)+1)
	found := false
	for _, c := range joined {
		if c.ID == challenge.ID {
			found = true
			continue
		}
		out = append(out, c)
	}
	if !found {
		out = append(out, challenge)
	}
	return out
}

// Save replaces the joined set with the catalog entries for ids, keeping the
// order given. Repeated ids are stored once.
func (s *ChallengeService) Save(ctx context.Context, userID string, ids []int) ([]models.Challenge, error) {
	selected := make([]models.Challenge, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		c, ok := catalogEntry(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownChallenge, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, c)
	}

	if err := s.store.UpdateChallenges(ctx, userID, selected); err != nil {
		utils.Logger().Error("failed to save challenges",
			zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
		return nil, err
	}
	return selected, nil
}

// ToggleAndSave flips one challenge in the stored set.
func (s *ChallengeService) ToggleAndSave(ctx context.Context, userID string, id int) ([]models.Challenge, error) {
	c, ok := catalogEntry(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChallenge, id)
	}
	joined, err := s.joinedForWrite(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := Toggle(joined, c)
	ids := make([]int, len(next))
	for i, j := range next {
		ids[i] = j.ID
	}
	return s.Save(ctx, userID, ids)
}

func catalogEntry(id int) (models.Challenge, bool) {
	for _, c := range models.ChallengeCatalog {
		if c.ID == id {
			return c, true
		}
	}
	return models.Challenge{}, false
}
