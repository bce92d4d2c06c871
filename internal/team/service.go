package team

import (
	"context"
	"errors"

	"github.com/qehclinic/portal-backend/internal/content"
	"github.com/qehclinic/portal-backend/internal/sanitize"
	"github.com/qehclinic/portal-backend/pkg/logger"
)

// ErrReorderContention is returned after repeated rank swaps lost the race
// against concurrent writers.
var ErrReorderContention = errors.New("reorder contention, try again")

const reorderAttempts = 3

// ImageRemover deletes a stored object by key; nil when the deployment runs
// without object storage.
type ImageRemover interface {
	Delete(ctx context.Context, key string) error
}

// Service applies the team-page write rules: name validation, bio
// sanitisation, rank maintenance and photo cleanup on delete.
type Service struct {
	repo   Repository
	images ImageRemover
}

func NewService(repo Repository, images ImageRemover) *Service {
	return &Service{repo: repo, images: images}
}

func (s *Service) List(ctx context.Context) ([]*Member, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, m *Member) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	m.Bio = sanitize.HTML(m.Bio)
	m.Version = 0
	list, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}
	m.Rank = intPtr(len(list))
	return s.repo.Create(ctx, m)
}

func (s *Service) Update(ctx context.Context, id string, m *Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.Bio = sanitize.HTML(m.Bio)
	return s.repo.Update(ctx, id, m)
}

// Delete removes the member and, best effort, their stored photo.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.images != nil {
		key := m.ImagePath
		if key == "" && m.ImageURL != "" {
			// Older records stored only the download URL.
			if kr, ok := s.images.(interface{ KeyFromURL(string) (string, error) }); ok {
				key, _ = kr.KeyFromURL(m.ImageURL)
			}
		}
		if key != "" {
			if err := s.images.Delete(ctx, key); err != nil {
				logger.Warnf("Failed to delete photo %s for team member %s: %v", key, id, err)
			}
		}
	}
	return nil
}

// MoveMember swaps the member at index with its neighbour and persists a full
// renumbering, retrying on lost races.
func (s *Service) MoveMember(ctx context.Context, index int, dir content.Direction) error {
	for attempt := 0; attempt < reorderAttempts; attempt++ {
		list, err := s.repo.List(ctx)
		if err != nil {
			return err
		}
		n := index - 1
		if dir == content.MoveDown {
			n = index + 1
		}
		if index < 0 || index >= len(list) || n < 0 || n >= len(list) {
			return nil
		}
		list[index], list[n] = list[n], list[index]
		batch := make([]Ranked, len(list))
		for i, m := range list {
			batch[i] = Ranked{ID: m.ID, Rank: i, Version: m.Version}
		}
		err = s.repo.ReplaceRanks(ctx, batch)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return ErrReorderContention
}
