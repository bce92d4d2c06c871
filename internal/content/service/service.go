package service

import (
	"context"
	"errors"
	"strings"

	"github.com/qehclinic/portal-backend/internal/content"
	"github.com/qehclinic/portal-backend/internal/content/repository"
	"github.com/qehclinic/portal-backend/internal/sanitize"
	"github.com/qehclinic/portal-backend/pkg/logger"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrNotSortable     = errors.New("collection has no manual order")
	// ErrReorderContention is returned after repeated reorder attempts lost
	// the race against concurrent writers.
	ErrReorderContention = errors.New("reorder contention, try again")
)

const reorderAttempts = 3

// ImageRemover deletes a stored object by key. Satisfied by the MinIO
// storage layer; nil when the deployment runs without object storage.
type ImageRemover interface {
	Delete(ctx context.Context, key string) error
}

// Service applies the write-side rules shared by all content collections:
// title validation, HTML sanitisation, category checks for clinic updates
// and sort-key maintenance for manually ordered tabs.
type Service struct {
	repo   repository.Repository
	images ImageRemover
}

func NewService(repo repository.Repository, images ImageRemover) *Service {
	return &Service{repo: repo, images: images}
}

// ListOrder returns the display ordering for a collection. Clinic updates
// read newest content date first; every other collection keeps its manual
// order.
func ListOrder(coll string) repository.Order {
	if coll == content.CollClinicUpdates {
		return repository.ByDateDesc
	}
	return repository.BySortKey
}

// Sortable reports whether a collection supports manual reordering.
func Sortable(coll string) bool {
	return coll != content.CollClinicUpdates
}

func (s *Service) List(ctx context.Context, coll string) ([]*content.Record, error) {
	return s.repo.List(ctx, coll, ListOrder(coll))
}

func (s *Service) Get(ctx context.Context, coll, id string) (*content.Record, error) {
	return s.repo.Get(ctx, coll, id)
}

// Grouped returns clinic updates bucketed per category and per content date,
// newest date first.
func (s *Service) Grouped(ctx context.Context) (map[string][]content.DateGroup, error) {
	list, err := s.repo.List(ctx, content.CollClinicUpdates, repository.ByDateDesc)
	if err != nil {
		return nil, err
	}
	return content.GroupByCategory(list, content.Categories), nil
}

func (s *Service) Create(ctx context.Context, coll string, r *content.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	if coll == content.CollClinicUpdates && !content.ValidCategory(r.Category) {
		return "", ErrUnknownCategory
	}
	r.Body = sanitize.HTML(r.Body)
	r.Version = 0
	if Sortable(coll) {
		// New tabs append to the end of the current order.
		list, err := s.repo.List(ctx, coll, repository.BySortKey)
		if err != nil {
			return "", err
		}
		r.SortKey = content.IntPtr(len(list))
	}
	return s.repo.Create(ctx, coll, r)
}

func (s *Service) Update(ctx context.Context, coll, id string, upd content.Update) error {
	if strings.TrimSpace(upd.Title) == "" {
		return content.ErrTitleRequired
	}
	if coll == content.CollClinicUpdates {
		if !content.ValidCategory(upd.Category) {
			return ErrUnknownCategory
		}
		if upd.Category != content.CategorySocialWelfare {
			referred := false
			upd.Referred = &referred
		}
	}
	upd.Body = sanitize.HTML(upd.Body)
	return s.repo.Update(ctx, coll, id, upd)
}

// Delete removes the record and, best effort, its stored image. A failed
// object delete only logs; the record is already gone.
func (s *Service) Delete(ctx context.Context, coll, id string) error {
	r, err := s.repo.Get(ctx, coll, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, coll, id); err != nil {
		return err
	}
	if s.images != nil {
		key := r.ImagePath
		if key == "" && r.ImageURL != "" {
			// Older records stored only the download URL.
			if kr, ok := s.images.(interface{ KeyFromURL(string) (string, error) }); ok {
				key, _ = kr.KeyFromURL(r.ImageURL)
			}
		}
		if key != "" {
			if err := s.images.Delete(ctx, key); err != nil {
				logger.Warnf("Failed to delete image %s for %s/%s: %v", key, coll, id, err)
			}
		}
	}
	return nil
}

// MoveItem swaps the item at index with its neighbour in the given direction
// and persists a full renumbering. An out-of-range move is a no-op. Lost
// races against concurrent reorders are retried on a fresh read.
func (s *Service) MoveItem(ctx context.Context, coll string, index int, dir content.Direction) error {
	if !Sortable(coll) {
		return ErrNotSortable
	}
	for attempt := 0; attempt < reorderAttempts; attempt++ {
		list, err := s.repo.List(ctx, coll, repository.BySortKey)
		if err != nil {
			return err
		}
		if !content.Move(list, index, dir) {
			return nil
		}
		content.Renumber(list)
		err = s.repo.ReplaceOrder(ctx, coll, content.OrderOf(list))
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
	}
	return ErrReorderContention
}
