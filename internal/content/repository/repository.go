package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/qehclinic/portal-backend/internal/content"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrVersionConflict = errors.New("record changed concurrently")
)

// Order selects the list ordering for a collection fetch.
type Order int

const (
	// BySortKey lists ascending by the explicit sort key; records written
	// before the field existed sort last.
	BySortKey Order = iota
	// ByDateDesc lists newest content date first (clinic updates).
	ByDateDesc
	// ByCreatedDesc lists newest creation first.
	ByCreatedDesc
)

// Repository is the generic collection store shared by every content kind.
type Repository interface {
	List(ctx context.Context, coll string, order Order) ([]*content.Record, error)
	Get(ctx context.Context, coll, id string) (*content.Record, error)
	Create(ctx context.Context, coll string, r *content.Record) (string, error)
	Update(ctx context.Context, coll, id string, upd content.Update) error
	Delete(ctx context.Context, coll, id string) error
	// ReplaceOrder persists new sort keys for the whole list. Each write
	// checks the version the caller read; a mismatch aborts with
	// ErrVersionConflict so concurrent reorders retry instead of
	// interleaving.
	ReplaceOrder(ctx context.Context, coll string, batch []content.OrderedID) error
}

// sortRecords applies the requested ordering with a stable sort, so records
// with equal keys keep fetch order.
func sortRecords(list []*content.Record, order Order) {
	switch order {
	case BySortKey:
		sort.SliceStable(list, func(i, j int) bool { return list[i].OrderKey() < list[j].OrderKey() })
	case ByDateDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	case ByCreatedDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	}
}
