package content

import "errors"

// Direction of a manual move in the admin list.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

var ErrBadDirection = errors.New("direction must be \"up\" or \"down\"")

// ParseDirection validates a direction string from a reorder request.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case MoveUp, MoveDown:
		return Direction(s), nil
	default:
		return "", ErrBadDirection
	}
}

// Move swaps the record at index with its neighbour in the given direction.
// Out-of-range moves leave the list untouched and report false.
func Move(list []*Record, index int, dir Direction) bool {
	n := index - 1
	if dir == MoveDown {
		n = index + 1
	}
	if index < 0 || index >= len(list) || n < 0 || n >= len(list) {
		return false
	}
	list[index], list[n] = list[n], list[index]
	return true
}

// Renumber rewrites sort keys 0..n-1 over the displayed order. Every record
// gets an explicit key, including ones that never had one.
func Renumber(list []*Record) {
	for i, r := range list {
		r.SortKey = IntPtr(i)
	}
}

// OrderedID carries one record's new position to the repository, with the
// version the caller read so concurrent reorders conflict instead of
// silently interleaving.
type OrderedID struct {
	ID      string
	SortKey int
	Version int
}

// OrderOf extracts the persistence batch for the current list order.
func OrderOf(list []*Record) []OrderedID {
	out := make([]OrderedID, len(list))
	for i, r := range list {
		out[i] = OrderedID{ID: r.ID, SortKey: r.OrderKey(), Version: r.Version}
	}
	return out
}
