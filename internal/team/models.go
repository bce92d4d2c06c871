package team

import (
	"errors"
	"strings"
	"time"
)

// Collection is the backing store collection for team members.
const Collection = "team_members"

// unrankedSentinel is the effective rank of members written before ranks
// existed: they list last.
const unrankedSentinel = 1 << 30

// Member is one entry on the public team page.
type Member struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Position  string    `bson:"position,omitempty" json:"position,omitempty"`
	Bio       string    `bson:"bio,omitempty" json:"bio,omitempty"`
	ImageURL  string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImagePath string    `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	Rank      *int      `bson:"rank,omitempty" json:"rank,omitempty"`
	Version   int       `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (m *Member) orderKey() int {
	if m.Rank == nil {
		return unrankedSentinel
	}
	return *m.Rank
}

var ErrNameRequired = errors.New("name is required")

func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func intPtr(v int) *int { return &v }
