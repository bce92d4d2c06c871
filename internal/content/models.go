package content

import (
	"errors"
	"strings"
	"time"
)

// Collection names in the backing document store.
const (
	CollClinicUpdates    = "clinic_updates"
	CollPatientTabs      = "patients_tabs"
	CollCounsellingTabs  = "counselling_tabs"
	CollOfficerResources = "officer_resources"
	CollSupportResources = "support_resources"
)

// Categories is the fixed tab set for clinic updates. A record whose
// category is not in this list never appears in any tab.
var Categories = []string{"MDT", "Scan", "Social Welfare", "Case Discussion"}

// CategorySocialWelfare is the only category where Referred is meaningful.
const CategorySocialWelfare = "Social Welfare"

// UnorderedSentinel is the effective sort key for records written before the
// sortKey field existed: they list last.
const UnorderedSentinel = 1 << 30

// Record is a publishable content item (clinic update, patient tab,
// counselling tab, officer resource or support link).
type Record struct {
	ID        string    `bson:"id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Body      string    `bson:"body" json:"body"`
	Category  string    `bson:"category,omitempty" json:"category,omitempty"`
	ImageURL  string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImagePath string    `bson:"imagePath,omitempty" json:"imagePath,omitempty"`
	SortKey   *int      `bson:"sortKey,omitempty" json:"sortKey,omitempty"`
	Referred  bool      `bson:"referred" json:"referred"`
	Version   int       `bson:"version" json:"-"`
	Date      time.Time `bson:"date" json:"date"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OrderKey returns the display position, with unordered records last.
func (r *Record) OrderKey() int {
	if r.SortKey == nil {
		return UnorderedSentinel
	}
	return *r.SortKey
}

var ErrTitleRequired = errors.New("title is required")

// ValidCategory reports whether the category is in the fixed tab set.
func ValidCategory(cat string) bool {
	for _, c := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// Validate applies the store-boundary checks shared by every content kind:
// a non-empty title, and referred forced false outside Social Welfare.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrTitleRequired
	}
	if r.Category != CategorySocialWelfare {
		r.Referred = false
	}
	return nil
}

// IntPtr is a small helper for building sort keys.
func IntPtr(v int) *int { return &v }

// Update carries the editable fields of a record. Pointer fields are applied
// only when set; the content date is never touched, so edits keep their
// original grouping bucket.
type Update struct {
	Title     string
	Body      string
	Category  string
	ImageURL  *string
	ImagePath *string
	Referred  *bool
}
