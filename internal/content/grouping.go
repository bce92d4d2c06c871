package content

import (
	"sort"
	"time"
)

// DateGroup is one calendar-day bucket inside a category tab.
type DateGroup struct {
	DateKey string    `json:"dateKey"` // YYYY-MM-DD
	Date    time.Time `json:"date"`
	Items   []*Record `json:"items"`
}

// DateKey formats a timestamp as the calendar-day bucket key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// GroupByCategory builds the two-level tab index: category -> date buckets
// (newest first) -> records (newest first, insertion order on equal
// timestamps). Records with a category outside the fixed list are excluded.
// Records with a zero timestamp land in the zero-date bucket and sort last.
func GroupByCategory(records []*Record, categories []string) map[string][]DateGroup {
	out := make(map[string][]DateGroup, len(categories))
	for _, cat := range categories {
		byDate := map[string][]*Record{}
		var keys []string
		for _, r := range records {
			if r.Category != cat {
				continue
			}
			k := DateKey(r.Date)
			if _, seen := byDate[k]; !seen {
				keys = append(keys, k)
			}
			byDate[k] = append(byDate[k], r)
		}
		// newest date first; ISO keys order lexically
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
		groups := make([]DateGroup, 0, len(keys))
		for _, k := range keys {
			items := byDate[k]
			sort.SliceStable(items, func(i, j int) bool {
				return items[i].Date.After(items[j].Date)
			})
			day, _ := time.Parse("2006-01-02", k)
			groups = append(groups, DateGroup{DateKey: k, Date: day, Items: items})
		}
		out[cat] = groups
	}
	return out
}
