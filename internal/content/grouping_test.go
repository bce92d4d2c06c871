package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGroupByCategory_BucketsAndOrdering(t *testing.T) {
	recs := []*Record{
		{ID: "a", Title: "A", Category: "MDT", Date: day("2025-01-02")},
		{ID: "b", Title: "B", Category: "MDT", Date: day("2025-01-02")},
		{ID: "c", Title: "C", Category: "MDT", Date: day("2025-01-01")},
	}
	grouped := GroupByCategory(recs, Categories)

	mdt := grouped["MDT"]
	require.Len(t, mdt, 2)
	require.Equal(t, "2025-01-02", mdt[0].DateKey)
	require.Equal(t, "2025-01-01", mdt[1].DateKey)

	// identical timestamps keep insertion order
	require.Len(t, mdt[0].Items, 2)
	require.Equal(t, "A", mdt[0].Items[0].Title)
	require.Equal(t, "B", mdt[0].Items[1].Title)
	require.Equal(t, "C", mdt[1].Items[0].Title)

	// other categories exist but are empty
	require.Empty(t, grouped["Scan"])
}

func TestGroupByCategory_UnknownCategoryInvisible(t *testing.T) {
	recs := []*Record{
		{ID: "x", Title: "X", Category: "Announcements", Date: day("2025-03-01")},
		{ID: "y", Title: "Y", Category: "Scan", Date: day("2025-03-01")},
	}
	grouped := GroupByCategory(recs, Categories)
	total := 0
	for _, groups := range grouped {
		for _, g := range groups {
			total += len(g.Items)
		}
	}
	require.Equal(t, 1, total, "unlisted category must appear in zero buckets")
	require.Equal(t, "Y", grouped["Scan"][0].Items[0].Title)
}

func TestGroupByCategory_EveryListedRecordInExactlyOneBucket(t *testing.T) {
	recs := []*Record{
		{ID: "1", Category: "MDT", Date: day("2025-05-01")},
		{ID: "2", Category: "Scan", Date: day("2025-05-01")},
		{ID: "3", Category: "Social Welfare", Date: day("2025-04-30")},
		{ID: "4", Category: "Case Discussion", Date: day("2025-04-29")},
		{ID: "5", Category: "MDT", Date: day("2025-04-28")},
	}
	grouped := GroupByCategory(recs, Categories)
	seen := map[string]int{}
	for _, groups := range grouped {
		for _, g := range groups {
			for _, r := range g.Items {
				seen[r.ID]++
			}
		}
	}
	for _, r := range recs {
		require.Equal(t, 1, seen[r.ID], "record %s", r.ID)
	}
}

func TestGroupByCategory_ZeroDateSortsLast(t *testing.T) {
	recs := []*Record{
		{ID: "old", Category: "MDT"}, // no parseable timestamp
		{ID: "new", Category: "MDT", Date: day("2025-06-01")},
	}
	grouped := GroupByCategory(recs, Categories)
	mdt := grouped["MDT"]
	require.Len(t, mdt, 2)
	require.Equal(t, "new", mdt[0].Items[0].ID)
	require.Equal(t, "old", mdt[1].Items[0].ID)
	require.Equal(t, "0001-01-01", mdt[1].DateKey)
}

func TestGroupByCategory_IntradayOrdering(t *testing.T) {
	base := day("2025-07-01")
	recs := []*Record{
		{ID: "morning", Category: "Scan", Date: base.Add(9 * time.Hour)},
		{ID: "evening", Category: "Scan", Date: base.Add(17 * time.Hour)},
	}
	grouped := GroupByCategory(recs, Categories)
	items := grouped["Scan"][0].Items
	require.Equal(t, "evening", items[0].ID)
	require.Equal(t, "morning", items[1].ID)
}
