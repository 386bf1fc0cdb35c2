// Package grouping partitions campaigns into the time and status buckets of the campaign board
package grouping

import (
	"slices"
	"strings"
	"time"

	"github.com/amirphl/orochi-admin/models"
	"github.com/amirphl/orochi-admin/utils"
)

// Bucket is the key of one board group
type Bucket string

const (
	BucketDraftAndReady   Bucket = "draftAndReady"
	BucketCompletedToday  Bucket = "completedToday"
	BucketLastMonth       Bucket = "lastMonth"
	BucketLastThreeMonths Bucket = "lastThreeMonths"
	BucketOlder           Bucket = "older"
)

// Keys lists the buckets in display order
var Keys = []Bucket{
	BucketDraftAndReady,
	BucketCompletedToday,
	BucketLastMonth,
	BucketLastThreeMonths,
	BucketOlder,
}

// Thresholds in calendar days
const (
	LastMonthDays       = 30
	LastThreeMonthsDays = 90
)

// GroupedRecords maps every bucket to its campaigns. All keys are always present.
type GroupedRecords map[Bucket][]*models.Campaign

func newGroupedRecords() GroupedRecords {
	g := make(GroupedRecords, len(Keys))
	for _, k := range Keys {
		g[k] = []*models.Campaign{}
	}
	return g
}

// Classify returns the bucket of a single campaign at now
func Classify(c *models.Campaign, now time.Time) Bucket {
	oneMonthAgo := utils.DaysAgo(now, LastMonthDays)
	threeMonthsAgo := utils.DaysAgo(now, LastThreeMonthsDays)
	return classify(c, now, oneMonthAgo, threeMonthsAgo)
}

func classify(c *models.Campaign, now, oneMonthAgo, threeMonthsAgo time.Time) Bucket {
	created := c.CreatedAt
	switch {
	case c.Status.IsPending():
		return BucketDraftAndReady
	case utils.SameDay(created, now, now.Location()):
		return BucketCompletedToday
	case !created.Before(oneMonthAgo):
		return BucketLastMonth
	case !created.Before(threeMonthsAgo) && created.Before(oneMonthAgo):
		return BucketLastThreeMonths
	default:
		return BucketOlder
	}
}

// Group partitions records in a single pass, preserving input order inside each bucket.
// Callers sort the full collection first (see Sort).
func Group(records []*models.Campaign, now time.Time) GroupedRecords {
	oneMonthAgo := utils.DaysAgo(now, LastMonthDays)
	threeMonthsAgo := utils.DaysAgo(now, LastThreeMonthsDays)

	groups := newGroupedRecords()
	for _, c := range records {
		if c == nil {
			continue
		}
		b := classify(c, now, oneMonthAgo, threeMonthsAgo)
		groups[b] = append(groups[b], c)
	}
	return groups
}

// Sort returns a copy of records ordered newest first by each campaign's own sort date:
// completed campaigns use start_date falling back to created_date, the rest created_date.
func Sort(records []*models.Campaign) []*models.Campaign {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b *models.Campaign) int {
		return b.SortDate().Compare(a.SortDate())
	})
	return sorted
}

// Filter keeps campaigns whose name contains search (case-insensitive) and, when
// favouritesOnly is set, only favourites
func Filter(records []*models.Campaign, search string, favouritesOnly bool) []*models.Campaign {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]*models.Campaign, 0, len(records))
	for _, c := range records {
		if c == nil {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		if favouritesOnly && !c.Favourite {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Board filters, sorts and groups records the way the campaign board shows them
func Board(records []*models.Campaign, search string, favouritesOnly bool, now time.Time) GroupedRecords {
	return Group(Sort(Filter(records, search, favouritesOnly)), now)
}

// Counts returns the number of campaigns per bucket
func Counts(g GroupedRecords) map[Bucket]int {
	counts := make(map[Bucket]int, len(Keys))
	for _, k := range Keys {
		counts[k] = len(g[k])
	}
	return counts
}

// Total returns the number of grouped campaigns
func Total(g GroupedRecords) int {
	total := 0
	for _, k := range Keys {
		total += len(g[k])
	}
	return total
}
