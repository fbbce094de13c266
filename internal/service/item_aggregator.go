package service

import (
	"sort"
	"time"

	"github.com/noah-isme/findnest-api/internal/models"
)

// DefaultRecentLimit caps the recent found and claimed lists.
const DefaultRecentLimit = 5

// AggregateOptions carries the environment the aggregation runs in.
type AggregateOptions struct {
	Now         time.Time
	Location    *time.Location
	RecentLimit int
}

// Aggregate merges live and historical items into filtered rows, counters and recent lists.
// Counters and recent lists ignore cfg.
func Aggregate(live, historical []models.Item, cfg models.FilterConfig, opts AggregateOptions) models.Aggregation {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	limit := opts.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	keep := BuildPredicate(cfg, loc)
	all := NormalizeAll(live, historical, loc)
	rows := make([]models.DisplayItem, 0, len(all))
	for _, d := range all {
		if keep(d) {
			rows = append(rows, d)
		}
	}
	SortBySortDateDesc(rows)

	return models.Aggregation{
		Rows:          rows,
		Counters:      CountItems(live),
		RecentFound:   recentEvents(live, models.ActionFound, opts.Now, loc, limit),
		RecentClaimed: recentEvents(live, models.ActionClaimed, opts.Now, loc, limit),
	}
}

// CountItems counts raw live items by canonical status.
func CountItems(live []models.Item) models.ItemCounters {
	counters := models.ItemCounters{Total: len(live)}
	for _, item := range live {
		switch item.Status {
		case models.ItemStatusClaimed:
			counters.Claimed++
		case models.ItemStatusAvailable:
			counters.Pending++
		}
	}
	return counters
}

// SortBySortDateDesc orders rows newest first. Equal timestamps keep their input order.
func SortBySortDateDesc(rows []models.DisplayItem) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].SortDate.After(rows[j].SortDate)
	})
}

func recentEvents(live []models.Item, action models.ItemAction, now time.Time, loc *time.Location, limit int) []models.DisplayItem {
	out := make([]models.DisplayItem, 0, limit)
	for _, item := range live {
		for _, d := range NormalizeItem(item, loc) {
			if d.Action != action || !d.HasValidDate() {
				continue
			}
			if _, in := BucketIndex(now, d.SortDate); in {
				out = append(out, d)
			}
		}
	}
	SortBySortDateDesc(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
