package service

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/findnest-api/internal/models"
)

const longDateLayout = "January 2, 2006"

// ParseItemTab maps a query value onto a table tab, defaulting to all.
func ParseItemTab(raw string) models.ItemTab {
	switch models.ItemTab(strings.ToLower(strings.TrimSpace(raw))) {
	case models.TabUnclaimed:
		return models.TabUnclaimed
	case models.TabClaimed:
		return models.TabClaimed
	default:
		return models.TabAll
	}
}

// FilterItemTable selects and orders live items for the management table.
// The claimed tab orders by claim date and the others by date found, newest first,
// with undated items last.
func FilterItemTable(items []models.Item, q models.ItemTableQuery, loc *time.Location) []models.Item {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		switch q.Tab {
		case models.TabUnclaimed:
			if item.Status != models.ItemStatusAvailable {
				continue
			}
		case models.TabClaimed:
			if item.Status != models.ItemStatusClaimed {
				continue
			}
		}
		if term != "" && !tableMatches(item, term, loc) {
			continue
		}
		out = append(out, item)
	}

	key := func(i models.Item) models.RawTime { return i.DateFound }
	if q.Tab == models.TabClaimed {
		key = func(i models.Item) models.RawTime { return i.ClaimedDate }
	}
	sortItemsDesc(out, key, loc)
	return out
}

func tableMatches(item models.Item, term string, loc *time.Location) bool {
	for _, f := range []string{item.Item, item.Description, item.Location, item.Category} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	if found, ok := ParseTimestamp(item.DateFound, loc); ok {
		return strings.Contains(strings.ToLower(found.Format(longDateLayout)), term)
	}
	return false
}

// FilterGallery selects open items for the public found-items gallery.
// The date range is on the date found; End is inclusive of its whole day.
func FilterGallery(items []models.Item, q models.GalleryQuery, loc *time.Location) []models.Item {
	if loc == nil {
		loc = time.UTC
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)

	var start, endExclusive time.Time
	if q.Start != nil {
		start = StartOfDay(*q.Start, loc)
	}
	if q.End != nil {
		endExclusive = StartOfDay(*q.End, loc).AddDate(0, 0, 1)
	}

	out := make([]models.Item, 0, len(items))
	for _, item := range items {
		if !item.Status.IsOpen() {
			continue
		}
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		found, hasDate := ParseTimestamp(item.DateFound, loc)
		if term != "" && !galleryMatches(item, term, found, hasDate) {
			continue
		}
		if q.Start != nil && (!hasDate || found.Before(start)) {
			continue
		}
		if q.End != nil && (!hasDate || !found.Before(endExclusive)) {
			continue
		}
		out = append(out, item)
	}
	sortItemsDesc(out, func(i models.Item) models.RawTime { return i.DateFound }, loc)
	return out
}

func galleryMatches(item models.Item, term string, found time.Time, hasDate bool) bool {
	for _, f := range []string{item.Item, item.Category, item.Location, item.Description} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return hasDate && strings.Contains(found.Format(displayDateLayout), term)
}

func sortItemsDesc(items []models.Item, key func(models.Item) models.RawTime, loc *time.Location) {
	type keyed struct {
		item models.Item
		at   time.Time
		ok   bool
	}
	rows := make([]keyed, len(items))
	for i, item := range items {
		at, ok := ParseTimestamp(key(item), loc)
		rows[i] = keyed{item: item, at: at, ok: ok}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		switch {
		case !rows[i].ok:
			return false
		case !rows[j].ok:
			return true
		default:
			return rows[i].at.After(rows[j].at)
		}
	})
	for i := range rows {
		items[i] = rows[i].item
	}
}
