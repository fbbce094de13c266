package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/noah-isme/findnest-api/internal/models"
)

const (
	displayDateLayout = "01/02/2006"
	displayTimeLayout = "03:04 PM"
	isoDateLayout     = "2006-01-02"
)

// ParseTimestamp parses a backend timestamp in loc. Date-only values resolve to local midnight.
// Inputs that only parse as year zero are rejected.
func ParseTimestamp(raw models.RawTime, loc *time.Location) (time.Time, bool) {
	if raw.IsZero() {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(string(raw), loc)
	if err != nil || t.Year() < 1 {
		return time.Time{}, false
	}
	return t.In(loc), true
}

// NormalizeItem projects a live item into its Found event and, when claimed, its Claimed event.
func NormalizeItem(item models.Item, loc *time.Location) []models.DisplayItem {
	out := make([]models.DisplayItem, 0, 2)
	out = append(out, project(item, models.ActionFound, models.FirstTime(item.CreatedAt, item.DateFound), loc))
	if item.Status.IsClaimed() && !item.ClaimedDate.IsZero() {
		out = append(out, project(item, models.ActionClaimed, models.FirstTime(item.ClaimedDate, item.UpdatedAt), loc))
	}
	return out
}

// NormalizeHistorical projects a soft-deleted item into a single Deleted event.
func NormalizeHistorical(item models.Item, loc *time.Location) models.DisplayItem {
	return project(item, models.ActionDeleted, models.FirstTime(item.UpdatedAt, item.CreatedAt), loc)
}

// NormalizeAll expands live items followed by historical items, preserving input order.
func NormalizeAll(live, historical []models.Item, loc *time.Location) []models.DisplayItem {
	out := make([]models.DisplayItem, 0, len(live)*2+len(historical))
	for _, item := range live {
		out = append(out, NormalizeItem(item, loc)...)
	}
	for _, item := range historical {
		out = append(out, NormalizeHistorical(item, loc))
	}
	return out
}

func project(item models.Item, action models.ItemAction, raw models.RawTime, loc *time.Location) models.DisplayItem {
	d := models.DisplayItem{
		Item:        item,
		Action:      action,
		DisplayDate: models.InvalidDate,
		DisplayTime: models.InvalidDate,
	}
	if t, ok := ParseTimestamp(raw, loc); ok {
		d.SortDate = t
		d.DisplayDate = t.Format(displayDateLayout)
		d.DisplayTime = t.Format(displayTimeLayout)
	}
	return d
}

// ISODate renders the UTC calendar date of raw, or fallback when it cannot be parsed.
// Zone-less timestamps are read in loc; date-only values are already UTC dates.
func ISODate(raw models.RawTime, loc *time.Location, fallback string) string {
	trimmed := strings.TrimSpace(string(raw))
	if d, err := time.Parse(isoDateLayout, trimmed); err == nil && d.Year() >= 1 {
		return trimmed
	}
	t, ok := ParseTimestamp(raw, loc)
	if !ok {
		return fallback
	}
	return t.UTC().Format(isoDateLayout)
}

// LoadLocation resolves the display timezone, falling back to UTC for unknown names.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("load display timezone %q: %w", name, err)
	}
	return loc, nil
}

// ParseDay parses a YYYY-MM-DD filter bound as local midnight in loc. Empty input yields nil.
func ParseDay(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(isoDateLayout, raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
