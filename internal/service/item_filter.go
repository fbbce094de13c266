package service

import (
	"strings"
	"time"

	"github.com/noah-isme/findnest-api/internal/models"
)

// Predicate decides whether a display item belongs to the result set.
type Predicate func(models.DisplayItem) bool

// BuildPredicate compiles a filter. Filter kinds are ANDed and name tokens are ORed.
// Date bounds are widened to whole days in loc and compared against the event timestamp.
func BuildPredicate(cfg models.FilterConfig, loc *time.Location) Predicate {
	if loc == nil {
		loc = time.UTC
	}

	var actions map[models.ItemAction]struct{}
	if len(cfg.Actions) > 0 {
		actions = make(map[models.ItemAction]struct{}, len(cfg.Actions))
		for _, a := range cfg.Actions {
			actions[a] = struct{}{}
		}
	}

	tokens := SplitNameTokens(cfg.Name)

	var start, end time.Time
	hasStart, hasEnd := cfg.Start != nil, cfg.End != nil
	if hasStart {
		start = StartOfDay(*cfg.Start, loc)
	}
	if hasEnd {
		end = EndOfDay(*cfg.End, loc)
	}

	return func(d models.DisplayItem) bool {
		if actions != nil {
			if _, ok := actions[d.Action]; !ok {
				return false
			}
		}
		if len(tokens) > 0 && !matchesAnyToken(d.Item, tokens) {
			return false
		}
		if hasStart || hasEnd {
			if !d.HasValidDate() {
				return false
			}
			if hasStart && d.SortDate.Before(start) {
				return false
			}
			if hasEnd && d.SortDate.After(end) {
				return false
			}
		}
		return true
	}
}

// SplitNameTokens splits a comma-separated query into trimmed, lowercased, non-empty tokens.
func SplitNameTokens(name string) []string {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	parts := strings.Split(name, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func matchesAnyToken(item models.Item, tokens []string) bool {
	fields := [...]string{
		strings.ToLower(item.Item),
		strings.ToLower(item.Category),
		strings.ToLower(item.Location),
		strings.ToLower(item.Department),
	}
	for _, token := range tokens {
		for _, f := range fields {
			if strings.Contains(f, token) {
				return true
			}
		}
	}
	return false
}

// StartOfDay returns 00:00:00 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last instant of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
