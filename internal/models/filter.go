package models

import "time"

// FilterConfig narrows the aggregated rows. Zero values mean no constraint.
type FilterConfig struct {
	Actions []ItemAction `json:"action,omitempty"`
	Name    string       `json:"name,omitempty"`
	Start   *time.Time   `json:"start,omitempty"`
	End     *time.Time   `json:"end,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f FilterConfig) IsEmpty() bool {
	return len(f.Actions) == 0 && f.Name == "" && f.Start == nil && f.End == nil
}

// ItemTab selects a slice of the item table.
type ItemTab string

const (
	TabAll       ItemTab = "all"
	TabUnclaimed ItemTab = "unclaimed"
	TabClaimed   ItemTab = "claimed"
)

// ItemTableQuery drives the item management table.
type ItemTableQuery struct {
	Tab    ItemTab
	Search string
}

// GalleryQuery drives the found-items gallery.
type GalleryQuery struct {
	Search   string
	Category string
	Start    *time.Time
	End      *time.Time
}

// DirectoryQuery drives the user directory.
type DirectoryQuery struct {
	Search string
}
