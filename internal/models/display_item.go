package models

import (
	"strings"
	"time"
)

// ItemAction tags which lifecycle event a DisplayItem represents.
type ItemAction string

const (
	ActionFound   ItemAction = "Found"
	ActionClaimed ItemAction = "Claimed"
	ActionDeleted ItemAction = "Deleted"
)

// ItemActions lists every action in display order.
var ItemActions = []ItemAction{ActionFound, ActionClaimed, ActionDeleted}

// InvalidDate is rendered for missing or unparseable timestamps.
const InvalidDate = "Invalid Date"

// DisplayItem is a per-event projection of an Item. It is derived on every request and never stored.
type DisplayItem struct {
	Item
	Action      ItemAction `json:"action"`
	DisplayDate string     `json:"displayDate"`
	DisplayTime string     `json:"displayTime"`
	SortDate    time.Time  `json:"sortDate"`
}

// HasValidDate reports whether the event timestamp could be parsed.
func (d DisplayItem) HasValidDate() bool {
	return !d.SortDate.IsZero()
}

// ParseItemAction matches an action name case-insensitively.
func ParseItemAction(raw string) (ItemAction, bool) {
	for _, a := range ItemActions {
		if strings.EqualFold(string(a), strings.TrimSpace(raw)) {
			return a, true
		}
	}
	return "", false
}
