package dto

import (
	"time"

	"github.com/noah-isme/findnest-api/internal/models"
)

// FilterParams is the query form of models.FilterConfig. Dates use YYYY-MM-DD.
type FilterParams struct {
	Action []string `form:"action" json:"action,omitempty"`
	Name   string   `form:"name" json:"name,omitempty"`
	Start  string   `form:"start" json:"start,omitempty"`
	End    string   `form:"end" json:"end,omitempty"`
}

// UserCountCard is the role-scoped user counter. It is omitted for staff.
type UserCountCard struct {
	Count int `json:"count"`
}

// DashboardResponse is the analytics payload rendered by the dashboard.
type DashboardResponse struct {
	Counters      models.ItemCounters  `json:"counters"`
	Users         *UserCountCard       `json:"users,omitempty"`
	RecentFound   []models.DisplayItem `json:"recentFound"`
	RecentClaimed []models.DisplayItem `json:"recentClaimed"`
	Buckets       models.DayBuckets    `json:"buckets"`
	Trend         []models.TrendPoint  `json:"trend"`
	Rows          []models.DisplayItem `json:"rows"`
	Filter        models.FilterConfig  `json:"filter"`
	GeneratedAt   time.Time            `json:"generatedAt"`
}

// DashboardRowsParams pages through the aggregated rows.
type DashboardRowsParams struct {
	FilterParams
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}
