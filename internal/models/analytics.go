package models

import "time"

// ItemCounters are the headline dashboard numbers over live items.
type ItemCounters struct {
	Total   int `json:"total"`
	Claimed int `json:"claimed"`
	Pending int `json:"pending"`
}

// Aggregation is the result of merging, filtering and summarising live and historical items.
type Aggregation struct {
	Rows          []DisplayItem `json:"rows"`
	Counters      ItemCounters  `json:"counters"`
	RecentFound   []DisplayItem `json:"recentFound"`
	RecentClaimed []DisplayItem `json:"recentClaimed"`
}

// BucketDays is the width of the trend window.
const BucketDays = 7

// DayBuckets holds event counts where index 0 is today and index 6 is six days ago.
type DayBuckets struct {
	Found   [BucketDays]int `json:"found"`
	Claimed [BucketDays]int `json:"claimed"`
}

// Reversed returns the buckets ordered oldest to newest for charting.
func (b DayBuckets) Reversed() DayBuckets {
	var out DayBuckets
	for i := 0; i < BucketDays; i++ {
		out.Found[i] = b.Found[BucketDays-1-i]
		out.Claimed[i] = b.Claimed[BucketDays-1-i]
	}
	return out
}

// TrendPoint is one chart column.
type TrendPoint struct {
	Day     time.Time `json:"day"`
	Label   string    `json:"label"`
	Found   int       `json:"found"`
	Claimed int       `json:"claimed"`
}
