package service

import (
	"math"
	"time"

	"github.com/noah-isme/findnest-api/internal/models"
)

const day = 24 * time.Hour

// BucketIndex returns floor((now-event)/24h). ok is false outside [0, BucketDays).
func BucketIndex(now, event time.Time) (int, bool) {
	idx := int(math.Floor(float64(now.Sub(event)) / float64(day)))
	if idx < 0 || idx >= models.BucketDays {
		return idx, false
	}
	return idx, true
}

// BucketByDay counts found and claimed events of the last seven days.
func BucketByDay(items []models.Item, now time.Time, loc *time.Location) models.DayBuckets {
	var buckets models.DayBuckets
	for _, item := range items {
		if found, ok := ParseTimestamp(models.FirstTime(item.CreatedAt, item.DateFound), loc); ok {
			if idx, in := BucketIndex(now, found); in {
				buckets.Found[idx]++
			}
		}
		if !item.Status.IsClaimed() {
			continue
		}
		if claimed, ok := ParseTimestamp(item.ClaimedDate, loc); ok {
			if idx, in := BucketIndex(now, claimed); in {
				buckets.Claimed[idx]++
			}
		}
	}
	return buckets
}

// TrendSeries renders buckets oldest to newest with the calendar day each column covers.
func TrendSeries(b models.DayBuckets, now time.Time, loc *time.Location) []models.TrendPoint {
	if loc == nil {
		loc = time.UTC
	}
	reversed := b.Reversed()
	points := make([]models.TrendPoint, models.BucketDays)
	for i := range points {
		d := StartOfDay(now.Add(-time.Duration(models.BucketDays-1-i)*day), loc)
		points[i] = models.TrendPoint{
			Day:     d,
			Label:   d.Format("Jan 2"),
			Found:   reversed.Found[i],
			Claimed: reversed.Claimed[i],
		}
	}
	return points
}
