package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemDecodesLooseBackendPayload(t *testing.T) {
	payload := `{
		"id": 42,
		"item": "Phone",
		"status": "claimed",
		"dateFound": "2024-01-05",
		"createdAt": {"_seconds": 1704412800, "_nanoseconds": 0},
		"updatedAt": 1704672000000,
		"claimedDate": null,
		"imageUrls": ["a.jpg", "b.jpg"]
	}`

	var item Item
	require.NoError(t, json.Unmarshal([]byte(payload), &item))

	assert.Equal(t, ID("42"), item.ID)
	assert.Equal(t, RawTime("2024-01-05"), item.DateFound)
	assert.Equal(t, RawTime("2024-01-05T00:00:00Z"), item.CreatedAt)
	assert.Equal(t, RawTime("2024-01-08T00:00:00Z"), item.UpdatedAt)
	assert.True(t, item.ClaimedDate.IsZero())
	assert.True(t, item.Status.IsClaimed())
	assert.Equal(t, "a.jpg", item.Thumbnail())
}

func TestItemStatusTolerance(t *testing.T) {
	assert.True(t, ItemStatus("AVAILABLE").IsOpen())
	assert.True(t, ItemStatus("unclaimed").IsOpen())
	assert.False(t, ItemStatus("Claimed").IsOpen())
}

func TestFirstTime(t *testing.T) {
	assert.Equal(t, RawTime("b"), FirstTime("", " ", "b", "c"))
	assert.Equal(t, RawTime(""), FirstTime())
}

func TestUserFullName(t *testing.T) {
	u := User{FirstName: "Ana", MiddleName: " ", LastName: "Cruz"}
	assert.Equal(t, "Ana Cruz", u.FullName())
}

func TestReportJobParamsRoundTripThroughScan(t *testing.T) {
	params := ReportJobParams{Format: ReportFormatXLSX, Filter: FilterConfig{Actions: []ItemAction{ActionClaimed}, Name: "phone"}}
	raw, err := params.Value()
	require.NoError(t, err)

	var decoded ReportJobParams
	require.NoError(t, decoded.Scan(raw))
	assert.Equal(t, params, decoded)
	assert.Error(t, decoded.Scan(12))
}
