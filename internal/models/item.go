package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ItemStatus is the lifecycle state of a found item.
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "Available"
	ItemStatusClaimed   ItemStatus = "Claimed"
	// ItemStatusUnclaimed is a legacy spelling still present in older records.
	ItemStatusUnclaimed ItemStatus = "Unclaimed"
)

// IsClaimed tolerates case variants such as "claimed".
func (s ItemStatus) IsClaimed() bool {
	return strings.EqualFold(string(s), string(ItemStatusClaimed))
}

// IsOpen reports whether the item still waits for its owner.
func (s ItemStatus) IsOpen() bool {
	return strings.EqualFold(string(s), string(ItemStatusAvailable)) ||
		strings.EqualFold(string(s), string(ItemStatusUnclaimed))
}

// MaxItemImages bounds Item.ImageURLs.
const MaxItemImages = 5

// Offices that may hold items in custody.
var Offices = []string{"SSO", "SSG", "SSD"}

// Categories is the fixed catalog used when reporting items.
var Categories = []string{
	"Mobile Phones",
	"Laptops/Tablets",
	"Headphones/Earbuds",
	"Chargers and Cables",
	"Cameras",
	"Electronic Accessories",
	"Textbooks",
	"Notebooks",
	"Stationery Items",
	"Art Supplies",
	"Calculators",
	"Coats and Jackets",
	"Hats and Caps",
	"Scarves and Gloves",
	"Bags and Backpacks",
	"Sunglasses",
	"Jewelry and Watches",
	"Umbrellas",
	"Wallets and Purses",
	"ID Cards and Passports",
	"Keys",
	"Personal Care Items",
	"Sports Gear",
	"Gym Equipment",
	"Bicycles and Skateboards",
	"Musical Instruments",
	"Water Bottles",
	"Lunch Boxes",
	"Toys and Games",
	"Decorative Items",
	"Other",
}

const (
	DefaultCategory   = "Other"
	DefaultDepartment = "SSO"
)

// Item is a found object as stored by the backend. Live and historical items share the shape.
type Item struct {
	ID             ID         `json:"id"`
	Item           string     `json:"item"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category,omitempty"`
	Location       string     `json:"location,omitempty"`
	Department     string     `json:"department,omitempty"`
	Status         ItemStatus `json:"status,omitempty"`
	DateFound      RawTime    `json:"dateFound,omitempty"`
	CreatedAt      RawTime    `json:"createdAt,omitempty"`
	UpdatedAt      RawTime    `json:"updatedAt,omitempty"`
	ClaimedDate    RawTime    `json:"claimedDate,omitempty"`
	TurnoverDate   RawTime    `json:"turnoverDate,omitempty"`
	TurnoverPerson string     `json:"turnoverPerson,omitempty"`
	ClaimantName   string     `json:"claimantName,omitempty"`
	ClaimantImage  string     `json:"claimantImage,omitempty"`
	UserRef        string     `json:"userRef,omitempty"`
	ImageURLs      []string   `json:"imageUrls,omitempty"`
	DeletedAt      RawTime    `json:"deletedAt,omitempty"`
}

// Thumbnail returns the first image URL, if any.
func (i Item) Thumbnail() string {
	if len(i.ImageURLs) == 0 {
		return ""
	}
	return i.ImageURLs[0]
}

// ID accepts both string and numeric identifiers from the backend.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// RawTime keeps a timestamp exactly as the backend sent it. Parsing happens in the
// normalizer so malformed values never fail decoding.
type RawTime string

// UnmarshalJSON accepts strings, epoch milliseconds and {"_seconds","_nanoseconds"} objects.
func (t *RawTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = RawTime(strings.TrimSpace(s))
	case data[0] == '{':
		var ts struct {
			Seconds     int64 `json:"_seconds"`
			Nanoseconds int64 `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(data, &ts); err != nil {
			*t = ""
			return nil
		}
		*t = RawTime(time.Unix(ts.Seconds, ts.Nanoseconds).UTC().Format(time.RFC3339Nano))
	default:
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			*t = RawTime(data)
			return nil
		}
		*t = RawTime(time.UnixMilli(ms).UTC().Format(time.RFC3339Nano))
	}
	return nil
}

// IsZero reports whether no timestamp was provided.
func (t RawTime) IsZero() bool {
	return strings.TrimSpace(string(t)) == ""
}

// FirstTime returns the first non-empty timestamp of the chain.
func FirstTime(chain ...RawTime) RawTime {
	for _, t := range chain {
		if !t.IsZero() {
			return t
		}
	}
	return ""
}
