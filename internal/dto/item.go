package dto

import "github.com/noah-isme/findnest-api/internal/models"

// ItemRequest is the create/update payload for a found item.
type ItemRequest struct {
	Item          string            `json:"item" form:"item" validate:"required,max=120"`
	Description   string            `json:"description" form:"description" validate:"required,max=2000"`
	Category      string            `json:"category" form:"category" validate:"omitempty,category"`
	Location      string            `json:"location" form:"location" validate:"required,max=200"`
	Department    string            `json:"department" form:"department" validate:"omitempty,office"`
	Status        models.ItemStatus `json:"status" form:"status"`
	DateFound     string            `json:"dateFound" form:"dateFound" validate:"required"`
	ImageURLs     []string          `json:"imageUrls" form:"imageUrls" validate:"max=5,dive,url"`
	ClaimantName  string            `json:"claimantName,omitempty" form:"claimantName"`
	ClaimantImage string            `json:"claimantImage,omitempty" form:"claimantImage"`
	ClaimedDate   string            `json:"claimedDate,omitempty" form:"claimedDate"`
}

// ClaimRequest marks an item as returned to its owner.
type ClaimRequest struct {
	ClaimantName  string `json:"claimantName" validate:"required,max=120"`
	Date          string `json:"date"`
	ClaimantImage string `json:"claimantImage,omitempty" validate:"omitempty,url"`
}

// TurnoverRequest hands custody of an item to another office.
type TurnoverRequest struct {
	TurnoverDate   string `json:"turnoverDate" validate:"required"`
	TurnoverPerson string `json:"turnoverPerson" validate:"required,max=120"`
	Department     string `json:"department" validate:"required,office"`
}

// ItemTableParams are the query parameters of the item table.
type ItemTableParams struct {
	Tab      string `form:"tab"`
	Search   string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// GalleryParams are the query parameters of the found-items gallery.
type GalleryParams struct {
	Search   string `form:"q"`
	Category string `form:"category"`
	Start    string `form:"start"`
	End      string `form:"end"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CatalogResponse lists the enumerations used by item forms.
type CatalogResponse struct {
	Categories []string `json:"categories"`
	Offices    []string `json:"offices"`
	Statuses   []string `json:"statuses"`
}
