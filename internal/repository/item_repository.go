package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/noah-isme/findnest-api/internal/models"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/upstream"
)

// Backend is the subset of the upstream client used by the HTTP repositories.
type Backend interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error
}

// ItemRepository reads and mutates items through the backend REST API.
type ItemRepository struct {
	backend Backend
}

// NewItemRepository constructs the repository.
func NewItemRepository(backend Backend) *ItemRepository {
	return &ItemRepository{backend: backend}
}

// wireItem tolerates the legacy "_id" key some records still carry.
type wireItem struct {
	models.Item
	LegacyID models.ID `json:"_id"`
}

func (w wireItem) item() models.Item {
	it := w.Item
	if it.ID == "" {
		it.ID = w.LegacyID
	}
	return it
}

func unwrapItems(in []wireItem) []models.Item {
	out := make([]models.Item, 0, len(in))
	for _, w := range in {
		out = append(out, w.item())
	}
	return out
}

// List returns every live item.
func (r *ItemRepository) List(ctx context.Context) ([]models.Item, error) {
	var wire []wireItem
	if err := r.backend.Do(ctx, http.MethodGet, "/api/items", nil, nil, &wire); err != nil {
		return nil, mapBackendError(err, "list items")
	}
	return unwrapItems(wire), nil
}

// History returns soft-deleted items.
func (r *ItemRepository) History(ctx context.Context) ([]models.Item, error) {
	var wire []wireItem
	if err := r.backend.Do(ctx, http.MethodGet, "/api/items/history", nil, nil, &wire); err != nil {
		return nil, mapBackendError(err, "list item history")
	}
	return unwrapItems(wire), nil
}

// Get fetches a single item.
func (r *ItemRepository) Get(ctx context.Context, id string) (*models.Item, error) {
	var wire wireItem
	if err := r.backend.Do(ctx, http.MethodGet, itemPath(id), nil, nil, &wire); err != nil {
		return nil, mapBackendError(err, "get item")
	}
	it := wire.item()
	return &it, nil
}

// Create reports a newly found item.
func (r *ItemRepository) Create(ctx context.Context, item models.Item) (*models.Item, error) {
	var wire wireItem
	if err := r.backend.Do(ctx, http.MethodPost, "/api/items/report", nil, item, &wire); err != nil {
		return nil, mapBackendError(err, "create item")
	}
	return r.echo(wire, item), nil
}

// Update replaces an item's editable fields.
func (r *ItemRepository) Update(ctx context.Context, id string, item models.Item) (*models.Item, error) {
	var wire wireItem
	if err := r.backend.Do(ctx, http.MethodPut, "/api/items/updateItem/"+url.PathEscape(id), nil, item, &wire); err != nil {
		return nil, mapBackendError(err, "update item")
	}
	if item.ID == "" {
		item.ID = models.ID(id)
	}
	return r.echo(wire, item), nil
}

// ClaimRequest is the backend payload for a claim.
type ClaimRequest struct {
	ClaimantName  string `json:"claimantName"`
	Date          string `json:"date"`
	UserRef       string `json:"userRef"`
	ClaimantImage string `json:"claimantImage,omitempty"`
}

// Claim marks the item as returned to its owner.
func (r *ItemRepository) Claim(ctx context.Context, id string, req ClaimRequest) (*models.Item, error) {
	var wire wireItem
	if err := r.backend.Do(ctx, http.MethodPatch, itemPath(id), nil, req, &wire); err != nil {
		return nil, mapBackendError(err, "claim item")
	}
	return r.echo(wire, models.Item{ID: models.ID(id), Status: models.ItemStatusClaimed}), nil
}

// TurnoverRequest is the backend payload for a custody handover.
type TurnoverRequest struct {
	TurnoverDate   string `json:"turnoverDate"`
	TurnoverPerson string `json:"turnoverPerson"`
	Department     string `json:"department"`
}

// Turnover records the hand-over of an item to another office.
func (r *ItemRepository) Turnover(ctx context.Context, id string, req TurnoverRequest) (*models.Item, error) {
	var wire wireItem
	if err := r.backend.Do(ctx, http.MethodPatch, itemPath(id)+"/turnover", nil, req, &wire); err != nil {
		return nil, mapBackendError(err, "turnover item")
	}
	return r.echo(wire, models.Item{ID: models.ID(id), Department: req.Department}), nil
}

// Delete soft-deletes an item; it moves to history.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	if err := r.backend.Do(ctx, http.MethodDelete, itemPath(id), nil, nil, nil); err != nil {
		return mapBackendError(err, "delete item")
	}
	return nil
}

// echo prefers the backend's copy and falls back to what was sent when the body is empty.
func (r *ItemRepository) echo(wire wireItem, sent models.Item) *models.Item {
	it := wire.item()
	if it.ID == "" && it.Item == "" {
		it = sent
	}
	return &it
}

func itemPath(id string) string {
	return "/api/items/" + url.PathEscape(id)
}

// mapBackendError turns backend failures into typed API errors.
func mapBackendError(err error, op string) error {
	if err == nil {
		return nil
	}
	if upstream.IsNotFound(err) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, fmt.Sprintf("%s: not found", op))
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("%s: backend request failed", op))
}
