package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/findnest-api/internal/models"
	"github.com/noah-isme/findnest-api/pkg/config"
	appErrors "github.com/noah-isme/findnest-api/pkg/errors"
	"github.com/noah-isme/findnest-api/pkg/upstream"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
}

func newBackend(t *testing.T, handler func(w http.ResponseWriter, call recordedCall)) (*upstream.Client, *[]recordedCall) {
	t.Helper()
	calls := &[]recordedCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &call.Body))
		}
		*calls = append(*calls, call)
		handler(w, call)
	}))
	t.Cleanup(srv.Close)
	return upstream.NewClient(config.UpstreamConfig{BaseURL: srv.URL}, nil), calls
}

func TestItemRepositoryListAcceptsLegacyIDs(t *testing.T) {
	client, _ := newBackend(t, func(w http.ResponseWriter, call recordedCall) {
		assert.Equal(t, "/api/items", call.Path)
		_, _ = w.Write([]byte(`[{"_id":"a1","item":"Wallet","status":"Available","dateFound":"2024-03-01"},{"id":7,"item":"Keys","createdAt":{"_seconds":1700000000,"_nanoseconds":0}}]`))
	})

	items, err := NewItemRepository(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ID("a1"), items[0].ID)
	assert.Equal(t, models.ID("7"), items[1].ID)
	assert.Equal(t, models.RawTime("2023-11-14T22:13:20Z"), items[1].CreatedAt)
}

func TestItemRepositoryHistory(t *testing.T) {
	client, calls := newBackend(t, func(w http.ResponseWriter, call recordedCall) {
		_, _ = w.Write([]byte(`[{"id":"h1","item":"Umbrella"}]`))
	})

	items, err := NewItemRepository(client).History(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/api/items/history", (*calls)[0].Path)
}

func TestItemRepositoryGetNotFound(t *testing.T) {
	client, _ := newBackend(t, func(w http.ResponseWriter, call recordedCall) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := NewItemRepository(client).Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestItemRepositoryBackendFailure(t *testing.T) {
	client, _ := newBackend(t, func(w http.ResponseWriter, call recordedCall) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := NewItemRepository(client).List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
}

func TestItemRepositoryMutations(t *testing.T) {
	client, calls := newBackend(t, func(w http.ResponseWriter, call recordedCall) {
		if call.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id":"new","item":"Laptop"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	repo := NewItemRepository(client)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Item{Item: "Laptop", Category: "Laptops/Tablets"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("new"), created.ID)

	updated, err := repo.Update(ctx, "new", models.Item{Item: "Laptop bag"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("new"), updated.ID)
	assert.Equal(t, "Laptop bag", updated.Item)

	claimed, err := repo.Claim(ctx, "new", ClaimRequest{ClaimantName: "Ana", Date: "2024-03-02T10:00:00Z", UserRef: "u1"})
	require.NoError(t, err)
	assert.True(t, claimed.Status.IsClaimed())

	_, err = repo.Turnover(ctx, "new", TurnoverRequest{TurnoverDate: "2024-03-03", TurnoverPerson: "Ben", Department: "SSG"})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "new"))

	require.Len(t, *calls, 5)
	assert.Equal(t, "/api/items/report", (*calls)[0].Path)
	assert.Equal(t, http.MethodPut, (*calls)[1].Method)
	assert.Equal(t, "/api/items/updateItem/new", (*calls)[1].Path)
	assert.Equal(t, http.MethodPatch, (*calls)[2].Method)
	assert.Equal(t, map[string]interface{}{"claimantName": "Ana", "date": "2024-03-02T10:00:00Z", "userRef": "u1"}, (*calls)[2].Body)
	assert.Equal(t, "/api/items/new/turnover", (*calls)[3].Path)
	assert.Equal(t, "SSG", (*calls)[3].Body["department"])
	assert.Equal(t, http.MethodDelete, (*calls)[4].Method)
}
