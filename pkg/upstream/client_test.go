package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/findnest-api/pkg/config"
)

func TestClientGetForwardsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/items", r.URL.Path)
		assert.Equal(t, "x", r.URL.Query().Get("q"))
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "1"}})
	}))
	defer srv.Close()

	var routes []string
	client := NewClient(config.UpstreamConfig{BaseURL: srv.URL + "/", APIKey: "key"}, nil,
		WithObserver(func(method, route string, status int, _ time.Duration) {
			routes = append(routes, method+" "+route)
			assert.Equal(t, http.StatusOK, status)
		}))

	ctx := WithAuthorization(WithRequestID(context.Background(), "req-1"), "Bearer abc")
	var out []map[string]string
	require.NoError(t, client.Get(ctx, "/api/items", url.Values{"q": {"x"}}, &out))
	assert.Equal(t, "1", out[0]["id"])
	assert.Equal(t, []string{"GET /api/items"}, routes)
}

func TestClientDoSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Ana", body["claimantName"])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(config.UpstreamConfig{BaseURL: srv.URL}, nil)
	var out map[string]interface{}
	require.NoError(t, client.Do(context.Background(), http.MethodPatch, "/api/items/7", nil, map[string]string{"claimantName": "Ana"}, &out))
	assert.Nil(t, out)
}

func TestClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such item", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(config.UpstreamConfig{BaseURL: srv.URL}, nil)
	err := client.Get(context.Background(), "/api/items/9", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "no such item", se.Body)
}

func TestClientTransportError(t *testing.T) {
	client := NewClient(config.UpstreamConfig{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, nil)
	err := client.Get(context.Background(), "/api/items", nil, nil)
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestRouteOf(t *testing.T) {
	assert.Equal(t, "/api/items", routeOf("/api/items"))
	assert.Equal(t, "/api/items/:id/turnover", routeOf("/api/items/abc123/turnover"))
	assert.Equal(t, "/api/users/count", routeOf("/api/users/count"))
	assert.Equal(t, "/api/users/:id/profile-picture", routeOf("/api/users/u1/profile-picture"))
}
