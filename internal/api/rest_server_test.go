package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *RestServer {
	t.Helper()
	cfg := dungeon.DefaultConfig()
	cfg.Seed = 11
	return NewRestServer(Config{
		Dungeon:       cfg,
		Catalog:       dungeon.DefaultCatalog(),
		Store:         storage.NewMemoryStore(),
		Registry:      prometheus.NewRegistry(),
		DefaultBudget: 8,
		MaxBudget:     20,
	})
}

func do(t *testing.T, rs *RestServer, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	rs.Router().ServeHTTP(w, req)
	return w
}

type summaryResponse struct {
	Success bool    `json:"success"`
	Data    Summary `json:"data"`
}

func generate(t *testing.T, rs *RestServer) Summary {
	t.Helper()
	w := do(t, rs, http.MethodPost, "/api/dungeons", GenerateRequest{Seed: 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func TestRestServer_GenerateAndFetch(t *testing.T) {
	rs := newTestServer(t)
	sum := generate(t, rs)

	assert.Equal(t, int64(5), sum.Seed)
	assert.NotEmpty(t, sum.RoomLocations)

	w := do(t, rs, http.MethodGet, "/api/dungeons/"+sum.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sum.ID.String())

	w = do(t, rs, http.MethodGet, "/api/dungeons", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sum.ID.String())

	w = do(t, rs, http.MethodGet, "/api/dungeons/"+sum.ID.String()+"/random-room", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, rs, http.MethodGet, "/api/dungeons/"+sum.ID.String()+"/cells", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"room"`)
}

func TestRestServer_Floor(t *testing.T) {
	rs := newTestServer(t)
	sum := generate(t, rs)
	base := "/api/dungeons/" + sum.ID.String() + "/floor"

	w := do(t, rs, http.MethodGet, base+"?x=10&y=10&z=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Floor int `json:"floor"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.GreaterOrEqual(t, resp.Data.Floor, 0)

	w = do(t, rs, http.MethodGet, base+"?x=10", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestServer_Errors(t *testing.T) {
	rs := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"bad id", http.MethodGet, "/api/dungeons/not-a-uuid", nil, http.StatusBadRequest},
		{"missing", http.MethodGet, "/api/dungeons/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound},
		{"budget over max", http.MethodPost, "/api/dungeons", GenerateRequest{Budget: 100}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, rs, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRestServer_InvalidCatalog(t *testing.T) {
	rs := NewRestServer(Config{
		Dungeon:  dungeon.DefaultConfig(),
		Catalog:  dungeon.Catalog{},
		Registry: prometheus.NewRegistry(),
	})

	w := do(t, rs, http.MethodPost, "/api/dungeons", GenerateRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestServer_Delete(t *testing.T) {
	rs := newTestServer(t)
	sum := generate(t, rs)

	w := do(t, rs, http.MethodDelete, "/api/dungeons/"+sum.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, rs, http.MethodGet, "/api/dungeons/"+sum.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRestServer_HealthAndMetrics(t *testing.T) {
	rs := newTestServer(t)

	w := do(t, rs, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	w = do(t, rs, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dungeon_api_http_request_duration_seconds")
}
