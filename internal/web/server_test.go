package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steamdex/steamdex/internal/catalog"
	"github.com/steamdex/steamdex/internal/db"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()

	handle, err := db.Open(ctx, filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close() })

	store := db.NewStore(handle)
	require.NoError(t, store.UpsertRegion(ctx, "tw", "Taiwan", "TWD"))
	require.NoError(t, store.UpsertRegion(ctx, "us", "United States", "USD"))

	require.NoError(t, store.UpsertGame(ctx, db.GameRecord{ID: 100, Title: "Alpha"}))
	require.NoError(t, store.UpsertGame(ctx, db.GameRecord{ID: 200, Title: "Beta Quest", Free: true}))

	require.NoError(t, store.UpsertTag(ctx, 1, "Action", "Genre"))
	require.NoError(t, store.LinkGameTag(ctx, 100, 1, 1))

	tw := 300.0
	us := 9.99
	require.NoError(t, store.InsertPriceRecord(ctx, db.PriceRecord{GameID: 100, Region: "tw", Final: &tw}))
	require.NoError(t, store.InsertPriceRecord(ctx, db.PriceRecord{GameID: 100, Region: "us", Final: &us}))

	norm := catalog.NewNormalizer("TWD",
		map[string]string{"tw": "TWD", "us": "USD"},
		map[string]string{"tw": "Taiwan", "us": "United States"},
		map[string]float64{"TWD": 1.0, "USD": 30.0},
	)
	engine := catalog.NewEngine(store, norm)
	return NewServer(engine, store, handle.Conn())
}

func TestSearchAPI_ReturnsNormalizedResults(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?name=Alpha", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Results []catalog.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, int64(100), body.Results[0].AppID)
	assert.Equal(t, "300 TWD", body.Results[0].Price)
	assert.Equal(t, "Taiwan", body.Results[0].Region)
}

func TestSearchAPI_FreeGame(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?name=Beta", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Results []catalog.Result `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Free", body.Results[0].Price)
	assert.Equal(t, "—", body.Results[0].Region)
}

func TestSearchAPI_InvalidRange(t *testing.T) {
	srv := newTestServer(t)

	for _, query := range []string{
		"/api/search?min_price=abc",
		"/api/search?min_price=-5",
		"/api/search?min_price=500&max_price=100",
	} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, query, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"], query)
	}
}

func TestIndex_RendersForm(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Steamdex game search")
	assert.Contains(t, page, "Alpha")
	assert.Contains(t, page, "Action")
	assert.Contains(t, page, "300 TWD")
}

func TestIndex_InvalidPriceShowsError(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?min_price=abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "whole number")
}

func TestIndex_TagFilter(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?tags=Action", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "300 TWD")
	assert.NotContains(t, page, "<td>Beta Quest</td>")
}

func TestIndex_UnknownPathIs404(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "steamdex_games_total"))
}
