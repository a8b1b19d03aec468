package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mealplanner/backend/config"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealplanner/backend/internal/testhelpers"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:          "localhost",
		ServerPort:          "8080",
		DBDriver:            "sqlite",
		SuggestionRateLimit: 10,
	}
}

func get(t *testing.T, srv *Server, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestNew(t *testing.T) {
	srv, err := New(testConfig(), testhelpers.NewSQLiteDB(t), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, srv)
	assert.Equal(t, "localhost:8080", srv.http.Addr)

	w := get(t, srv, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, srv, "/api/v1/preferences", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(t, srv, "/api/v1/recommendations", map[string]string{middleware.UserIDHeader: uuid.NewString()})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, err := New(testConfig(), testhelpers.NewSQLiteDB(t), nil, nil)
	require.NoError(t, err)

	// one recommendation call so the pipeline counters exist
	get(t, srv, "/api/v1/recommendations", map[string]string{middleware.UserIDHeader: uuid.NewString()})

	w := get(t, srv, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mealplanner_recommendation_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestEachServerHasItsOwnRegistry(t *testing.T) {
	_, err := New(testConfig(), testhelpers.NewSQLiteDB(t), nil, nil)
	require.NoError(t, err)
	_, err = New(testConfig(), testhelpers.NewSQLiteDB(t), nil, nil)
	assert.NoError(t, err)
}
