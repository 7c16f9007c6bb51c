package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/skumatch/config"
	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/infrastructure/cache"
	"github.com/pricelens/skumatch/internal/infrastructure/storage"
	"github.com/pricelens/skumatch/internal/normalize"
	"github.com/pricelens/skumatch/internal/similarity"
	"github.com/pricelens/skumatch/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	router *gin.Engine
	store  *storage.Store
}

// setupTestRouter wires the real services with an in-memory cache and a
// temporary SQLite store.
func setupTestRouter(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}

	normalizer := normalize.New(normalize.Options{})
	cached, err := normalize.NewCached(normalizer, 128)
	require.NoError(t, err)

	memoryCache := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { memoryCache.Close() })

	store, err := storage.Open(context.Background(), storage.Config{
		Driver: storage.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "matches.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	scorer := similarity.NewScorer(similarity.DefaultParams())
	matcher := usecase.NewMatchingService(usecase.MatchConfig{Scorer: scorer, Workers: 2})

	handler := NewHandler(Dependencies{
		Normalizer: normalizer,
		Text:       cached,
		Scorer:     scorer,
		Catalogs:   usecase.NewCatalogService(memoryCache, cached, usecase.CatalogServiceConfig{}),
		Pipeline:   usecase.NewPipelineService(cached, matcher, store, zerolog.Nop()),
		Matches:    store,
		Logger:     zerolog.Nop(),
	})

	return &testServer{router: SetupRouter(cfg, handler, zerolog.Nop()), store: store}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

const catalogJSON = `[
	{"country": "MX", "sku": "000123", "sku_name": "Agua Natural Nestle Pureza Vital botella 1 L 12 PIEZAS"},
	{"country": "MX", "sku": "456", "sku_name": "Brandy Domecq Don Pedro 200 ml Presentación"}
]`

const listingsJSON = `[
	{"country": "MX", "competitor_name": "walmart", "competitor_sku_name": "NESTLE PV 12x1000 ML", "competitor_price": 120.5},
	{"country": "MX", "competitor_name": "soriana", "competitor_sku_name": "Brandy DON PEDRO 200ml", "competitor_price": 89},
	{"country": "MX", "competitor_name": "soriana", "competitor_sku_name": "Papel Higienico Petalo 4 rollos", "competitor_price": 35}
]`

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		srv := setupTestRouter(t)
		w := srv.do(t, "GET", "/health", "")

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "skumatch" {
			t.Errorf("service = %v, want skumatch", response["service"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		srv := setupTestRouter(t)
		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := srv.do(t, method, "/health", "")
			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	srv := setupTestRouter(t)

	t.Run("normalizes names and extracts units", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/normalize", `{"names": ["Brandy DON PEDRO 200ml"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp NormalizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "brdy donpedro 200ml", resp.Results[0].Normalized)
		assert.Equal(t, []domain.UnitToken{{Magnitude: 200, Kind: domain.UnitMilliliter}}, resp.Results[0].Units)
		assert.Empty(t, resp.Results[0].Steps)
	})

	t.Run("trace reports every stage", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/normalize", `{"names": ["Brandy DON PEDRO 200ml"], "trace": true}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp NormalizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		steps := resp.Results[0].Steps
		require.NotEmpty(t, steps)
		assert.Equal(t, "case", steps[0].Stage)
		assert.Equal(t, "brandy don pedro 200ml", steps[0].Output)
		assert.Equal(t, "brdy donpedro 200ml", steps[len(steps)-1].Output)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"names": []}`, `not json`} {
			w := srv.do(t, "POST", "/api/v1/normalize", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})
}

func TestConfidenceEndpoint(t *testing.T) {
	srv := setupTestRouter(t)

	t.Run("explains already normalized names", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/confidence",
			`{"left": "coca cola 600ml", "right": "coca cola 350ml", "normalized": true}`)
		require.Equal(t, http.StatusOK, w.Code)

		var b similarity.Breakdown
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.InDelta(t, 0.83, b.RawConfidence, 1e-9)
		assert.InDelta(t, 0.81, b.Confidence, 1e-9)
		assert.Equal(t, 1.0, b.UnitDistance)
	})

	t.Run("normalizes raw names first", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/confidence",
			`{"left": "Agua Natural Nestle Pureza Vital botella 1 L 12 PIEZAS", "right": "NESTLE PV 12x1000 ML"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var b similarity.Breakdown
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
		assert.Equal(t, 1.0, b.Confidence)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	srv := setupTestRouter(t)

	w := srv.do(t, "POST", "/api/v1/catalogs", `{"entries": `+catalogJSON+`}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created CatalogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.CatalogID)
	assert.Equal(t, 2, created.Size)

	t.Run("get returns the normalized snapshot", func(t *testing.T) {
		w := srv.do(t, "GET", "/api/v1/catalogs/"+created.CatalogID, "")
		require.Equal(t, http.StatusOK, w.Code)

		var got CatalogResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got.Entries, 2)
		assert.Equal(t, "123", got.Entries[0].SKU)
		assert.Equal(t, "npvnpvnpvnpv 1lt 12pz", got.Entries[0].NormalizedName)
	})

	t.Run("match against a snapshot", func(t *testing.T) {
		body := `{"catalog_id": "` + created.CatalogID + `", "listings": ` + listingsJSON + `}`
		w := srv.do(t, "POST", "/api/v1/match", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp MatchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 6, resp.Evaluations)
		require.Len(t, resp.Matches, 2)
		skus := []string{resp.Matches[0].MatchedSKU, resp.Matches[1].MatchedSKU}
		assert.ElementsMatch(t, []string{"123", "456"}, skus)
	})

	t.Run("unknown and malformed ids", func(t *testing.T) {
		w := srv.do(t, "GET", "/api/v1/catalogs/00000000-0000-0000-0000-000000000000", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = srv.do(t, "GET", "/api/v1/catalogs/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete removes the snapshot", func(t *testing.T) {
		w := srv.do(t, "DELETE", "/api/v1/catalogs/"+created.CatalogID, "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = srv.do(t, "GET", "/api/v1/catalogs/"+created.CatalogID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = srv.do(t, "DELETE", "/api/v1/catalogs/"+created.CatalogID, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects entries without sku", func(t *testing.T) {
		w := srv.do(t, "POST", "/api/v1/catalogs", `{"entries": [{"country": "MX", "sku_name": "Agua"}]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMatchEndpoint(t *testing.T) {
	t.Run("inline catalog without persistence", func(t *testing.T) {
		srv := setupTestRouter(t)
		w := srv.do(t, "POST", "/api/v1/match", `{"catalog": `+catalogJSON+`, "listings": `+listingsJSON+`}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp MatchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.RunID)
		assert.Equal(t, 2, resp.Catalog)
		assert.Equal(t, 3, resp.Listings)
		require.Len(t, resp.Matches, 2)
		for _, m := range resp.Matches {
			assert.Equal(t, 1.0, m.Confidence)
		}

		w = srv.do(t, "GET", "/api/v1/matches?country=MX&date=2024-03-05", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"matches":[]`)
	})

	t.Run("persisted batches are listed and not rematched", func(t *testing.T) {
		srv := setupTestRouter(t)
		body := `{"catalog": ` + catalogJSON + `, "listings": ` + listingsJSON +
			`, "country": "MX", "date": "2024-03-05", "persist": true}`

		w := srv.do(t, "POST", "/api/v1/match", body)
		require.Equal(t, http.StatusOK, w.Code)

		w = srv.do(t, "GET", "/api/v1/matches?country=MX&date=2024-03-05", "")
		require.Equal(t, http.StatusOK, w.Code)
		var listed struct {
			Matches []domain.MatchRecord `json:"matches"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
		assert.Len(t, listed.Matches, 2)

		w = srv.do(t, "POST", "/api/v1/match", body)
		require.Equal(t, http.StatusOK, w.Code)
		var again MatchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &again))
		assert.ElementsMatch(t, []string{"walmart", "soriana"}, again.Skipped)
		assert.Empty(t, again.Matches)
	})

	t.Run("validation errors", func(t *testing.T) {
		srv := setupTestRouter(t)
		tests := []struct {
			name string
			body string
		}{
			{"no catalog", `{"listings": ` + listingsJSON + `}`},
			{"both catalogs", `{"catalog_id": "x", "catalog": ` + catalogJSON + `, "listings": ` + listingsJSON + `}`},
			{"no listings", `{"catalog": ` + catalogJSON + `}`},
			{"bad date", `{"catalog": ` + catalogJSON + `, "listings": ` + listingsJSON + `, "date": "05-03-24"}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := srv.do(t, "POST", "/api/v1/match", tt.body)
				assert.Equal(t, http.StatusBadRequest, w.Code)
			})
		}
	})

	t.Run("listing matches requires country and date", func(t *testing.T) {
		srv := setupTestRouter(t)
		assert.Equal(t, http.StatusBadRequest, srv.do(t, "GET", "/api/v1/matches?date=2024-03-05", "").Code)
		assert.Equal(t, http.StatusBadRequest, srv.do(t, "GET", "/api/v1/matches?country=MX", "").Code)
	})
}
