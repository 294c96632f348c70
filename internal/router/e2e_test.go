//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/config"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/infra"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Test Suite Setup ─────────────────────────────────────────────────────────

func setupE2E(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("magazzino_test"),
		tcPostgres.WithUsername("magazzino"),
		tcPostgres.WithPassword("magazzino"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		DBDriver:           "postgres",
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		CORSOrigins:        "*",
		RateLimitPerMinute: 100000,
		ListLimitDefault:   100,
		ListLimitMax:       500,
	}

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	require.NotNil(t, rdb)

	srv := httptest.NewServer(router.New(cfg, db, rdb))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := srv.Client().Post(srv.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string, dest any) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func postID(t *testing.T, srv *httptest.Server, path string, body any) string {
	t.Helper()
	resp := post(t, srv, path, body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_HealthReportsRedis(t *testing.T) {
	srv := setupE2E(t)
	var body map[string]string
	get(t, srv, "/health", &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "connected", body["redis"])
}

// Concurrent OUT movements never drive a level below zero: exactly as many
// succeed as the stock allows.
func TestE2E_ConcurrentStockOut(t *testing.T) {
	srv := setupE2E(t)
	productID := postID(t, srv, "/api/products", map[string]any{"name": "Widget"})
	warehouseID := postID(t, srv, "/api/warehouses", map[string]any{"name": "Main"})

	resp := post(t, srv, "/api/stock-movements", map[string]any{
		"productId": productID, "warehouseId": warehouseID, "type": "IN", "quantity": 10,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, rejected := 0, 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, _ := json.Marshal(map[string]any{
				"productId": productID, "warehouseId": warehouseID, "type": "OUT", "quantity": 1,
			})
			r, err := srv.Client().Post(srv.URL+"/api/stock-movements", "application/json", bytes.NewReader(b))
			if err != nil {
				return
			}
			r.Body.Close()
			mu.Lock()
			defer mu.Unlock()
			switch r.StatusCode {
			case http.StatusCreated:
				created++
			case http.StatusBadRequest:
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, created)
	assert.Equal(t, 15, rejected)

	var levels []struct {
		Quantity int `json:"quantity"`
	}
	get(t, srv, "/api/stock-levels?productId="+productID, &levels)
	require.Len(t, levels, 1)
	assert.Equal(t, 0, levels[0].Quantity)

	var report struct {
		Consistent bool `json:"consistent"`
	}
	get(t, srv, "/api/ledger/reconcile", &report)
	assert.True(t, report.Consistent)
}

// The cached product detail is invalidated by stock movements.
func TestE2E_ProductCacheInvalidation(t *testing.T) {
	srv := setupE2E(t)
	productID := postID(t, srv, "/api/products", map[string]any{"name": "Cached"})
	warehouseID := postID(t, srv, "/api/warehouses", map[string]any{"name": "Main"})

	var before struct {
		StockLevels []map[string]any `json:"stockLevels"`
	}
	get(t, srv, "/api/products/"+productID, &before)
	assert.Empty(t, before.StockLevels)

	resp := post(t, srv, "/api/stock-movements", map[string]any{
		"productId": productID, "warehouseId": warehouseID, "type": "IN", "quantity": 3,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var after struct {
		StockLevels []struct {
			Quantity int `json:"quantity"`
		} `json:"stockLevels"`
	}
	get(t, srv, "/api/products/"+productID, &after)
	require.Len(t, after.StockLevels, 1)
	assert.Equal(t, 3, after.StockLevels[0].Quantity)
}

// Renaming a warehouse evicts cached products whose stock levels embed it.
func TestE2E_WarehouseRenameEvictsProductCache(t *testing.T) {
	srv := setupE2E(t)
	productID := postID(t, srv, "/api/products", map[string]any{"name": "Cached"})
	warehouseID := postID(t, srv, "/api/warehouses", map[string]any{"name": "Main"})

	resp := post(t, srv, "/api/stock-movements", map[string]any{
		"productId": productID, "warehouseId": warehouseID, "type": "IN", "quantity": 1,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	type productDetail struct {
		StockLevels []struct {
			Warehouse struct {
				Name string `json:"name"`
			} `json:"warehouse"`
		} `json:"stockLevels"`
	}
	var before productDetail
	get(t, srv, "/api/products/"+productID, &before)
	require.Len(t, before.StockLevels, 1)
	assert.Equal(t, "Main", before.StockLevels[0].Warehouse.Name)

	b, err := json.Marshal(map[string]any{"name": "North"})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/warehouses/"+warehouseID, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	put, err := srv.Client().Do(req)
	require.NoError(t, err)
	put.Body.Close()
	require.Equal(t, http.StatusOK, put.StatusCode)

	var after productDetail
	get(t, srv, "/api/products/"+productID, &after)
	require.Len(t, after.StockLevels, 1)
	assert.Equal(t, "North", after.StockLevels[0].Warehouse.Name)
}

func TestE2E_ConcurrentCustomerCreates(t *testing.T) {
	srv := setupE2E(t)

	var wg sync.WaitGroup
	ids := make(chan string, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, _ := json.Marshal(map[string]any{"name": "Concurrent"})
			r, err := srv.Client().Post(srv.URL+"/api/customers", "application/json", bytes.NewReader(b))
			if err != nil {
				return
			}
			defer r.Body.Close()
			var c struct {
				ID string `json:"id"`
			}
			if r.StatusCode == http.StatusCreated && json.NewDecoder(r.Body).Decode(&c) == nil {
				ids <- c.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, 40)
}
