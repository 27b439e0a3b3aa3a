package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog/internal/config"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)
	cfg.DatabaseDriver = driver
	cfg.DatabaseDSN = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.RabbitMQURL = ""
	cfg.JWTSecret = ""
	return cfg
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func getJSON(t *testing.T, app *App, path string, out interface{}) int {
	t.Helper()
	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestNewApp_SeedsBothCatalogs(t *testing.T) {
	for _, driver := range []string{"sqlite", "memory"} {
		t.Run(driver, func(t *testing.T) {
			app := newTestApp(t, testConfig(t, driver))

			var products []models.ParentDTO
			assert.Equal(t, http.StatusOK, getJSON(t, app, "/api/products", &products))
			assert.Len(t, products, 5)

			var items []models.ParentDTO
			assert.Equal(t, http.StatusOK, getJSON(t, app, "/api/inventoryitems", &items))
			assert.Len(t, items, 5)

			var top []models.ParentDTO
			assert.Equal(t, http.StatusOK, getJSON(t, app, "/api/inventoryitems/top3", &top))
			require.Len(t, top, 3)
			assert.Equal(t, "Samsung Galaxy S20 Ultra", top[0].Name)
			assert.Equal(t, "Samsung Galaxy S20+", top[1].Name)
			assert.Equal(t, "iPhone 11", top[2].Name)

			var withColour []models.ParentDTO
			assert.Equal(t, http.StatusOK, getJSON(t, app, "/api/products/options?name=colour", &withColour))
			assert.Len(t, withColour, 5)
		})
	}
}

func TestSeedCatalog_SkipsNonEmptyCatalog(t *testing.T) {
	repo := repositories.NewMemoryCatalogRepository[models.Product, models.ProductOption]()
	ctx := context.Background()

	require.NoError(t, seedCatalog[models.Product, models.ProductOption](ctx, repo, productSeed, quietLogger()))
	require.NoError(t, seedCatalog[models.Product, models.ProductOption](ctx, repo, productSeed, quietLogger()))

	products, err := repo.ListParents(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(productSeed))

	options, err := repo.ListOptions(ctx, products[0].ID)
	require.NoError(t, err)
	assert.Len(t, options, 2)
}

func TestSeedData_FitsFieldLimits(t *testing.T) {
	for _, entry := range productSeed {
		assert.LessOrEqual(t, len(entry.Parent.Name), 17, entry.Parent.Name)
		assert.LessOrEqual(t, len(entry.Parent.Description), 35, entry.Parent.Name)
		for _, option := range entry.Options {
			assert.LessOrEqual(t, len(option.Name), 9)
			assert.LessOrEqual(t, len(option.Description), 23)
		}
	}
}

func TestHealthAndMetrics(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	cfg.SeedData = false
	app := newTestApp(t, cfg)

	var health map[string]interface{}
	assert.Equal(t, http.StatusOK, getJSON(t, app, "/health", &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "sqlite", health["database"])

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

func TestUnknownRouteUsesErrorBody(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.SeedData = false
	app := newTestApp(t, cfg)

	var body models.ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, app, "/api/nothing-here", &body))
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
	assert.NotEmpty(t, body.Message)
}

func TestNewApp_UnreachableBrokerDisablesEvents(t *testing.T) {
	cfg := testConfig(t, "memory")
	cfg.RabbitMQURL = "http://not-a-broker"
	app := newTestApp(t, cfg)

	assert.Nil(t, app.mq)
	assert.NoError(t, app.StartConsumer(context.Background()))
}
