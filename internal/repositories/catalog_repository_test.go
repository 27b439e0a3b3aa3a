package repositories_test

import (
	"context"
	"fmt"
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productRepository = repositories.CatalogRepository[models.Product, models.ProductOption]

func setupSQLite(t *testing.T) productRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories.NewGORMCatalogRepository[models.Product, models.ProductOption](db)
}

func setupMemory(t *testing.T) productRepository {
	t.Helper()
	return repositories.NewMemoryCatalogRepository[models.Product, models.ProductOption]()
}

// forEachRepository runs the same behaviour checks against both stores.
func forEachRepository(t *testing.T, test func(t *testing.T, repo productRepository)) {
	t.Run("gorm", func(t *testing.T) { test(t, setupSQLite(t)) })
	t.Run("memory", func(t *testing.T) { test(t, setupMemory(t)) })
}

func newProduct(name string, price float64) *models.Product {
	return &models.Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   name + " description",
		Price:         price,
		DeliveryPrice: 5,
	}
}

func newOption(parent uuid.UUID, name string) *models.ProductOption {
	return &models.ProductOption{
		ID:          uuid.New(),
		ProductID:   parent,
		Name:        name,
		Description: name + " finish",
	}
}

func TestCatalogRepository_CreateAndGet(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo productRepository) {
		ctx := context.Background()
		p := newProduct("iPhone 11", 1299.99)
		require.NoError(t, repo.CreateParent(ctx, p))

		got, err := repo.GetParent(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
		assert.Equal(t, "iPhone 11", got.Name)
		assert.Equal(t, 1299.99, got.Price)

		_, err = repo.GetParent(ctx, uuid.New())
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCatalogRepository_ListAndFilter(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo productRepository) {
		ctx := context.Background()
		all, err := repo.ListParents(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		require.NoError(t, repo.CreateParent(ctx, newProduct("Pixel", 800)))
		require.NoError(t, repo.CreateParent(ctx, newProduct("Pixel", 900)))
		require.NoError(t, repo.CreateParent(ctx, newProduct("Galaxy", 700)))

		all, err = repo.ListParents(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		pixels, err := repo.ListParentsByName(ctx, "Pixel")
		require.NoError(t, err)
		assert.Len(t, pixels, 2)

		none, err := repo.ListParentsByName(ctx, "Nokia")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestCatalogRepository_TopParentsByPrice(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo productRepository) {
		ctx := context.Background()
		for i, price := range []float64{10, 400, 25.5, 999, 50} {
			require.NoError(t, repo.CreateParent(ctx, newProduct(fmt.Sprintf("Phone %d", i), price)))
		}

		top, err := repo.TopParentsByPrice(ctx, 3)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, float64(999), top[0].Price)
		assert.Equal(t, float64(400), top[1].Price)
		assert.Equal(t, float64(50), top[2].Price)
	})
}

func TestCatalogRepository_ListParentsByOptionName(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo productRepository) {
		ctx := context.Background()
		a := newProduct("Phone A", 100)
		b := newProduct("Phone B", 200)
		require.NoError(t, repo.CreateParent(ctx, a))
		require.NoError(t, repo.CreateParent(ctx, b))
		require.NoError(t, repo.CreateOption(ctx, newOption(a.ID, "Colour")))
		require.NoError(t, repo.CreateOption(ctx, newOption(a.ID, "colour")))
		require.NoError(t, repo.CreateOption(ctx, newOption(b.ID, "Capacity")))

		owners, err := repo.ListParentsByOptionName(ctx, "COLOUR")
		require.NoError(t, err)
		require.Len(t, owners, 1)
		assert.Equal(t, a.ID, owners[0].ID)

		owners, err = repo.ListParentsByOptionName(ctx, "Weight")
		require.NoError(t, err)
		assert.Empty(t, owners)
	})
}

func TestCatalogRepository_UpdateParent(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo productRepository) {
		ctx := context.Background()
		p := newProduct("Galaxy S7", 833.99)
		require.NoError(t, repo.CreateParent(ctx, p))

		p.Name = "Galaxy S7 Edge"
		p.DeliveryPrice = 0
		require.NoError(t, repo.UpdateParent(ctx, p))

		got, err := repo.GetParent(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Galaxy S7 Edge", got.Name)
		assert.Equal(t, float64(0), got.DeliveryPrice)

		// A deleted row is not brought back by an update.
		require.NoError(t, repo.DeleteParent(ctx, p.ID))
		err = repo.UpdateParent(ctx, p)
		assert.ErrorIs(t, err, repositories.ErrConflict)
		_, err = repo.GetParent(ctx, p.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCatalogRepository_DeleteParentRemovesOptions(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo productRepository) {
		ctx := context.Background()
		keep := newProduct("Keep", 10)
		drop := newProduct("Drop", 20)
		require.NoError(t, repo.CreateParent(ctx, keep))
		require.NoError(t, repo.CreateParent(ctx, drop))
		kept := newOption(keep.ID, "White")
		dropped := newOption(drop.ID, "Black")
		require.NoError(t, repo.CreateOption(ctx, kept))
		require.NoError(t, repo.CreateOption(ctx, dropped))

		require.NoError(t, repo.DeleteParent(ctx, drop.ID))

		_, err := repo.GetOption(ctx, dropped.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		options, err := repo.ListOptions(ctx, drop.ID)
		require.NoError(t, err)
		assert.Empty(t, options)

		options, err = repo.ListOptions(ctx, keep.ID)
		require.NoError(t, err)
		require.Len(t, options, 1)
		assert.Equal(t, kept.ID, options[0].ID)

		err = repo.DeleteParent(ctx, drop.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCatalogRepository_Options(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo productRepository) {
		ctx := context.Background()
		p := newProduct("Nokia 7", 599)
		require.NoError(t, repo.CreateParent(ctx, p))

		o := newOption(p.ID, "White")
		require.NoError(t, repo.CreateOption(ctx, o))

		got, err := repo.GetOption(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ProductID)
		assert.Equal(t, "White", got.Name)

		o.Name = "Black"
		o.Description = "Black finish"
		require.NoError(t, repo.UpdateOption(ctx, o))
		got, err = repo.GetOption(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "Black", got.Name)

		require.NoError(t, repo.DeleteOption(ctx, o.ID))
		assert.ErrorIs(t, repo.DeleteOption(ctx, o.ID), repositories.ErrNotFound)
		assert.ErrorIs(t, repo.UpdateOption(ctx, o), repositories.ErrConflict)
	})
}

func TestCatalogRepository_CreateOptionRequiresParent(t *testing.T) {
	forEachRepository(t, func(t *testing.T, repo productRepository) {
		err := repo.CreateOption(context.Background(), newOption(uuid.New(), "Orphan"))
		assert.Error(t, err)
	})
}

func TestGORMCatalogRepository_InventoryTables(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))

	repo := repositories.NewGORMCatalogRepository[models.InventoryItem, models.InventoryItemOption](db)
	ctx := context.Background()

	item := &models.InventoryItem{ID: uuid.New(), Name: "Samsung Galaxy S7", Description: "Warehouse A", Price: 833.99}
	require.NoError(t, repo.CreateParent(ctx, item))
	option := &models.InventoryItemOption{ID: uuid.New(), InventoryItemID: item.ID, Name: "Capacity", Description: "64GB"}
	require.NoError(t, repo.CreateOption(ctx, option))

	owners, err := repo.ListParentsByOptionName(ctx, "capacity")
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, item.ID, owners[0].ID)

	require.NoError(t, repo.DeleteParent(ctx, item.ID))
	options, err := repo.ListOptions(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := repositories.OpenDatabase("oracle", "")
	assert.Error(t, err)
}
