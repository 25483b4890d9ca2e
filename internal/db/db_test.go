package db

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "storefront/internal/models"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	gdb, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	p := models.Product{Name: "Lamp", Price: decimal.RequireFromString("12.50"), Stock: 3}
	require.NoError(t, gdb.Create(&p).Error)

	var got models.Product
	require.NoError(t, gdb.First(&got, p.ID).Error)
	assert.Equal(t, "Lamp", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")), "price %s", got.Price)
	assert.Equal(t, 3, got.Stock)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	assert.Error(t, err)
}

func TestOpenPostgresNeedsDSN(t *testing.T) {
	_, err := Open("postgres", "")
	assert.ErrorContains(t, err, "DB_DSN")
}

func TestMigrateBackfillsSearchText(t *testing.T) {
	gdb, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	p := models.Product{Name: "ÁRBOL", Description: "Decoración"}
	require.NoError(t, gdb.Create(&p).Error)
	require.NoError(t, gdb.Exec("UPDATE products SET search_text = ''").Error)

	require.NoError(t, Migrate(gdb))
	var got models.Product
	require.NoError(t, gdb.First(&got, p.ID).Error)
	assert.Equal(t, "árbol\ndecoración", got.SearchText)
}
