package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogListsByName(t *testing.T) {
	app := newApp(t)
	app.product("Table", "120.00", 1)
	app.product("Armchair", "80.00", 0)
	v := app.visitor()

	p := v.get("/")
	require.Equal(t, http.StatusOK, p.status)
	assert.Less(t, strings.Index(p.body, "Armchair"), strings.Index(p.body, "Table"))
	assert.Contains(t, p.body, "Out of stock")
	assert.Contains(t, p.body, "120.00")
}

func TestCatalogSearch(t *testing.T) {
	app := newApp(t)
	app.product("Oak table", "1.00", 1)
	app.product("Sofa", "1.00", 1)
	v := app.visitor()

	p := v.get("/?q=TABLE")
	require.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "Oak table")
	assert.NotContains(t, p.body, "Sofa")

	p = v.get("/?q=piano")
	assert.Contains(t, p.body, "No products found.")
}

func TestProductDetail(t *testing.T) {
	app := newApp(t)
	lamp := app.product("Lamp", "15.50", 4)
	v := app.visitor()

	p := v.get(fmt.Sprintf("/producto/%d", lamp.ID))
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "15.50")
	assert.Contains(t, p.body, "4 in stock")

	assert.Equal(t, http.StatusNotFound, v.get("/producto/999").status)
	assert.Equal(t, http.StatusNotFound, v.get("/producto/abc").status)
	assert.Equal(t, http.StatusNotFound, v.get("/nowhere").status)
}

func TestProductsJSON(t *testing.T) {
	app := newApp(t)
	app.product("Lamp", "15.5", 4)
	v := app.visitor()

	p := v.get("/products?q=lam")
	require.Equal(t, http.StatusOK, p.status)
	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(p.body), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Lamp", out[0]["name"])
	assert.Equal(t, "15.50", out[0]["price"])
}

func TestHealthAndMetrics(t *testing.T) {
	app := newApp(t)
	v := app.visitor()

	p := v.get("/health")
	assert.Equal(t, http.StatusOK, p.status)
	assert.JSONEq(t, `{"ok":true}`, p.body)

	p = v.get("/metrics")
	assert.Equal(t, http.StatusOK, p.status)
	assert.Contains(t, p.body, "storefront_http_requests_total")
}
