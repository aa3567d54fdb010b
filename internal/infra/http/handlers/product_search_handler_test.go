package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/catalog"
)

const testCatalogJSON = `[
	{
		"ID": 101,
		"Name": "CeraVe Moisturizing Cream",
		"Description": "Rich moisturizing cream with hyaluronic acid and ceramides.",
		"Categories": "Skincare > Moisturizers",
		"Brand": "CeraVe",
		"Regular price": 19.99,
		"In stock?": 1
	},
	{
		"ID": 102,
		"Name": "CeraVe Hydrating Cleanser",
		"Description": "Hydrating facial cleanser for normal to dry skin.",
		"Categories": "Skincare > Cleansers",
		"Brand": "CeraVe",
		"Regular price": 15.99,
		"Sale price": 12.49,
		"In stock?": 1
	},
	{
		"ID": 103,
		"Name": "Anthelios Sunscreen SPF 50",
		"Description": "Broad spectrum facial sunscreen.",
		"Categories": "Skincare > Sunscreen",
		"Brand": "La Roche-Posay",
		"Regular price": 34.99,
		"In stock?": 1
	}
]`

func testIndex(t *testing.T) *catalog.Index {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tenant-1.json"), []byte(testCatalogJSON), 0o644))
	ix, err := catalog.LoadDir(dir)
	require.NoError(t, err)
	return ix
}

func getWithParams(h http.HandlerFunc, target string, params map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

// TestProductSearch - fuzzy search over the tenant catalog
func TestProductSearch(t *testing.T) {
	h := NewProductSearchHandler(testIndex(t))

	body, _ := json.Marshal(ProductSearchRequest{Query: "cerave moisturizer", TenantID: "tenant-1", Limit: 5})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProductSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Products)
	assert.Equal(t, "CeraVe Moisturizing Cream", resp.Products[0].Product.Name)
	assert.Equal(t, len(resp.Products), resp.Total)
}

// TestProductSearchValidation
func TestProductSearchValidation(t *testing.T) {
	h := NewProductSearchHandler(testIndex(t))

	for _, body := range []string{
		`{"query": "cream"}`,
		`{"tenant_id": "tenant-1"}`,
		`{"query": `,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/search", bytes.NewReader([]byte(body)))
		rec := httptest.NewRecorder()
		h.HandleSearch(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

// TestGetProductByID - lookup by id is tenant scoped and 404s on misses
func TestGetProductByID(t *testing.T) {
	h := NewProductSearchHandler(testIndex(t))

	rec := getWithParams(h.HandleGetProduct, "/api/v1/products/102?tenant_id=tenant-1", map[string]string{"productID": "102"})
	require.Equal(t, http.StatusOK, rec.Code)
	var p entity.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "CeraVe Hydrating Cleanser", p.Name)
	assert.Equal(t, 12.49, p.DisplayPrice())

	rec = getWithParams(h.HandleGetProduct, "/api/v1/products/999?tenant_id=tenant-1", map[string]string{"productID": "999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = getWithParams(h.HandleGetProduct, "/api/v1/products/102?tenant_id=tenant-other", map[string]string{"productID": "102"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = getWithParams(h.HandleGetProduct, "/api/v1/products/abc?tenant_id=tenant-1", map[string]string{"productID": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = getWithParams(h.HandleGetProduct, "/api/v1/products/102", map[string]string{"productID": "102"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestProductsByCategoryEndpoint
func TestProductsByCategoryEndpoint(t *testing.T) {
	h := NewProductSearchHandler(testIndex(t))

	rec := getWithParams(h.HandleByCategory, "/api/v1/products/category/sunscreen?tenant_id=tenant-1", map[string]string{"category": "sunscreen"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProductListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Anthelios Sunscreen SPF 50", resp.Products[0].Name)
	assert.Equal(t, "category:sunscreen", resp.Query)

	rec = getWithParams(h.HandleByCategory, "/api/v1/products/category/skincare?tenant_id=tenant-1&limit=2", map[string]string{"category": "skincare"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 2)
}

// TestProductsByBrandEndpoint
func TestProductsByBrandEndpoint(t *testing.T) {
	h := NewProductSearchHandler(testIndex(t))

	rec := getWithParams(h.HandleByBrand, "/api/v1/products/brand/cerave?tenant_id=tenant-1", map[string]string{"brand": "cerave"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProductListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 2)
	assert.Equal(t, "brand:cerave", resp.Query)

	rec = getWithParams(h.HandleByBrand, "/api/v1/products/brand/nivea?tenant_id=tenant-1", map[string]string{"brand": "nivea"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Products)
	assert.Zero(t, resp.Total)

	rec = getWithParams(h.HandleByBrand, "/api/v1/products/brand/cerave", map[string]string{"brand": "cerave"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
