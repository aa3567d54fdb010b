package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/lead-capture/internal/entity"
	"github.com/xavierca1/lead-capture/internal/infra/catalog"
)

const maxProductListLimit = 50

type ProductSearchHandler struct {
	index *catalog.Index
}

func NewProductSearchHandler(index *catalog.Index) *ProductSearchHandler {
	return &ProductSearchHandler{index: index}
}

type ProductSearchRequest struct {
	Query    string `json:"query"`
	TenantID string `json:"tenant_id"`
	Limit    int    `json:"limit"`
}

type ProductSearchResponse struct {
	Products []catalog.Match `json:"products"`
	Total    int             `json:"total"`
	Query    string          `json:"query"`
}

func (h *ProductSearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req ProductSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.TenantID == "" || req.Query == "" {
		respondError(w, http.StatusBadRequest, "tenant_id and query are required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	matches := h.index.Search(req.TenantID, req.Query, req.Limit)
	if matches == nil {
		matches = []catalog.Match{}
	}

	respondJSON(w, http.StatusOK, ProductSearchResponse{
		Products: matches,
		Total:    len(matches),
		Query:    req.Query,
	})
}

// ProductListResponse carries unscored catalog lookups (by id the product is
// returned bare, by category or brand as this list).
type ProductListResponse struct {
	Products []entity.Product `json:"products"`
	Total    int              `json:"total"`
	Query    string           `json:"query"`
}

func (h *ProductSearchHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		respondError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, ok := h.index.ProductByID(tenantID, id)
	if !ok {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductSearchHandler) HandleByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	h.respondList(w, r, "category:"+category, func(tenantID string, limit int) []entity.Product {
		return h.index.ProductsByCategory(tenantID, category, limit)
	})
}

func (h *ProductSearchHandler) HandleByBrand(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")
	h.respondList(w, r, "brand:"+brand, func(tenantID string, limit int) []entity.Product {
		return h.index.ProductsByBrand(tenantID, brand, limit)
	})
}

func (h *ProductSearchHandler) respondList(w http.ResponseWriter, r *http.Request, query string, lookup func(string, int) []entity.Product) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		respondError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	if limit > maxProductListLimit {
		limit = maxProductListLimit
	}

	products := lookup(tenantID, limit)
	if products == nil {
		products = []entity.Product{}
	}

	respondJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    len(products),
		Query:    query,
	})
}
