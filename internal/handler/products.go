// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/olegiv/inventory-go/internal/middleware"
	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/service"
	"github.com/olegiv/inventory-go/internal/store"
	"github.com/olegiv/inventory-go/internal/util"
)

// ProductsHandler handles product management and dashboard endpoints.
type ProductsHandler struct {
	products   *service.ProductService
	categories *service.CategoryService
}

// NewProductsHandler creates a new ProductsHandler.
func NewProductsHandler(products *service.ProductService, categories *service.CategoryService) *ProductsHandler {
	return &ProductsHandler{
		products:   products,
		categories: categories,
	}
}

// productView is the JSON shape of a product, with its category resolved
// and the price rendered for display.
type productView struct {
	store.ProductWithCategory
	CategoryID   *int64  `json:"category_id,omitempty"`
	CategoryName *string `json:"category_name,omitempty"`
	PriceDisplay string  `json:"price_display"`
}

// newProductView converts a store row into its response shape.
func newProductView(p store.ProductWithCategory) productView {
	v := productView{
		ProductWithCategory: p,
		PriceDisplay:        util.FormatCurrency(p.Price),
	}
	if p.CategoryID.Valid {
		id := p.CategoryID.Int64
		v.CategoryID = &id
	}
	if p.CategoryName.Valid {
		name := p.CategoryName.String
		v.CategoryName = &name
	}
	return v
}

// newProductViews converts a slice of store rows.
func newProductViews(products []store.ProductWithCategory) []productView {
	views := make([]productView, len(products))
	for i, p := range products {
		views[i] = newProductView(p)
	}
	return views
}

// List handles GET /dashboard/products. The optional q parameter filters
// by case-insensitive substring match on name or description.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, newProductViews(products), &Meta{Total: int64(len(products))})
}

// Get handles GET /dashboard/products/{id}.
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid product ID", nil)
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, newProductView(product), nil)
}

// productRequest is the create/update body. Price accepts a JSON number
// or string; strings avoid float rounding on the client side.
type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	CategoryID  *int64          `json:"category_id"`
}

func (req *productRequest) params() service.ProductParams {
	return service.ProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}
}

// Create handles POST /dashboard/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	product, err := h.products.Create(r.Context(), req.params(), middleware.GetUserIDPtr(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, newProductView(product))
}

// Update handles PUT /dashboard/products/{id}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid product ID", nil)
		return
	}

	var req productRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	product, err := h.products.Update(r.Context(), id, req.params(), middleware.GetUserIDPtr(r))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, newProductView(product), nil)
}

// Delete handles DELETE /dashboard/products/{id}.
func (h *ProductsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid product ID", nil)
		return
	}

	if err := h.products.Delete(r.Context(), id, middleware.GetUserIDPtr(r)); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, map[string]string{"message": "Product deleted"}, nil)
}

// LowStock handles GET /dashboard/products/low-stock.
func (h *ProductsHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.LowStock(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, newProductViews(products), &Meta{Total: int64(len(products))})
}

// Stats handles GET /dashboard/stats.
func (h *ProductsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.products.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteSuccess(w, stats, nil)
}

// dashboardSummary is the GET /dashboard response.
type dashboardSummary struct {
	User          *model.User   `json:"user"`
	Stats         service.Stats `json:"stats"`
	CategoryCount int64         `json:"category_count"`
	LowStock      []productView `json:"low_stock"`
}

// Summary handles GET /dashboard. It combines the signed-in user, the
// inventory statistics, the category count, and the current low stock list.
func (h *ProductsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.products.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	categories, err := h.categories.List(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	lowStock, err := h.products.LowStock(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, dashboardSummary{
		User:          middleware.GetUser(r),
		Stats:         stats,
		CategoryCount: int64(len(categories)),
		LowStock:      newProductViews(lowStock),
	}, nil)
}
