package web

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"cakeflow-backend/internal/core"
)

type ingredientRequest struct {
	Name              string           `json:"name"`
	CurrentStock      decimal.Decimal  `json:"current_stock"`
	Unit              string           `json:"unit"`
	LowStockThreshold decimal.Decimal  `json:"low_stock_threshold"`
	PurchasePrice     *decimal.Decimal `json:"last_purchase_price,omitempty"`
	PurchaseQuantity  *decimal.Decimal `json:"last_purchase_quantity,omitempty"`
	PurchaseUnit      *string          `json:"last_purchase_unit,omitempty"`
}

type ingredientPatch struct {
	Name              *string          `json:"name,omitempty"`
	CurrentStock      *decimal.Decimal `json:"current_stock,omitempty"`
	Unit              *string          `json:"unit,omitempty"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
	PurchasePrice     *decimal.Decimal `json:"last_purchase_price,omitempty"`
	PurchaseQuantity  *decimal.Decimal `json:"last_purchase_quantity,omitempty"`
	PurchaseUnit      *string          `json:"last_purchase_unit,omitempty"`
}

func (h *Handler) listIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.svc.Ingredients.GetIngredients(r.Context())
	if err != nil {
		writeError(w, r, "failed to list ingredients", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, ingredients)
}

func (h *Handler) getIngredient(w http.ResponseWriter, r *http.Request) {
	ingredient, err := h.svc.Ingredients.GetIngredient(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeNotFoundOrError(w, r, err, "ingredient")
		return
	}
	writeJSON(w, ingredient)
}

func (h *Handler) createIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ingredient, err := h.svc.Ingredients.CreateIngredient(r.Context(), core.CreateIngredientInput{
		Name:              req.Name,
		CurrentStock:      req.CurrentStock,
		Unit:              req.Unit,
		LowStockThreshold: req.LowStockThreshold,
		PurchasePrice:     req.PurchasePrice,
		PurchaseQuantity:  req.PurchaseQuantity,
		PurchaseUnit:      req.PurchaseUnit,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, ingredient)
}

func (h *Handler) updateIngredient(w http.ResponseWriter, r *http.Request) {
	var req ingredientPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	ingredient, err := h.svc.Ingredients.UpdateIngredient(r.Context(), urlParam(r, "id"), core.UpdateIngredientInput{
		Name:              req.Name,
		CurrentStock:      req.CurrentStock,
		Unit:              req.Unit,
		LowStockThreshold: req.LowStockThreshold,
		PurchasePrice:     req.PurchasePrice,
		PurchaseQuantity:  req.PurchaseQuantity,
		PurchaseUnit:      req.PurchaseUnit,
	})
	if err != nil {
		writeNotFoundOrError(w, r, err, "ingredient")
		return
	}
	writeJSON(w, ingredient)
}

func (h *Handler) deleteIngredient(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ingredients.DeleteIngredient(r.Context(), urlParam(r, "id")); err != nil {
		writeNotFoundOrError(w, r, err, "ingredient")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type productRequest struct {
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	ImageURL          *string         `json:"image_url,omitempty"`
	Description       *string         `json:"description,omitempty"`
}

type productPatch struct {
	Name              *string          `json:"name,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	CurrentStock      *decimal.Decimal `json:"current_stock,omitempty"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold,omitempty"`
	ImageURL          *string          `json:"image_url,omitempty"`
	Description       *string          `json:"description,omitempty"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products.GetProducts(r.Context())
	if err != nil {
		writeError(w, r, "failed to list products", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Products.GetProduct(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeNotFoundOrError(w, r, err, "product")
		return
	}
	writeJSON(w, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.Products.CreateProduct(r.Context(), core.CreateProductInput{
		Name:              req.Name,
		Price:             req.Price,
		CurrentStock:      req.CurrentStock,
		LowStockThreshold: req.LowStockThreshold,
		ImageURL:          req.ImageURL,
		Description:       req.Description,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productPatch
	if !decodeJSON(w, r, &req) {
		return
	}
	product, err := h.svc.Products.UpdateProduct(r.Context(), urlParam(r, "id"), core.UpdateProductInput{
		Name:              req.Name,
		Price:             req.Price,
		CurrentStock:      req.CurrentStock,
		LowStockThreshold: req.LowStockThreshold,
		ImageURL:          req.ImageURL,
		Description:       req.Description,
	})
	if err != nil {
		writeNotFoundOrError(w, r, err, "product")
		return
	}
	writeJSON(w, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Products.DeleteProduct(r.Context(), urlParam(r, "id")); err != nil {
		writeNotFoundOrError(w, r, err, "product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeNotFoundOrError maps service errors onto 404 when the error indicates
// a missing row, 500 otherwise.
func writeNotFoundOrError(w http.ResponseWriter, r *http.Request, err error, resource string) {
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, r, resource+" not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	writeError(w, r, "failed to access "+resource, "INTERNAL_ERROR", http.StatusInternalServerError)
}
