package web

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"cakeflow-backend/internal/core"
)

type orderLineRequest struct {
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
}

type orderRequest struct {
	CustomerName  *string            `json:"customer_name,omitempty"`
	PaymentMethod core.PaymentMethod `json:"payment_method"`
	Notes         *string            `json:"notes,omitempty"`
	Items         []orderLineRequest `json:"items"`
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	orders, err := h.svc.Orders.GetOrders(r.Context(), limit)
	if err != nil {
		writeError(w, r, "failed to list orders", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(urlParam(r, "id"))
	if err != nil {
		writeError(w, r, "invalid order id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	order, err := h.svc.Orders.GetOrder(r.Context(), id)
	if err != nil {
		writeNotFoundOrError(w, r, err, "order")
		return
	}
	writeJSON(w, order)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]core.OrderLineInput, len(req.Items))
	for i, line := range req.Items {
		items[i] = core.OrderLineInput{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			PricePerItem: line.PricePerItem,
		}
	}

	result, err := h.svc.Orders.CreateOrder(r.Context(), core.CreateOrderInput{
		CustomerName:  req.CustomerName,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Items:         items,
	}, callerID(r))
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

type productionRequest struct {
	RecipeID         string  `json:"recipe_id"`
	ProductID        string  `json:"product_id"`
	QuantityProduced int     `json:"quantity_produced"`
	BatchNumber      *string `json:"batch_number,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

func (h *Handler) listProductionLogs(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	logs, err := h.svc.Production.GetProductionLogs(r.Context(), limit)
	if err != nil {
		writeError(w, r, "failed to list production logs", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, logs)
}

func (h *Handler) logProduction(w http.ResponseWriter, r *http.Request) {
	var req productionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.Production.LogProduction(r.Context(), core.LogProductionInput{
		RecipeID:         req.RecipeID,
		ProductID:        req.ProductID,
		QuantityProduced: req.QuantityProduced,
		BatchNumber:      req.BatchNumber,
		Notes:            req.Notes,
	}, callerID(r))
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, result)
}

// callerID returns the authenticated user's id, or nil outside an
// authenticated context.
func callerID(r *http.Request) *string {
	if identity := identityFromContext(r.Context()); identity != nil {
		return &identity.ID
	}
	return nil
}

// queryInt parses an integer query parameter, returning def when absent or
// malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
