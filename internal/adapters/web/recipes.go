package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"cakeflow-backend/internal/core"
)

type recipeRequest struct {
	ProductID       string  `json:"product_id"`
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	PreparationTime *int    `json:"preparation_time,omitempty"`
}

type recipeItemRequest struct {
	IngredientID   string          `json:"ingredient_id"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
	Unit           string          `json:"unit"`
}

func (h *Handler) listRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.svc.Recipes.GetRecipes(r.Context())
	if err != nil {
		writeError(w, r, "failed to list recipes", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, recipes)
}

func (h *Handler) getRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.svc.Recipes.GetRecipe(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeNotFoundOrError(w, r, err, "recipe")
		return
	}
	writeJSON(w, recipe)
}

func (h *Handler) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	recipe, err := h.svc.Recipes.CreateRecipe(r.Context(), core.CreateRecipeInput{
		ProductID:       req.ProductID,
		Name:            req.Name,
		Description:     req.Description,
		PreparationTime: req.PreparationTime,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, recipe)
}

func (h *Handler) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Recipes.DeleteRecipe(r.Context(), urlParam(r, "id")); err != nil {
		writeNotFoundOrError(w, r, err, "recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRecipeItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Recipes.GetRecipeItems(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, "failed to list recipe items", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, items)
}

func (h *Handler) addRecipeItem(w http.ResponseWriter, r *http.Request) {
	var req recipeItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.svc.Recipes.AddRecipeItem(r.Context(), core.AddRecipeItemInput{
		RecipeID:       urlParam(r, "id"),
		IngredientID:   req.IngredientID,
		QuantityNeeded: req.QuantityNeeded,
		Unit:           req.Unit,
	})
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSONStatus(w, http.StatusCreated, item)
}

func (h *Handler) deleteRecipeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Recipes.DeleteRecipeItem(r.Context(), urlParam(r, "itemID")); err != nil {
		writeNotFoundOrError(w, r, err, "recipe item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) recipeCost(w http.ResponseWriter, r *http.Request) {
	cost, err := h.svc.Recipes.GetRecipeCost(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeNotFoundOrError(w, r, err, "recipe")
		return
	}
	type response struct {
		RecipeID string          `json:"recipe_id"`
		Cost     decimal.Decimal `json:"cost"`
	}
	writeJSON(w, response{RecipeID: urlParam(r, "id"), Cost: cost})
}
