package core_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"cakeflow-backend/internal/core"
)

// seedBrowniesLine creates the flour ingredient, the Brownies product and a
// recipe consuming 0.2 kg of flour per unit, and returns their ids.
func seedBrowniesLine(t *testing.T, ingredients core.IngredientService, products core.ProductService, recipes core.RecipeService) (flourID, productID, recipeID string) {
	t.Helper()
	ctx := context.Background()

	flour, err := ingredients.CreateIngredient(ctx, core.CreateIngredientInput{
		Name:             "Tepung Terigu",
		CurrentStock:     decimal.NewFromInt(10),
		Unit:             "kg",
		PurchasePrice:    decPtr(15000),
		PurchaseQuantity: decPtr(1),
	})
	if err != nil {
		t.Fatalf("CreateIngredient failed: %v", err)
	}

	brownies, err := products.CreateProduct(ctx, core.CreateProductInput{
		Name:         "Brownies",
		Price:        decimal.NewFromInt(20000),
		CurrentStock: decimal.NewFromInt(0),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	recipe, err := recipes.CreateRecipe(ctx, core.CreateRecipeInput{
		ProductID: brownies.ID,
		Name:      "Resep Brownies",
	})
	if err != nil {
		t.Fatalf("CreateRecipe failed: %v", err)
	}
	_, err = recipes.AddRecipeItem(ctx, core.AddRecipeItemInput{
		RecipeID:       recipe.ID,
		IngredientID:   flour.ID,
		QuantityNeeded: decimal.NewFromFloat(0.2),
		Unit:           "kg",
	})
	if err != nil {
		t.Fatalf("AddRecipeItem failed: %v", err)
	}

	return flour.ID, brownies.ID, recipe.ID
}

func TestProductionService_LogProduction(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reporter := core.NewIssueReporter()
	ingredients := core.NewIngredientService(pool, reporter)
	products := core.NewProductService(pool, reporter)
	recipes := core.NewRecipeService(pool, reporter)
	production := core.NewProductionService(pool, recipes, reporter)
	ctx := context.Background()

	flourID, productID, recipeID := seedBrowniesLine(t, ingredients, products, recipes)

	result, err := production.LogProduction(ctx, core.LogProductionInput{
		RecipeID:         recipeID,
		ProductID:        productID,
		QuantityProduced: 10,
	}, nil)
	if err != nil {
		t.Fatalf("LogProduction failed: %v", err)
	}

	// 10 units * 0.2 kg flour * 15000/kg = 30000.
	if got := result.Log.ProductionCost.String(); got != "30000" {
		t.Errorf("production cost = %s, want 30000", got)
	}
	for _, adj := range result.StockAdjustments {
		if !adj.OK {
			t.Errorf("stock adjustment failed: %s %s: %s", adj.Operation, adj.TargetID, adj.Error)
		}
	}

	flour, err := ingredients.GetIngredient(ctx, flourID)
	if err != nil {
		t.Fatalf("GetIngredient failed: %v", err)
	}
	if got := flour.CurrentStock.String(); got != "8" {
		t.Errorf("flour stock = %s, want 8 (10 - 10*0.2)", got)
	}

	brownies, err := products.GetProduct(ctx, productID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got := brownies.CurrentStock.String(); got != "10" {
		t.Errorf("product stock = %s, want 10", got)
	}

	logs, err := production.GetProductionLogs(ctx, 10)
	if err != nil {
		t.Fatalf("GetProductionLogs failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("production logs = %d, want 1", len(logs))
	}
	if logs[0].RecipeName != "Resep Brownies" {
		t.Errorf("log should carry the recipe name")
	}
}

func TestProductionService_RejectsZeroQuantity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reporter := core.NewIssueReporter()
	recipes := core.NewRecipeService(pool, reporter)
	production := core.NewProductionService(pool, recipes, reporter)

	_, err := production.LogProduction(context.Background(), core.LogProductionInput{
		RecipeID:         "00000000-0000-0000-0000-000000000000",
		ProductID:        "00000000-0000-0000-0000-000000000000",
		QuantityProduced: 0,
	}, nil)
	if err == nil {
		t.Errorf("expected error for zero quantity")
	}
}
