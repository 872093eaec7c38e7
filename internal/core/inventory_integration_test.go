package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"cakeflow-backend/internal/core"
)

func TestIngredientService_PurchaseNormalization(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reporter := core.NewIssueReporter()
	ingredients := core.NewIngredientService(pool, reporter)
	ctx := context.Background()

	// Stock tracked in grams, purchased by the kilogram: 15000 for 1 kg
	// must land as 15 per gram.
	created, err := ingredients.CreateIngredient(ctx, core.CreateIngredientInput{
		Name:              "Tepung Terigu",
		CurrentStock:      decimal.NewFromInt(2000),
		Unit:              "g",
		LowStockThreshold: decimal.NewFromInt(500),
		PurchasePrice:     decPtr(15000),
		PurchaseQuantity:  decPtr(1),
		PurchaseUnit:      strPtr("kg"),
	})
	if err != nil {
		t.Fatalf("CreateIngredient failed: %v", err)
	}
	if got := created.AverageCost.String(); got != "15" {
		t.Errorf("average cost = %s per g, want 15", got)
	}

	// A new purchase at a different price reprices the average cost.
	updated, err := ingredients.UpdateIngredient(ctx, created.ID, core.UpdateIngredientInput{
		PurchasePrice:    decPtr(18000),
		PurchaseQuantity: decPtr(1),
		PurchaseUnit:     strPtr("kg"),
	})
	if err != nil {
		t.Fatalf("UpdateIngredient failed: %v", err)
	}
	if got := updated.AverageCost.String(); got != "18" {
		t.Errorf("average cost after repurchase = %s, want 18", got)
	}

	// An update without price data must not touch the stored cost.
	updated, err = ingredients.UpdateIngredient(ctx, created.ID, core.UpdateIngredientInput{
		CurrentStock: decPtr(2500),
	})
	if err != nil {
		t.Fatalf("UpdateIngredient (stock only) failed: %v", err)
	}
	if got := updated.AverageCost.String(); got != "18" {
		t.Errorf("average cost after stock update = %s, want 18", got)
	}
	if got := updated.CurrentStock.String(); got != "2500" {
		t.Errorf("current stock = %s, want 2500", got)
	}
}

func TestIngredientService_CrossCategoryPurchaseKeepsRawQuantity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	var warnings []string
	reporter := core.NewIssueReporterWithLogger(func(format string, args ...any) {
		warnings = append(warnings, format)
	})
	ingredients := core.NewIngredientService(pool, reporter)
	ctx := context.Background()

	// Eggs stocked by count but bought by the kilogram: no conversion
	// exists, so the raw quantity is used and a warning is emitted.
	created, err := ingredients.CreateIngredient(ctx, core.CreateIngredientInput{
		Name:             "Telur",
		CurrentStock:     decimal.NewFromInt(30),
		Unit:             "butir",
		PurchasePrice:    decPtr(28000),
		PurchaseQuantity: decPtr(2),
		PurchaseUnit:     strPtr("kg"),
	})
	if err != nil {
		t.Fatalf("CreateIngredient failed: %v", err)
	}
	if got := created.AverageCost.String(); got != "14000" {
		t.Errorf("average cost = %s, want 14000 (28000 / raw quantity 2)", got)
	}
	if len(warnings) == 0 {
		t.Errorf("expected a unit-mismatch warning")
	}
}

func TestRecipeService_CostFromItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reporter := core.NewIssueReporter()
	ingredients := core.NewIngredientService(pool, reporter)
	products := core.NewProductService(pool, reporter)
	recipes := core.NewRecipeService(pool, reporter)
	ctx := context.Background()

	flour, err := ingredients.CreateIngredient(ctx, core.CreateIngredientInput{
		Name:             "Tepung Terigu",
		CurrentStock:     decimal.NewFromInt(5),
		Unit:             "kg",
		PurchasePrice:    decPtr(15000),
		PurchaseQuantity: decPtr(1),
	})
	if err != nil {
		t.Fatalf("CreateIngredient failed: %v", err)
	}
	sugar, err := ingredients.CreateIngredient(ctx, core.CreateIngredientInput{
		Name:             "Gula Pasir",
		CurrentStock:     decimal.NewFromInt(3),
		Unit:             "kg",
		PurchasePrice:    decPtr(16000),
		PurchaseQuantity: decPtr(1),
	})
	if err != nil {
		t.Fatalf("CreateIngredient failed: %v", err)
	}

	brownies, err := products.CreateProduct(ctx, core.CreateProductInput{
		Name:  "Brownies",
		Price: decimal.NewFromInt(20000),
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

	for _, item := range []core.AddRecipeItemInput{
		{RecipeID: recipe.ID, IngredientID: flour.ID, QuantityNeeded: decimal.NewFromFloat(0.4), Unit: "kg"},
		{RecipeID: recipe.ID, IngredientID: sugar.ID, QuantityNeeded: decimal.NewFromFloat(0.25), Unit: "kg"},
	} {
		if _, err := recipes.AddRecipeItem(ctx, item); err != nil {
			t.Fatalf("AddRecipeItem failed: %v", err)
		}
	}

	// 0.4 * 15000 + 0.25 * 16000 = 10000
	cost, err := recipes.GetRecipeCost(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeCost failed: %v", err)
	}
	if got := cost.String(); got != "10000" {
		t.Errorf("recipe cost = %s, want 10000", got)
	}

	loaded, err := recipes.GetRecipe(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipe failed: %v", err)
	}
	if loaded.Product == nil || loaded.Product.Name != "Brownies" {
		t.Errorf("recipe should carry its linked product")
	}
}

func TestIngredientService_DeleteMissing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ingredients := core.NewIngredientService(pool, core.NewIssueReporter())
	err := ingredients.DeleteIngredient(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func strPtr(s string) *string { return &s }
