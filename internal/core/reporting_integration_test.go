package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cakeflow-backend/internal/core"
)

func TestReportingService_MonthlyReport(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reporter := core.NewIssueReporter()
	ingredients := core.NewIngredientService(pool, reporter)
	products := core.NewProductService(pool, reporter)
	recipes := core.NewRecipeService(pool, reporter)
	orders := core.NewOrderService(pool, reporter)
	reporting := core.NewReportingService(pool, reporter)
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
		CurrentStock: decimal.NewFromInt(20),
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
	// 0.5 kg flour per unit: HPP 7500.
	if _, err := recipes.AddRecipeItem(ctx, core.AddRecipeItemInput{
		RecipeID:       recipe.ID,
		IngredientID:   flour.ID,
		QuantityNeeded: decimal.NewFromFloat(0.5),
		Unit:           "kg",
	}); err != nil {
		t.Fatalf("AddRecipeItem failed: %v", err)
	}

	// Two units sold at list price this month.
	if _, err := orders.CreateOrder(ctx, core.CreateOrderInput{
		PaymentMethod: core.PaymentCash,
		Items: []core.OrderLineInput{
			{ProductID: brownies.ID, Quantity: 2, PricePerItem: decimal.NewFromInt(20000)},
		},
	}, nil); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	report, err := reporting.GetFinancialReportAt(ctx, time.Now())
	if err != nil {
		t.Fatalf("GetFinancialReportAt failed: %v", err)
	}

	if got := report.TotalRevenue.String(); got != "40000" {
		t.Errorf("total revenue = %s, want 40000", got)
	}
	if got := report.TotalCOGS.String(); got != "15000" {
		t.Errorf("total COGS = %s, want 15000", got)
	}
	if got := report.GrossProfit.String(); got != "25000" {
		t.Errorf("gross profit = %s, want 25000", got)
	}
	if got := report.GrossMargin.String(); got != "0.625" {
		t.Errorf("gross margin = %s, want 0.625", got)
	}

	if len(report.ProductCosts) != 1 {
		t.Fatalf("product rows = %d, want 1", len(report.ProductCosts))
	}
	row := report.ProductCosts[0]
	if row.ProductID != brownies.ID {
		t.Errorf("row keyed by %s, want product id", row.ProductID)
	}
	if got := row.HPPPerUnit.String(); got != "7500" {
		t.Errorf("HPP = %s, want 7500", got)
	}
	if row.GrossMarginPercentage == nil || row.GrossMarginPercentage.String() != "62.5" {
		t.Errorf("gross margin %% = %v, want 62.5", row.GrossMarginPercentage)
	}
	if row.TotalQuantitySold != 2 {
		t.Errorf("quantity sold = %d, want 2", row.TotalQuantitySold)
	}
}

func TestReportingService_DashboardStats(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	reporter := core.NewIssueReporter()
	ingredients := core.NewIngredientService(pool, reporter)
	products := core.NewProductService(pool, reporter)
	orders := core.NewOrderService(pool, reporter)
	reporting := core.NewReportingService(pool, reporter)
	ctx := context.Background()

	// One product below its threshold, one comfortably above.
	low, err := products.CreateProduct(ctx, core.CreateProductInput{
		Name:              "Donat",
		Price:             decimal.NewFromInt(5000),
		CurrentStock:      decimal.NewFromInt(2),
		LowStockThreshold: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if _, err := products.CreateProduct(ctx, core.CreateProductInput{
		Name:              "Brownies",
		Price:             decimal.NewFromInt(20000),
		CurrentStock:      decimal.NewFromInt(50),
		LowStockThreshold: decimal.NewFromInt(5),
	}); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	// Threshold zero means "unset": never counted as low.
	if _, err := ingredients.CreateIngredient(ctx, core.CreateIngredientInput{
		Name:         "Tepung Terigu",
		CurrentStock: decimal.NewFromInt(0),
		Unit:         "kg",
	}); err != nil {
		t.Fatalf("CreateIngredient failed: %v", err)
	}

	if _, err := orders.CreateOrder(ctx, core.CreateOrderInput{
		PaymentMethod: core.PaymentCash,
		Items: []core.OrderLineInput{
			{ProductID: low.ID, Quantity: 1, PricePerItem: decimal.NewFromInt(5000)},
		},
	}, nil); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	stats, err := reporting.GetDashboardStats(ctx)
	if err != nil {
		t.Fatalf("GetDashboardStats failed: %v", err)
	}
	if stats.TotalProducts != 2 {
		t.Errorf("total products = %d, want 2", stats.TotalProducts)
	}
	if stats.LowStockProducts != 1 {
		t.Errorf("low stock products = %d, want 1", stats.LowStockProducts)
	}
	if stats.TotalIngredients != 1 {
		t.Errorf("total ingredients = %d, want 1", stats.TotalIngredients)
	}
	if stats.LowStockIngredients != 0 {
		t.Errorf("low stock ingredients = %d, want 0 (zero threshold is unset)", stats.LowStockIngredients)
	}
	if stats.TodayOrders != 1 {
		t.Errorf("today orders = %d, want 1", stats.TodayOrders)
	}
	if got := stats.TodayRevenue.String(); got != "5000" {
		t.Errorf("today revenue = %s, want 5000", got)
	}
}
