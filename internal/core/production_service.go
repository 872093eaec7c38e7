package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LogProductionInput describes one production run to record.
type LogProductionInput struct {
	RecipeID         string
	ProductID        string
	QuantityProduced int
	BatchNumber      *string
	Notes            *string
}

// ProductionResult pairs the persisted log with the outcomes of the stock
// movements it triggered (one decrement per consumed ingredient plus the
// product increment).
type ProductionResult struct {
	Log              *ProductionLog    `json:"log"`
	StockAdjustments []StockAdjustment `json:"stock_adjustments"`
}

// ProductionService records production runs. Logging a run consumes each
// recipe ingredient's stock, increments the product's stock, and persists a
// cost snapshot of Σ quantity_needed × quantity_produced × average_cost.
// Stock movements are best-effort: a failed decrement is reported and noted
// in the result, and processing continues with the remaining ingredients and
// the log insert. Ingredient stock may go negative; no floor is applied.
type ProductionService interface {
	LogProduction(ctx context.Context, input LogProductionInput, userID *string) (*ProductionResult, error)
	GetProductionLogs(ctx context.Context, limit int) ([]ProductionLog, error)
}

type productionService struct {
	pool     *pgxpool.Pool
	recipes  RecipeService
	reporter *IssueReporter
}

func NewProductionService(pool *pgxpool.Pool, recipes RecipeService, reporter *IssueReporter) ProductionService {
	return &productionService{pool: pool, recipes: recipes, reporter: reporter}
}

func (s *productionService) LogProduction(ctx context.Context, input LogProductionInput, userID *string) (*ProductionResult, error) {
	if input.QuantityProduced < 1 {
		return nil, fmt.Errorf("quantity produced must be at least 1, got %d", input.QuantityProduced)
	}

	items, err := s.recipes.GetRecipeItems(ctx, input.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe items for production: %w", err)
	}

	produced := decimal.NewFromInt(int64(input.QuantityProduced))
	totalCost := decimal.Zero
	var adjustments []StockAdjustment

	for _, item := range items {
		if item.Ingredient == nil {
			continue
		}
		consumed := item.QuantityNeeded.Mul(produced)
		totalCost = totalCost.Add(consumed.Mul(item.Ingredient.AverageCost))

		adjustment := StockAdjustment{
			Operation: "decrement_ingredient_stock",
			TargetID:  item.IngredientID,
			Quantity:  consumed.String(),
			OK:        true,
		}
		if _, err := s.pool.Exec(ctx,
			"SELECT decrement_ingredient_stock($1, $2)", item.IngredientID, consumed,
		); err != nil {
			adjustment.OK = false
			adjustment.Error = err.Error()
			s.reporter.Report(err, "production:decrement-ingredient-stock")
		}
		adjustments = append(adjustments, adjustment)
	}

	productAdjustment := StockAdjustment{
		Operation: "increment_product_stock",
		TargetID:  input.ProductID,
		Quantity:  produced.String(),
		OK:        true,
	}
	if _, err := s.pool.Exec(ctx,
		"SELECT increment_product_stock($1, $2)", input.ProductID, input.QuantityProduced,
	); err != nil {
		productAdjustment.OK = false
		productAdjustment.Error = err.Error()
		s.reporter.Report(err, "production:increment-product-stock")
	}
	adjustments = append(adjustments, productAdjustment)

	var plog ProductionLog
	err = s.pool.QueryRow(ctx, `
		INSERT INTO production_logs
			(recipe_id, product_id, quantity_produced, user_id, batch_number, production_cost, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, recipe_id, product_id, quantity_produced, user_id, batch_number,
		          production_cost, notes, created_at
	`, input.RecipeID, input.ProductID, input.QuantityProduced, userID,
		input.BatchNumber, totalCost, input.Notes).Scan(
		&plog.ID, &plog.RecipeID, &plog.ProductID, &plog.QuantityProduced, &plog.UserID,
		&plog.BatchNumber, &plog.ProductionCost, &plog.Notes, &plog.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert production log: %w", err)
	}

	return &ProductionResult{Log: &plog, StockAdjustments: adjustments}, nil
}

// GetProductionLogs returns production runs newest-first with recipe and
// product names joined in. limit <= 0 means no limit.
func (s *productionService) GetProductionLogs(ctx context.Context, limit int) ([]ProductionLog, error) {
	q := `
		SELECT pl.id, pl.recipe_id, pl.product_id, pl.quantity_produced, pl.user_id,
		       pl.batch_number, pl.production_cost, pl.notes, pl.created_at,
		       COALESCE(r.name, ''), COALESCE(p.name, '')
		FROM production_logs pl
		LEFT JOIN recipes r  ON r.id = pl.recipe_id
		LEFT JOIN products p ON p.id = pl.product_id
		ORDER BY pl.created_at DESC`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "production_logs:list")
			return []ProductionLog{}, nil
		}
		return nil, fmt.Errorf("failed to query production logs: %w", err)
	}
	defer rows.Close()

	var logs []ProductionLog
	for rows.Next() {
		var plog ProductionLog
		if err := rows.Scan(
			&plog.ID, &plog.RecipeID, &plog.ProductID, &plog.QuantityProduced, &plog.UserID,
			&plog.BatchNumber, &plog.ProductionCost, &plog.Notes, &plog.CreatedAt,
			&plog.RecipeName, &plog.ProductName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan production log: %w", err)
		}
		logs = append(logs, plog)
	}
	return logs, rows.Err()
}
