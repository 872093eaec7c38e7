package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// averageCostScale is the rounding applied to every derived average cost.
const averageCostScale = 4

// ComputeAverageCost derives an ingredient's per-unit cost from a purchase
// price and the purchase quantity normalized into the ingredient's own unit.
// With a usable quantity the cost is price/quantity; without one the price is
// treated as already being a per-unit cost. Result is rounded to 4 decimals.
func ComputeAverageCost(purchasePrice decimal.Decimal, normalizedQuantity *decimal.Decimal) decimal.Decimal {
	if normalizedQuantity != nil && normalizedQuantity.IsPositive() {
		return purchasePrice.Div(*normalizedQuantity).Round(averageCostScale)
	}
	return purchasePrice.Round(averageCostScale)
}

// CreateIngredientInput carries the fields accepted on ingredient creation.
// Purchase fields are optional; when PurchaseUnit is nil the stock unit is
// assumed.
type CreateIngredientInput struct {
	Name              string
	CurrentStock      decimal.Decimal
	Unit              string
	LowStockThreshold decimal.Decimal
	PurchasePrice     *decimal.Decimal
	PurchaseQuantity  *decimal.Decimal
	PurchaseUnit      *string
}

// UpdateIngredientInput carries a partial update; nil fields are untouched.
type UpdateIngredientInput struct {
	Name              *string
	CurrentStock      *decimal.Decimal
	Unit              *string
	LowStockThreshold *decimal.Decimal
	PurchasePrice     *decimal.Decimal
	PurchaseQuantity  *decimal.Decimal
	PurchaseUnit      *string
}

// IngredientService manages raw-material records and derives their average
// cost whenever a purchase price is supplied. The derived cost is the sole
// input to recipe costing, so it is recomputed here and nowhere else.
type IngredientService interface {
	GetIngredients(ctx context.Context) ([]Ingredient, error)
	GetIngredient(ctx context.Context, id string) (*Ingredient, error)
	CreateIngredient(ctx context.Context, input CreateIngredientInput) (*Ingredient, error)
	UpdateIngredient(ctx context.Context, id string, updates UpdateIngredientInput) (*Ingredient, error)
	DeleteIngredient(ctx context.Context, id string) error
}

type ingredientService struct {
	pool     *pgxpool.Pool
	reporter *IssueReporter
}

func NewIngredientService(pool *pgxpool.Pool, reporter *IssueReporter) IngredientService {
	return &ingredientService{pool: pool, reporter: reporter}
}

const ingredientColumns = `id, name, current_stock, unit, low_stock_threshold, average_cost,
	last_purchase_price, last_purchase_quantity, last_purchase_unit, created_at, updated_at`

func scanIngredient(row pgx.Row) (*Ingredient, error) {
	var ing Ingredient
	err := row.Scan(
		&ing.ID, &ing.Name, &ing.CurrentStock, &ing.Unit, &ing.LowStockThreshold,
		&ing.AverageCost, &ing.LastPurchasePrice, &ing.LastPurchaseQuantity,
		&ing.LastPurchaseUnit, &ing.CreatedAt, &ing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

func (s *ingredientService) GetIngredients(ctx context.Context) ([]Ingredient, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		ORDER BY name ASC
	`)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "ingredients:list")
			return []Ingredient{}, nil
		}
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ingredients = append(ingredients, *ing)
	}
	return ingredients, rows.Err()
}

func (s *ingredientService) GetIngredient(ctx context.Context, id string) (*Ingredient, error) {
	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		SELECT `+ingredientColumns+`
		FROM ingredients
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch ingredient: %w", err)
	}
	return ing, nil
}

// warnOnCategoryMismatch reports a purchase whose unit category differs from
// the ingredient's tracking unit. The raw quantity is still used, which
// mis-costs the ingredient; the warning gives the inconsistency a trace.
func (s *ingredientService) warnOnCategoryMismatch(purchaseUnit, baseUnit string) {
	p, b := ResolveUnit(purchaseUnit), ResolveUnit(baseUnit)
	if p.Category != b.Category {
		s.reporter.Report(
			fmt.Errorf("purchase unit %q (%s) does not match stock unit %q (%s); quantity used unconverted",
				purchaseUnit, p.Category, baseUnit, b.Category),
			"ingredients:unit-category",
		)
	}
}

func (s *ingredientService) CreateIngredient(ctx context.Context, input CreateIngredientInput) (*Ingredient, error) {
	purchaseUnit := input.Unit
	if input.PurchaseUnit != nil {
		purchaseUnit = *input.PurchaseUnit
	}

	normalized := NormalizePurchaseQuantity(input.PurchaseQuantity, purchaseUnit, input.Unit)
	if input.PurchaseQuantity != nil && input.PurchaseQuantity.IsPositive() {
		s.warnOnCategoryMismatch(purchaseUnit, input.Unit)
	}

	averageCost := decimal.Zero
	if input.PurchasePrice != nil {
		averageCost = ComputeAverageCost(*input.PurchasePrice, normalized)
	}

	ing, err := scanIngredient(s.pool.QueryRow(ctx, `
		INSERT INTO ingredients
			(name, current_stock, unit, low_stock_threshold, average_cost,
			 last_purchase_price, last_purchase_quantity, last_purchase_unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+ingredientColumns+`
	`, input.Name, input.CurrentStock, input.Unit, input.LowStockThreshold,
		averageCost, input.PurchasePrice, input.PurchaseQuantity, purchaseUnit))
	if err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return ing, nil
}

// UpdateIngredient applies a partial update. A supplied purchase price
// triggers recomputation of average_cost; without one the stored cost is left
// untouched, never zeroed.
func (s *ingredientService) UpdateIngredient(ctx context.Context, id string, updates UpdateIngredientInput) (*Ingredient, error) {
	var computedCost *decimal.Decimal

	hasPrice := updates.PurchasePrice != nil && !updates.PurchasePrice.IsNegative()
	hasQuantity := updates.PurchaseQuantity != nil && updates.PurchaseQuantity.IsPositive()

	switch {
	case hasPrice && hasQuantity:
		baseUnit := ""
		if updates.Unit != nil {
			baseUnit = *updates.Unit
		} else {
			stored, err := s.GetIngredient(ctx, id)
			if err != nil {
				return nil, err
			}
			baseUnit = stored.Unit
		}

		purchaseUnit := baseUnit
		if updates.PurchaseUnit != nil {
			purchaseUnit = *updates.PurchaseUnit
		}
		s.warnOnCategoryMismatch(purchaseUnit, baseUnit)

		if normalized := NormalizePurchaseQuantity(updates.PurchaseQuantity, purchaseUnit, baseUnit); normalized != nil {
			cost := ComputeAverageCost(*updates.PurchasePrice, normalized)
			computedCost = &cost
		}
	case hasPrice:
		cost := ComputeAverageCost(*updates.PurchasePrice, nil)
		computedCost = &cost
	}

	set := []string{"updated_at = NOW()"}
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if updates.Name != nil {
		add("name", *updates.Name)
	}
	if updates.CurrentStock != nil {
		add("current_stock", *updates.CurrentStock)
	}
	if updates.Unit != nil {
		add("unit", *updates.Unit)
	}
	if updates.LowStockThreshold != nil {
		add("low_stock_threshold", *updates.LowStockThreshold)
	}
	if computedCost != nil {
		add("average_cost", *computedCost)
	}
	if updates.PurchasePrice != nil {
		add("last_purchase_price", *updates.PurchasePrice)
	}
	if updates.PurchaseQuantity != nil {
		add("last_purchase_quantity", *updates.PurchaseQuantity)
	}
	if updates.PurchaseUnit != nil {
		add("last_purchase_unit", *updates.PurchaseUnit)
	} else if updates.Unit != nil && updates.PurchaseQuantity != nil {
		add("last_purchase_unit", *updates.Unit)
	}

	query := "UPDATE ingredients SET " + strings.Join(set, ", ") + " WHERE id = $1 RETURNING " + ingredientColumns

	ing, err := scanIngredient(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update ingredient: %w", err)
	}
	return ing, nil
}

func (s *ingredientService) DeleteIngredient(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM ingredients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ingredient %s: %w", id, ErrNotFound)
	}
	return nil
}
