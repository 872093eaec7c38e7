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

// RecipeCost is the cost of producing one unit of a recipe's product (its
// HPP): the sum over recipe items of quantity_needed × the ingredient's
// current average cost. The production service snapshots the same per-item
// formula multiplied by the produced quantity; the two must never diverge.
func RecipeCost(items []RecipeItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Ingredient == nil {
			continue
		}
		total = total.Add(item.QuantityNeeded.Mul(item.Ingredient.AverageCost))
	}
	return total
}

type CreateRecipeInput struct {
	ProductID       string
	Name            string
	Description     *string
	PreparationTime *int
}

type AddRecipeItemInput struct {
	RecipeID       string
	IngredientID   string
	QuantityNeeded decimal.Decimal
	Unit           string
}

// RecipeService manages recipes and their ingredient lines. A recipe with no
// items is allowed to exist (it simply costs zero) so items can be added
// incrementally after creation.
type RecipeService interface {
	GetRecipes(ctx context.Context) ([]Recipe, error)
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	CreateRecipe(ctx context.Context, input CreateRecipeInput) (*Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error

	GetRecipeItems(ctx context.Context, recipeID string) ([]RecipeItem, error)
	AddRecipeItem(ctx context.Context, input AddRecipeItemInput) (*RecipeItem, error)
	DeleteRecipeItem(ctx context.Context, itemID string) error

	// GetRecipeCost computes the recipe's current HPP from live average costs.
	GetRecipeCost(ctx context.Context, recipeID string) (decimal.Decimal, error)
}

type recipeService struct {
	pool     *pgxpool.Pool
	reporter *IssueReporter
}

func NewRecipeService(pool *pgxpool.Pool, reporter *IssueReporter) RecipeService {
	return &recipeService{pool: pool, reporter: reporter}
}

func scanRecipeWithProduct(row pgx.Row) (*Recipe, error) {
	var r Recipe
	var p Product
	err := row.Scan(
		&r.ID, &r.ProductID, &r.Name, &r.Description, &r.PreparationTime,
		&r.CreatedAt, &r.UpdatedAt,
		&p.ID, &p.Name, &p.Price, &p.CurrentStock, &p.LowStockThreshold,
		&p.ImageURL, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Product = &p
	return &r, nil
}

const recipeSelect = `
	SELECT r.id, r.product_id, r.name, r.description, r.preparation_time,
	       r.created_at, r.updated_at,
	       p.id, p.name, p.price, p.current_stock, p.low_stock_threshold,
	       p.image_url, p.description, p.created_at, p.updated_at
	FROM recipes r
	JOIN products p ON p.id = r.product_id`

func (s *recipeService) GetRecipes(ctx context.Context) ([]Recipe, error) {
	rows, err := s.pool.Query(ctx, recipeSelect+` ORDER BY r.name ASC`)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "recipes:list")
			return []Recipe{}, nil
		}
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		r, err := scanRecipeWithProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

func (s *recipeService) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	r, err := scanRecipeWithProduct(s.pool.QueryRow(ctx, recipeSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch recipe: %w", err)
	}
	return r, nil
}

func (s *recipeService) CreateRecipe(ctx context.Context, input CreateRecipeInput) (*Recipe, error) {
	if input.ProductID == "" {
		return nil, errors.New("recipe requires a product")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("recipe name is required")
	}

	var id string
	err := s.pool.QueryRow(ctx, `
		INSERT INTO recipes (product_id, name, description, preparation_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, input.ProductID, input.Name, input.Description, input.PreparationTime).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return s.GetRecipe(ctx, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM recipes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recipe %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetRecipeItems returns a recipe's lines oldest-first, each joined with its
// ingredient so callers can cost the recipe without further queries.
func (s *recipeService) GetRecipeItems(ctx context.Context, recipeID string) ([]RecipeItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ri.id, ri.recipe_id, ri.ingredient_id, ri.quantity_needed, ri.unit, ri.created_at,
		       i.id, i.name, i.current_stock, i.unit, i.low_stock_threshold, i.average_cost,
		       i.last_purchase_price, i.last_purchase_quantity, i.last_purchase_unit,
		       i.created_at, i.updated_at
		FROM recipe_items ri
		JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = $1
		ORDER BY ri.created_at ASC
	`, recipeID)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "recipe_items:list")
			return []RecipeItem{}, nil
		}
		return nil, fmt.Errorf("failed to query recipe items: %w", err)
	}
	defer rows.Close()

	var items []RecipeItem
	for rows.Next() {
		var item RecipeItem
		var ing Ingredient
		err := rows.Scan(
			&item.ID, &item.RecipeID, &item.IngredientID, &item.QuantityNeeded, &item.Unit, &item.CreatedAt,
			&ing.ID, &ing.Name, &ing.CurrentStock, &ing.Unit, &ing.LowStockThreshold, &ing.AverageCost,
			&ing.LastPurchasePrice, &ing.LastPurchaseQuantity, &ing.LastPurchaseUnit,
			&ing.CreatedAt, &ing.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe item: %w", err)
		}
		item.Ingredient = &ing
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *recipeService) AddRecipeItem(ctx context.Context, input AddRecipeItemInput) (*RecipeItem, error) {
	if !input.QuantityNeeded.IsPositive() {
		return nil, fmt.Errorf("recipe item quantity must be positive, got %s", input.QuantityNeeded)
	}

	var item RecipeItem
	err := s.pool.QueryRow(ctx, `
		INSERT INTO recipe_items (recipe_id, ingredient_id, quantity_needed, unit)
		VALUES ($1, $2, $3, $4)
		RETURNING id, recipe_id, ingredient_id, quantity_needed, unit, created_at
	`, input.RecipeID, input.IngredientID, input.QuantityNeeded, input.Unit).Scan(
		&item.ID, &item.RecipeID, &item.IngredientID, &item.QuantityNeeded, &item.Unit, &item.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add recipe item: %w", err)
	}
	return &item, nil
}

func (s *recipeService) DeleteRecipeItem(ctx context.Context, itemID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM recipe_items WHERE id = $1", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete recipe item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("recipe item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

func (s *recipeService) GetRecipeCost(ctx context.Context, recipeID string) (decimal.Decimal, error) {
	items, err := s.GetRecipeItems(ctx, recipeID)
	if err != nil {
		return decimal.Zero, err
	}
	return RecipeCost(items), nil
}
