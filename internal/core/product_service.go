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

type CreateProductInput struct {
	Name              string
	Price             decimal.Decimal
	CurrentStock      decimal.Decimal
	LowStockThreshold decimal.Decimal
	ImageURL          *string
	Description       *string
}

type UpdateProductInput struct {
	Name              *string
	Price             *decimal.Decimal
	CurrentStock      *decimal.Decimal
	LowStockThreshold *decimal.Decimal
	ImageURL          *string
	Description       *string
}

// ProductService manages sellable products. Stock counters are mutated by the
// order and production services, not here.
type ProductService interface {
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, updates UpdateProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	pool     *pgxpool.Pool
	reporter *IssueReporter
}

func NewProductService(pool *pgxpool.Pool, reporter *IssueReporter) ProductService {
	return &productService{pool: pool, reporter: reporter}
}

const productColumns = `id, name, price, current_stock, low_stock_threshold,
	image_url, description, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.CurrentStock, &p.LowStockThreshold,
		&p.ImageURL, &p.Description, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *productService) GetProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY name ASC
	`)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "products:list")
			return []Product{}, nil
		}
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *productService) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return p, nil
}

func (s *productService) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("product price cannot be negative, got %s", input.Price)
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (name, price, current_stock, low_stock_threshold, image_url, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns+`
	`, input.Name, input.Price, input.CurrentStock, input.LowStockThreshold,
		input.ImageURL, input.Description))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, updates UpdateProductInput) (*Product, error) {
	if updates.Price != nil && updates.Price.IsNegative() {
		return nil, fmt.Errorf("product price cannot be negative, got %s", updates.Price)
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
	if updates.Price != nil {
		add("price", *updates.Price)
	}
	if updates.CurrentStock != nil {
		add("current_stock", *updates.CurrentStock)
	}
	if updates.LowStockThreshold != nil {
		add("low_stock_threshold", *updates.LowStockThreshold)
	}
	if updates.ImageURL != nil {
		add("image_url", *updates.ImageURL)
	}
	if updates.Description != nil {
		add("description", *updates.Description)
	}

	query := "UPDATE products SET " + strings.Join(set, ", ") + " WHERE id = $1 RETURNING " + productColumns

	p, err := scanProduct(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return nil
}
