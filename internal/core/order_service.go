package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CreateOrderInput is the caller-supplied shape of a new POS order.
type CreateOrderInput struct {
	CustomerName  *string
	PaymentMethod PaymentMethod
	Notes         *string
	Items         []OrderLineInput
}

// OrderResult pairs the persisted order with the outcomes of its best-effort
// stock decrements. The order's success is independent of the side effects:
// a failed decrement is reported and recorded here, never propagated.
type OrderResult struct {
	Order            *Order            `json:"order"`
	StockAdjustments []StockAdjustment `json:"stock_adjustments"`
}

// OrderService creates and reads POS orders. Creating an order persists the
// order and its items, then decrements each product's stock counter. The
// decrements are deliberately not part of one transaction with the inserts:
// a sale is never blocked by a bookkeeping failure, so stock counters can
// drift (and go negative) when a decrement fails or oversells.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput, userID *string) (*OrderResult, error)
	GetOrders(ctx context.Context, limit int) ([]Order, error)
	GetOrder(ctx context.Context, orderID int) (*Order, error)
	GetOrderItems(ctx context.Context, orderID int) ([]OrderItem, error)
}

type orderService struct {
	pool     *pgxpool.Pool
	reporter *IssueReporter
}

func NewOrderService(pool *pgxpool.Pool, reporter *IssueReporter) OrderService {
	return &orderService{pool: pool, reporter: reporter}
}

func validPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentQRIS, PaymentTransfer, PaymentDebit, PaymentCredit:
		return true
	}
	return false
}

func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput, userID *string) (*OrderResult, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	if !validPaymentMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("unknown payment method %q", input.PaymentMethod)
	}
	for _, item := range input.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("order item quantity must be at least 1, got %d", item.Quantity)
		}
		if item.PricePerItem.IsNegative() {
			return nil, fmt.Errorf("order item price cannot be negative, got %s", item.PricePerItem)
		}
	}

	totalAmount := decimal.Zero
	for _, item := range input.Items {
		totalAmount = totalAmount.Add(item.PricePerItem.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	var order Order
	err := s.pool.QueryRow(ctx, `
		INSERT INTO orders (user_id, customer_name, total_amount, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, customer_name, total_amount, payment_method, status, notes, created_at, updated_at
	`, userID, input.CustomerName, totalAmount, input.PaymentMethod, input.Notes).Scan(
		&order.ID, &order.UserID, &order.CustomerName, &order.TotalAmount,
		&order.PaymentMethod, &order.Status, &order.Notes, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	var adjustments []StockAdjustment
	for _, item := range input.Items {
		totalPrice := item.PricePerItem.Mul(decimal.NewFromInt(int64(item.Quantity)))

		_, err := s.pool.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_per_item, total_price)
			VALUES ($1, $2, $3, $4, $5)
		`, order.ID, item.ProductID, item.Quantity, item.PricePerItem, totalPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item for product %s: %w", item.ProductID, err)
		}

		// Best-effort: the sale stands even when the counter update fails.
		adjustment := StockAdjustment{
			Operation: "decrement_product_stock",
			TargetID:  item.ProductID,
			Quantity:  fmt.Sprintf("%d", item.Quantity),
			OK:        true,
		}
		if _, err := s.pool.Exec(ctx,
			"SELECT decrement_product_stock($1, $2)", item.ProductID, item.Quantity,
		); err != nil {
			adjustment.OK = false
			adjustment.Error = err.Error()
			s.reporter.Report(err, "orders:decrement-product-stock")
		}
		adjustments = append(adjustments, adjustment)
	}

	items, err := s.GetOrderItems(ctx, order.ID)
	if err != nil {
		s.reporter.Report(err, "order_items:after-create")
	} else {
		order.Items = items
	}

	return &OrderResult{Order: &order, StockAdjustments: adjustments}, nil
}

// GetOrders returns orders newest-first. limit <= 0 means no limit.
func (s *orderService) GetOrders(ctx context.Context, limit int) ([]Order, error) {
	q := `
		SELECT id, user_id, customer_name, total_amount, payment_method, status, notes, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "orders:list")
			return []Order{}, nil
		}
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CustomerName, &o.TotalAmount,
			&o.PaymentMethod, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *orderService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	var o Order
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, customer_name, total_amount, payment_method, status, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(
		&o.ID, &o.UserID, &o.CustomerName, &o.TotalAmount,
		&o.PaymentMethod, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}

	items, err := s.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *orderService) GetOrderItems(ctx context.Context, orderID int) ([]OrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_per_item, oi.total_price,
		       oi.created_at, COALESCE(p.name, '')
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at ASC
	`, orderID)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "order_items:list")
			return []OrderItem{}, nil
		}
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.PricePerItem, &item.TotalPrice, &item.CreatedAt, &item.ProductName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
