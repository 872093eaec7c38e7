package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MonthWindow returns the half-open calendar-month window [first of month,
// first of next month) containing now, in now's location. An order at
// 23:59:59 on the last day of the month is inside the window; one at
// midnight of the next month is outside it.
func MonthWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 1, 0)
	return start, end
}

// DayWindow returns the half-open window [start of day, start of next day)
// containing now, in now's location.
func DayWindow(now time.Time) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 1)
	return start, end
}

// ReportRecipe is the slice of recipe data the aggregator needs: the recipe
// identity plus its product's name and price when a product is linked.
type ReportRecipe struct {
	ID           string
	Name         string
	ProductID    string // empty when the recipe has no linked product
	ProductName  string
	SellingPrice *decimal.Decimal
}

// ReportRecipeItem carries one recipe line's contribution to recipe cost.
type ReportRecipeItem struct {
	RecipeID       string
	QuantityNeeded decimal.Decimal
	AverageCost    decimal.Decimal
}

// ReportOrderItem is one sold line inside the report window.
type ReportOrderItem struct {
	ProductID string
	Quantity  int
}

// BuildFinancialReport assembles the monthly summary from pre-loaded rows.
// It is pure so the aggregation arithmetic is testable without a database.
//
// Per-product rows are keyed by product id, falling back to the recipe id
// for recipes without a linked product; order items whose product has no
// costing row are silently excluded from COGS. Currency figures are rounded
// to 2 decimals, the margin ratio to 4.
func BuildFinancialReport(
	periodStart, periodEnd time.Time,
	recipes []ReportRecipe,
	recipeItems []ReportRecipeItem,
	orderTotals []decimal.Decimal,
	orderItems []ReportOrderItem,
) *FinancialReportSummary {
	recipeCosts := make(map[string]decimal.Decimal, len(recipes))
	for _, item := range recipeItems {
		recipeCosts[item.RecipeID] = recipeCosts[item.RecipeID].
			Add(item.QuantityNeeded.Mul(item.AverageCost))
	}

	summaries := make([]*ProductCostSummary, 0, len(recipes))
	byProduct := make(map[string]*ProductCostSummary, len(recipes))

	for _, recipe := range recipes {
		hpp := recipeCosts[recipe.ID].Round(2)

		key := recipe.ProductID
		if key == "" {
			key = recipe.ID
		}
		name := recipe.ProductName
		if name == "" {
			name = recipe.Name
		}

		summary := &ProductCostSummary{
			ProductID:   key,
			ProductName: name,
			HPPPerUnit:  hpp,
			TotalCOGS:   decimal.Zero,
		}
		if recipe.SellingPrice != nil {
			price := recipe.SellingPrice.Round(2)
			profit := price.Sub(hpp)
			summary.SellingPrice = &price
			summary.GrossProfitPerUnit = &profit
			if price.IsPositive() {
				margin := profit.Div(price).Mul(decimal.NewFromInt(100)).Round(2)
				summary.GrossMarginPercentage = &margin
			}
		}

		summaries = append(summaries, summary)
		byProduct[key] = summary
	}

	totalRevenue := decimal.Zero
	for _, total := range orderTotals {
		totalRevenue = totalRevenue.Add(total)
	}

	totalCOGS := decimal.Zero
	for _, item := range orderItems {
		summary, ok := byProduct[item.ProductID]
		if !ok {
			// No costing data for this product; excluded from COGS.
			continue
		}
		itemCOGS := summary.HPPPerUnit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		totalCOGS = totalCOGS.Add(itemCOGS)
		summary.TotalQuantitySold += item.Quantity
		summary.TotalCOGS = summary.TotalCOGS.Add(itemCOGS)
	}

	grossProfit := totalRevenue.Sub(totalCOGS)
	grossMargin := decimal.Zero
	if totalRevenue.IsPositive() {
		grossMargin = grossProfit.Div(totalRevenue).Round(4)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ProductName < summaries[j].ProductName
	})

	rows := make([]ProductCostSummary, len(summaries))
	for i, s := range summaries {
		s.TotalCOGS = s.TotalCOGS.Round(2)
		rows[i] = *s
	}

	return &FinancialReportSummary{
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,
		TotalRevenue: totalRevenue.Round(2),
		TotalCOGS:    totalCOGS.Round(2),
		GrossProfit:  grossProfit.Round(2),
		GrossMargin:  grossMargin,
		ProductCosts: rows,
	}
}

// ReportingService computes the monthly financial summary and the dashboard
// snapshot on demand; nothing it produces is persisted.
type ReportingService interface {
	// GetFinancialReport aggregates the current calendar month.
	GetFinancialReport(ctx context.Context) (*FinancialReportSummary, error)
	// GetFinancialReportAt aggregates the calendar month containing now.
	GetFinancialReportAt(ctx context.Context, now time.Time) (*FinancialReportSummary, error)
	// GetDashboardStats summarizes stock levels and today's activity.
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type reportingService struct {
	pool     *pgxpool.Pool
	reporter *IssueReporter
}

func NewReportingService(pool *pgxpool.Pool, reporter *IssueReporter) ReportingService {
	return &reportingService{pool: pool, reporter: reporter}
}

func (s *reportingService) GetFinancialReport(ctx context.Context) (*FinancialReportSummary, error) {
	return s.GetFinancialReportAt(ctx, time.Now())
}

func (s *reportingService) GetFinancialReportAt(ctx context.Context, now time.Time) (*FinancialReportSummary, error) {
	periodStart, periodEnd := MonthWindow(now)

	recipes, err := s.loadReportRecipes(ctx)
	if err != nil {
		return nil, err
	}
	recipeItems, err := s.loadReportRecipeItems(ctx)
	if err != nil {
		return nil, err
	}
	orderTotals, err := s.loadOrderTotals(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	orderItems, err := s.loadReportOrderItems(ctx, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	return BuildFinancialReport(periodStart, periodEnd, recipes, recipeItems, orderTotals, orderItems), nil
}

// loadReportRecipes left-joins products so recipes without a product still
// produce a (price-less) report row keyed by the recipe id.
func (s *reportingService) loadReportRecipes(ctx context.Context) ([]ReportRecipe, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.name, COALESCE(r.product_id::text, ''),
		       COALESCE(p.name, ''), p.price
		FROM recipes r
		LEFT JOIN products p ON p.id = r.product_id
	`)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "recipes:financial-report")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query recipes for report: %w", err)
	}
	defer rows.Close()

	var recipes []ReportRecipe
	for rows.Next() {
		var r ReportRecipe
		if err := rows.Scan(&r.ID, &r.Name, &r.ProductID, &r.ProductName, &r.SellingPrice); err != nil {
			return nil, fmt.Errorf("failed to scan report recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

func (s *reportingService) loadReportRecipeItems(ctx context.Context) ([]ReportRecipeItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ri.recipe_id, ri.quantity_needed, COALESCE(i.average_cost, 0)
		FROM recipe_items ri
		LEFT JOIN ingredients i ON i.id = ri.ingredient_id
	`)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "recipe_items:financial-report")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query recipe items for report: %w", err)
	}
	defer rows.Close()

	var items []ReportRecipeItem
	for rows.Next() {
		var item ReportRecipeItem
		if err := rows.Scan(&item.RecipeID, &item.QuantityNeeded, &item.AverageCost); err != nil {
			return nil, fmt.Errorf("failed to scan report recipe item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *reportingService) loadOrderTotals(ctx context.Context, from, to time.Time) ([]decimal.Decimal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT total_amount
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, from, to)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "orders:financial-report")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query orders for report: %w", err)
	}
	defer rows.Close()

	var totals []decimal.Decimal
	for rows.Next() {
		var total decimal.Decimal
		if err := rows.Scan(&total); err != nil {
			return nil, fmt.Errorf("failed to scan order total: %w", err)
		}
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

func (s *reportingService) loadReportOrderItems(ctx context.Context, from, to time.Time) ([]ReportOrderItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id, quantity
		FROM order_items
		WHERE created_at >= $1 AND created_at < $2
	`, from, to)
	if err != nil {
		if IsMissingTable(err) {
			s.reporter.Report(err, "order_items:financial-report")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query order items for report: %w", err)
	}
	defer rows.Close()

	var items []ReportOrderItem
	for rows.Next() {
		var item ReportOrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan report order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *reportingService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	dayStart, dayEnd := DayWindow(time.Now())
	stats := &DashboardStats{TodayRevenue: decimal.Zero}

	// Stock counters: threshold 0 means "unset" and never counts as low.
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE low_stock_threshold > 0 AND current_stock <= low_stock_threshold)
		FROM products
	`).Scan(&stats.TotalProducts, &stats.LowStockProducts)
	if err != nil {
		if !IsMissingTable(err) {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}
		s.reporter.Report(err, "products:dashboard")
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE low_stock_threshold > 0 AND current_stock <= low_stock_threshold)
		FROM ingredients
	`).Scan(&stats.TotalIngredients, &stats.LowStockIngredients)
	if err != nil {
		if !IsMissingTable(err) {
			return nil, fmt.Errorf("failed to count ingredients: %w", err)
		}
		s.reporter.Report(err, "ingredients:dashboard")
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, dayStart, dayEnd).Scan(&stats.TodayOrders, &stats.TodayRevenue)
	if err != nil {
		if !IsMissingTable(err) {
			return nil, fmt.Errorf("failed to aggregate today's orders: %w", err)
		}
		s.reporter.Report(err, "orders:dashboard")
	}

	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity_produced), 0)
		FROM production_logs
		WHERE created_at >= $1 AND created_at < $2
	`, dayStart, dayEnd).Scan(&stats.TodayProduction)
	if err != nil {
		if !IsMissingTable(err) {
			return nil, fmt.Errorf("failed to aggregate today's production: %w", err)
		}
		s.reporter.Report(err, "production_logs:dashboard")
	}

	return stats, nil
}
