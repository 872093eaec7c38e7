package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is wrapped by every service when a requested row does not
// exist; callers branch on it with errors.Is.
var ErrNotFound = errors.New("not found")

// ── Inventory & production ────────────────────────────────────────────────────

// Ingredient is a raw material tracked in its own free-text unit.
// AverageCost is derived from the most recent purchase and is never edited
// directly; see IngredientService.
type Ingredient struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	CurrentStock         decimal.Decimal  `json:"current_stock"`
	Unit                 string           `json:"unit"`
	LowStockThreshold    decimal.Decimal  `json:"low_stock_threshold"` // 0 means unset
	AverageCost          decimal.Decimal  `json:"average_cost"`        // currency per Unit, 4 dp
	LastPurchasePrice    *decimal.Decimal `json:"last_purchase_price,omitempty"`
	LastPurchaseQuantity *decimal.Decimal `json:"last_purchase_quantity,omitempty"`
	LastPurchaseUnit     *string          `json:"last_purchase_unit,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// Product is a sellable item. Stock increases via production logging and
// decreases via order fulfillment.
type Product struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	ImageURL          *string         `json:"image_url,omitempty"`
	Description       *string         `json:"description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Recipe describes how a single unit of its product is made. The model does
// not enforce one recipe per product; the report keys rows by product where
// available, falling back to the recipe id.
type Recipe struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	PreparationTime *int      `json:"preparation_time,omitempty"` // minutes
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Product         *Product  `json:"product,omitempty"`
}

// RecipeItem is one ingredient line of a recipe: the quantity of Unit needed
// per single unit of product output.
type RecipeItem struct {
	ID             string          `json:"id"`
	RecipeID       string          `json:"recipe_id"`
	IngredientID   string          `json:"ingredient_id"`
	QuantityNeeded decimal.Decimal `json:"quantity_needed"`
	Unit           string          `json:"unit"`
	CreatedAt      time.Time       `json:"created_at"`
	Ingredient     *Ingredient     `json:"ingredient,omitempty"`
}

// ProductionLog records one production run. ProductionCost is a snapshot of
// Σ quantity_needed × quantity_produced × average_cost at logging time.
type ProductionLog struct {
	ID               int             `json:"id"`
	RecipeID         string          `json:"recipe_id"`
	ProductID        string          `json:"product_id"`
	QuantityProduced int             `json:"quantity_produced"`
	UserID           *string         `json:"user_id,omitempty"`
	BatchNumber      *string         `json:"batch_number,omitempty"`
	ProductionCost   decimal.Decimal `json:"production_cost"`
	Notes            *string         `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	RecipeName       string          `json:"recipe_name,omitempty"`
	ProductName      string          `json:"product_name,omitempty"`
}

// ── Orders (POS) ──────────────────────────────────────────────────────────────

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentQRIS     PaymentMethod = "qris"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentDebit    PaymentMethod = "debit"
	PaymentCredit   PaymentMethod = "credit"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is the primary POS record. TotalAmount is the sum of its line totals.
type Order struct {
	ID            int             `json:"id"`
	UserID        *string         `json:"user_id,omitempty"`
	CustomerName  *string         `json:"customer_name,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Status        OrderStatus     `json:"status"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []OrderItem     `json:"items,omitempty"`
}

// OrderItem is one order line. TotalPrice = PricePerItem × Quantity exactly,
// at the stored numeric precision.
type OrderItem struct {
	ID           int             `json:"id"`
	OrderID      int             `json:"order_id"`
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	CreatedAt    time.Time       `json:"created_at"`
	ProductName  string          `json:"product_name,omitempty"`
}

// OrderLineInput is the caller-supplied shape of one order line.
type OrderLineInput struct {
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
}

// ── Stock adjustment outcomes ─────────────────────────────────────────────────

// StockAdjustment is the result of one best-effort stock counter mutation
// issued after a primary record was persisted. A failed adjustment never
// rolls back or blocks the primary record; callers may inspect the outcomes
// but are not required to.
type StockAdjustment struct {
	Operation string `json:"operation"` // e.g. "decrement_product_stock"
	TargetID  string `json:"target_id"`
	Quantity  string `json:"quantity"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// ── Reporting ─────────────────────────────────────────────────────────────────

// ProductCostSummary is one per-product row of the financial report.
// Pointer fields are nil when the product's selling price is unknown.
type ProductCostSummary struct {
	ProductID             string           `json:"product_id"`
	ProductName           string           `json:"product_name"`
	HPPPerUnit            decimal.Decimal  `json:"hpp_per_unit"`
	SellingPrice          *decimal.Decimal `json:"selling_price,omitempty"`
	GrossProfitPerUnit    *decimal.Decimal `json:"gross_profit_per_unit,omitempty"`
	GrossMarginPercentage *decimal.Decimal `json:"gross_margin_percentage,omitempty"`
	TotalQuantitySold     int              `json:"total_quantity_sold"`
	TotalCOGS             decimal.Decimal  `json:"total_cogs"`
}

// FinancialReportSummary is computed on demand for one calendar month,
// never persisted.
type FinancialReportSummary struct {
	PeriodStart  time.Time            `json:"period_start"`
	PeriodEnd    time.Time            `json:"period_end"`
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
	TotalCOGS    decimal.Decimal      `json:"total_cogs"`
	GrossProfit  decimal.Decimal      `json:"gross_profit"`
	GrossMargin  decimal.Decimal      `json:"gross_margin"` // ratio, 4 dp; 0 when revenue is 0
	ProductCosts []ProductCostSummary `json:"product_costs"`
}

// DashboardStats is the at-a-glance summary for today.
type DashboardStats struct {
	TotalProducts       int             `json:"total_products"`
	TotalIngredients    int             `json:"total_ingredients"`
	LowStockProducts    int             `json:"low_stock_products"`
	LowStockIngredients int             `json:"low_stock_ingredients"`
	TodayOrders         int             `json:"today_orders"`
	TodayRevenue        decimal.Decimal `json:"today_revenue"`
	TodayProduction     int             `json:"today_production"`
}

// ── Identity, profiles, tasks ─────────────────────────────────────────────────

type ProfileRole string

const (
	RoleAdmin      ProfileRole = "admin"
	RoleKasir      ProfileRole = "kasir"      // cashier
	RoleStafDapur  ProfileRole = "staf_dapur" // kitchen staff
	defaultRole                = RoleKasir
)

// Identity is the caller identity delivered by the external identity provider.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Profile mirrors the identity into the application's own store.
type Profile struct {
	ID        string      `json:"id"`
	Email     *string     `json:"email,omitempty"`
	FullName  string      `json:"full_name"`
	Role      ProfileRole `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Category groups tasks; Color is a hex string used by the frontend.
type Category struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	CategoryID  *string      `json:"category_id,omitempty"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Category    *Category    `json:"category,omitempty"`
}

// TaskStats summarizes the task board for the generic dashboard.
type TaskStats struct {
	TotalTasks        int `json:"total_tasks"`
	CompletedTasks    int `json:"completed_tasks"`
	PendingTasks      int `json:"pending_tasks"`
	InProgressTasks   int `json:"in_progress_tasks"`
	HighPriorityTasks int `json:"high_priority_tasks"`
	TotalCategories   int `json:"total_categories"`
}

// ── AI restock proposal ───────────────────────────────────────────────────────

// RestockLine is a single suggested purchase in a restock proposal.
type RestockLine struct {
	IngredientName string `json:"ingredient_name" jsonschema_description:"Exact ingredient name from the provided stock list"`
	Quantity       string `json:"quantity" jsonschema_description:"Suggested purchase quantity as a decimal string, in the ingredient's own unit"`
	Unit           string `json:"unit" jsonschema_description:"The ingredient's stock-tracking unit, copied from the stock list"`
	Reasoning      string `json:"reasoning" jsonschema_description:"One sentence explaining why this quantity was chosen"`
}

// RestockProposal is the AI-generated purchase suggestion for low-stock
// ingredients. It is advisory only; nothing is written to the store.
type RestockProposal struct {
	Summary    string        `json:"summary" jsonschema_description:"A brief summary of the overall restock recommendation"`
	Confidence float64       `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Lines      []RestockLine `json:"lines" jsonschema_description:"One suggested purchase per ingredient that needs restocking"`
}
