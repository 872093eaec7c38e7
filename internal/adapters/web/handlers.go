package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cakeflow-backend/internal/ai"
	"cakeflow-backend/internal/core"
)

// Services bundles everything the HTTP layer depends on. Agent may be nil
// when no API key is configured; the restock endpoint then returns 503.
type Services struct {
	Ingredients core.IngredientService
	Products    core.ProductService
	Recipes     core.RecipeService
	Orders      core.OrderService
	Production  core.ProductionService
	Reporting   core.ReportingService
	Profiles    core.ProfileService
	Tasks       core.TaskService
	Agent       ai.AgentService
}

// Handler holds the services and the chi router.
type Handler struct {
	svc       Services
	profiles  core.ProfileService
	router    chi.Router
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc Services, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		profiles:  svc.Profiles,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/api/auth/me", h.me)

		// ── Inventory ─────────────────────────────────────────────────────────
		r.Get("/api/ingredients", h.listIngredients)
		r.Post("/api/ingredients", h.createIngredient)
		r.Get("/api/ingredients/{id}", h.getIngredient)
		r.Patch("/api/ingredients/{id}", h.updateIngredient)
		r.Delete("/api/ingredients/{id}", h.deleteIngredient)

		r.Get("/api/products", h.listProducts)
		r.Post("/api/products", h.createProduct)
		r.Get("/api/products/{id}", h.getProduct)
		r.Patch("/api/products/{id}", h.updateProduct)
		r.Delete("/api/products/{id}", h.deleteProduct)

		// ── Recipes ───────────────────────────────────────────────────────────
		r.Get("/api/recipes", h.listRecipes)
		r.Post("/api/recipes", h.createRecipe)
		r.Get("/api/recipes/{id}", h.getRecipe)
		r.Delete("/api/recipes/{id}", h.deleteRecipe)
		r.Get("/api/recipes/{id}/items", h.listRecipeItems)
		r.Post("/api/recipes/{id}/items", h.addRecipeItem)
		r.Delete("/api/recipes/{id}/items/{itemID}", h.deleteRecipeItem)
		r.Get("/api/recipes/{id}/cost", h.recipeCost)

		// ── Orders and production ─────────────────────────────────────────────
		r.Get("/api/orders", h.listOrders)
		r.Post("/api/orders", h.createOrder)
		r.Get("/api/orders/{id}", h.getOrder)
		r.Get("/api/production-logs", h.listProductionLogs)
		r.Post("/api/production-logs", h.logProduction)

		// ── Reports ───────────────────────────────────────────────────────────
		r.Get("/api/reports/financial", h.financialReport)
		r.Get("/api/reports/financial/export", h.exportFinancialReport)
		r.Get("/api/reports/dashboard", h.dashboardStats)

		// ── AI restock assistant ──────────────────────────────────────────────
		r.Post("/api/ai/restock", h.proposeRestock)

		// ── Tasks ─────────────────────────────────────────────────────────────
		r.Get("/api/categories", h.listCategories)
		r.Post("/api/categories", h.createCategory)
		r.Delete("/api/categories/{id}", h.deleteCategory)
		r.Get("/api/tasks", h.listTasks)
		r.Post("/api/tasks", h.createTask)
		r.Get("/api/tasks/{id}", h.getTask)
		r.Patch("/api/tasks/{id}", h.updateTask)
		r.Delete("/api/tasks/{id}", h.deleteTask)
		r.Get("/api/tasks/stats", h.taskStats)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlParam extracts a URL parameter by name.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
