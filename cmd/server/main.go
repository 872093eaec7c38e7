package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "cakeflow-backend/internal/adapters/web"
	"cakeflow-backend/internal/ai"
	"cakeflow-backend/internal/core"
	"cakeflow-backend/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	reporter := core.NewIssueReporter()
	recipeService := core.NewRecipeService(pool, reporter)

	svc := webAdapter.Services{
		Ingredients: core.NewIngredientService(pool, reporter),
		Products:    core.NewProductService(pool, reporter),
		Recipes:     recipeService,
		Orders:      core.NewOrderService(pool, reporter),
		Production:  core.NewProductionService(pool, recipeService, reporter),
		Reporting:   core.NewReportingService(pool, reporter),
		Profiles:    core.NewProfileService(pool, reporter),
		Tasks:       core.NewTaskService(pool, reporter),
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		svc.Agent = ai.NewAgent(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set; restock assistant disabled")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
