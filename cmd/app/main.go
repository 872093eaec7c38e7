package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"cakeflow-backend/internal/ai"
	"cakeflow-backend/internal/core"
	"cakeflow-backend/internal/db"
	"cakeflow-backend/internal/export"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	reporter := core.NewIssueReporter()
	ingredients := core.NewIngredientService(pool, reporter)
	reporting := core.NewReportingService(pool, reporter)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "report":
			report, err := reporting.GetFinancialReportAt(ctx, time.Now())
			if err != nil {
				log.Fatalf("Report failed: %v", err)
			}
			printJSON(report)

		case "export":
			report, err := reporting.GetFinancialReportAt(ctx, time.Now())
			if err != nil {
				log.Fatalf("Report failed: %v", err)
			}
			path := fmt.Sprintf("laporan-keuangan-%s.xlsx", report.PeriodStart.Format("2006-01"))
			if len(os.Args) > 2 {
				path = os.Args[2]
			}
			f, err := os.Create(path)
			if err != nil {
				log.Fatalf("Create failed: %v", err)
			}
			defer f.Close()
			if err := export.WriteFinancialReportXLSX(f, report); err != nil {
				log.Fatalf("Export failed: %v", err)
			}
			fmt.Println("wrote", path)

		case "dashboard":
			stats, err := reporting.GetDashboardStats(ctx)
			if err != nil {
				log.Fatalf("Dashboard failed: %v", err)
			}
			printJSON(stats)

		case "stock":
			list, err := ingredients.GetIngredients(ctx)
			if err != nil {
				log.Fatalf("Stock listing failed: %v", err)
			}
			for _, ing := range list {
				marker := " "
				if ing.LowStockThreshold.IsPositive() && ing.CurrentStock.LessThanOrEqual(ing.LowStockThreshold) {
					marker = "!"
				}
				fmt.Printf("%s %-30s %10s %s\n", marker, ing.Name, ing.CurrentStock, ing.Unit)
			}

		case "restock":
			apiKey := os.Getenv("OPENAI_API_KEY")
			if apiKey == "" {
				log.Fatal("OPENAI_API_KEY is not set")
			}
			list, err := ingredients.GetIngredients(ctx)
			if err != nil {
				log.Fatalf("Stock listing failed: %v", err)
			}
			proposal, err := ai.NewAgent(apiKey).ProposeRestock(ctx, list)
			if err != nil {
				log.Fatalf("Agent error: %v", err)
			}
			printJSON(proposal)

		default:
			usage()
		}
		return
	}

	usage()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Println(`Usage: app <command>

Commands:
  report            print this month's financial report as JSON
  export [path]     write this month's financial report as an XLSX file
  dashboard         print today's dashboard stats as JSON
  stock             list ingredients; low-stock lines are marked with !
  restock           ask the AI assistant for restock suggestions`)
}
