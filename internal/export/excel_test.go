package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"cakeflow-backend/internal/core"
)

func TestWriteFinancialReportXLSX(t *testing.T) {
	price := decimal.NewFromInt(20000)
	profit := decimal.NewFromInt(12500)
	margin := decimal.RequireFromString("62.5")

	report := &core.FinancialReportSummary{
		PeriodStart:  time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:    time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
		TotalRevenue: decimal.NewFromInt(40000),
		TotalCOGS:    decimal.NewFromInt(15000),
		GrossProfit:  decimal.NewFromInt(25000),
		GrossMargin:  decimal.RequireFromString("0.625"),
		ProductCosts: []core.ProductCostSummary{
			{
				ProductID:             "p1",
				ProductName:           "Brownies",
				HPPPerUnit:            decimal.NewFromInt(7500),
				SellingPrice:          &price,
				GrossProfitPerUnit:    &profit,
				GrossMarginPercentage: &margin,
				TotalQuantitySold:     2,
				TotalCOGS:             decimal.NewFromInt(15000),
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteFinancialReportXLSX(&buf, report); err != nil {
		t.Fatalf("WriteFinancialReportXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(reportSheet)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}

	var productRow []string
	for _, row := range rows {
		if len(row) > 0 && row[0] == "Brownies" {
			productRow = row
		}
	}
	if productRow == nil {
		t.Fatalf("product row not found in sheet: %v", rows)
	}
	if productRow[1] != "7500" {
		t.Errorf("HPP cell = %q, want 7500", productRow[1])
	}
	if productRow[5] != "2" {
		t.Errorf("quantity cell = %q, want 2", productRow[5])
	}
}
