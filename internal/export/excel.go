package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"cakeflow-backend/internal/core"
)

const reportSheet = "Sheet1"

// WriteFinancialReportXLSX renders the monthly report as a spreadsheet: a
// summary block on top, then one row per product cost summary.
func WriteFinancialReportXLSX(w io.Writer, report *core.FinancialReportSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := [][]interface{}{
		{"Laporan Keuangan", ""},
		{"Periode", fmt.Sprintf("%s – %s",
			report.PeriodStart.Format("2 Jan 2006"),
			report.PeriodEnd.AddDate(0, 0, -1).Format("2 Jan 2006"))},
		{"Total Pendapatan", report.TotalRevenue.InexactFloat64()},
		{"Total HPP", report.TotalCOGS.InexactFloat64()},
		{"Laba Kotor", report.GrossProfit.InexactFloat64()},
		{"Margin Kotor", report.GrossMargin.Mul(decimal.NewFromInt(100)).InexactFloat64()},
	}
	for rowIdx, row := range summary {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			f.SetCellValue(reportSheet, cell, value)
		}
	}

	headerRow := len(summary) + 2
	headers := []string{"Produk", "HPP per Unit", "Harga Jual", "Laba per Unit", "Margin (%)", "Terjual", "Total HPP"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(reportSheet, cell, header)
	}

	for rowIdx, row := range report.ProductCosts {
		values := []interface{}{
			row.ProductName,
			row.HPPPerUnit.InexactFloat64(),
			floatOrBlank(row.SellingPrice),
			floatOrBlank(row.GrossProfitPerUnit),
			floatOrBlank(row.GrossMarginPercentage),
			row.TotalQuantitySold,
			row.TotalCOGS.InexactFloat64(),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, headerRow+1+rowIdx)
			f.SetCellValue(reportSheet, cell, value)
		}
	}

	f.SetColWidth(reportSheet, "A", "A", 24)
	f.SetColWidth(reportSheet, "B", "G", 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

func floatOrBlank(d *decimal.Decimal) interface{} {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}
