package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"cakeflow-backend/internal/export"
)

func (h *Handler) financialReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Reporting.GetFinancialReport(r.Context())
	if err != nil {
		writeError(w, r, "failed to build financial report", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) exportFinancialReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Reporting.GetFinancialReport(r.Context())
	if err != nil {
		writeError(w, r, "failed to build financial report", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("laporan-keuangan-%s.xlsx", report.PeriodStart.Format("2006-01"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)

	if err := export.WriteFinancialReportXLSX(w, report); err != nil {
		log.Printf("xlsx export: %v", err)
	}
}

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Reporting.GetDashboardStats(r.Context())
	if err != nil {
		writeError(w, r, "failed to build dashboard stats", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

func (h *Handler) proposeRestock(w http.ResponseWriter, r *http.Request) {
	if h.svc.Agent == nil {
		writeError(w, r, "restock assistant is not configured", "UNAVAILABLE", http.StatusServiceUnavailable)
		return
	}

	ingredients, err := h.svc.Ingredients.GetIngredients(r.Context())
	if err != nil {
		writeError(w, r, "failed to list ingredients", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	proposal, err := h.svc.Agent.ProposeRestock(ctx, ingredients)
	if err != nil {
		writeError(w, r, "restock assistant failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, proposal)
}
