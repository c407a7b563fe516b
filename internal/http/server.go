// Package http is the JSON transport over the services. It parses requests,
// maps errors to status codes and nothing else; every decision belongs to
// the services underneath.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"outlay/internal/services"
)

type Server struct {
	ledger     *services.LedgerService
	categories *services.CategoryService
	budgets    *services.BudgetService
	deductions *services.DeductionService
	dashboard  *services.DashboardService
}

func NewServer(addr string,
	ledger *services.LedgerService,
	categories *services.CategoryService,
	budgets *services.BudgetService,
	deductions *services.DeductionService,
	dashboard *services.DashboardService,
) *http.Server {
	s := &Server{
		ledger:     ledger,
		categories: categories,
		budgets:    budgets,
		deductions: deductions,
		dashboard:  dashboard,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("PUT /expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("POST /expenses/{id}/approve", s.handleApproveExpense)
	mux.HandleFunc("POST /expenses/{id}/reject", s.handleRejectExpense)
	mux.HandleFunc("POST /expenses/{id}/pay", s.handleMarkPaid)
	mux.HandleFunc("POST /expenses/{id}/cancel", s.handleCancelExpense)

	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("PUT /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /categories/{id}", s.handleDeleteCategory)
	mux.HandleFunc("POST /categories/{id}/deactivate", s.handleDeactivateCategory)
	mux.HandleFunc("POST /categories/{id}/activate", s.handleActivateCategory)

	mux.HandleFunc("POST /budgets", s.handleCreateBudget)
	mux.HandleFunc("PUT /budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /budgets/{id}", s.handleDeleteBudget)
	mux.HandleFunc("GET /budgets/{id}/utilization", s.handleBudgetUtilization)
	mux.HandleFunc("GET /budgets/summary", s.handleCategorySummary)

	mux.HandleFunc("POST /deduction-rules", s.handleCreateRule)
	mux.HandleFunc("GET /deduction-rules", s.handleListRules)
	mux.HandleFunc("PUT /deduction-rules/{id}", s.handleUpdateRule)
	mux.HandleFunc("DELETE /deduction-rules/{id}", s.handleDeleteRule)
	mux.HandleFunc("POST /deductions/calculate", s.handleCalculate)

	mux.HandleFunc("GET /dashboard/totals", s.handleTotals)
	mux.HandleFunc("GET /dashboard/breakdown", s.handleBreakdown)
	mux.HandleFunc("GET /dashboard/trend", s.handleTrend)
	mux.HandleFunc("GET /dashboard/revenue", s.handleRevenueComparison)

	return &http.Server{
		Addr:           addr,
		Handler:        logRequests(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.InfoContext(r.Context(), "Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
