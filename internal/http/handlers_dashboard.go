package http

import (
	"net/http"
	"strconv"

	"outlay/internal/core"
	"outlay/internal/services"
)

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f services.DashboardFilter
	if v := q.Get("category_id"); v != "" {
		f.CategoryID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("status"); v != "" {
		f.Status = core.Status(v)
	}
	t, err := s.dashboard.Totals(r.Context(), parsePeriod(r), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total": t.Total.String(),
		"count": t.Count,
	})
}

type breakdownRowJSON struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        string  `json:"total"`
	Count        int     `json:"count"`
	Percent      float64 `json:"percent"`
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	rows, err := s.dashboard.CategoryBreakdown(r.Context(), parsePeriod(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]breakdownRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, breakdownRowJSON{
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Total:        row.Total.String(),
			Count:        row.Count,
			Percent:      row.Percent,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	months := 6
	if v := r.URL.Query().Get("months"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			months = n
		}
	}
	points, err := s.dashboard.MonthlyTrend(r.Context(), months)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type trendPointJSON struct {
		Year  int    `json:"year"`
		Month int    `json:"month"`
		Total string `json:"total"`
		Count int    `json:"count"`
	}
	out := make([]trendPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointJSON{
			Year:  p.Year,
			Month: p.Month,
			Total: p.Total.String(),
			Count: p.Count,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRevenueComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.dashboard.RevenueComparison(r.Context(), parsePeriod(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"expenses_total": cmp.Expenses.Total.String(),
		"expenses_count": cmp.Expenses.Count,
		"revenue":        cmp.Revenue.String(),
		"net":            cmp.Net.String(),
	})
}
