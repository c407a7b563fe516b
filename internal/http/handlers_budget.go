package http

import (
	"net/http"
	"time"

	"outlay/internal/core"
)

type categoryRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Type          string `json:"category_type"`
	Color         string `json:"color"`
	DefaultBudget string `json:"default_budget"`
}

func (req categoryRequest) toCategory() (core.Category, error) {
	c := core.Category{
		Name:        req.Name,
		Description: req.Description,
		Type:        core.CategoryType(req.Type),
		Color:       req.Color,
		IsActive:    true,
	}
	if req.DefaultBudget != "" {
		m, err := core.ParseNonNegativeAmount(req.DefaultBudget)
		if err != nil {
			return core.Category{}, err
		}
		c.DefaultBudget = m
	}
	return c, nil
}

type categoryJSON struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Type          string    `json:"category_type"`
	Color         string    `json:"color,omitempty"`
	DefaultBudget string    `json:"default_budget"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:            c.ID,
		Name:          c.Name,
		Description:   c.Description,
		Type:          string(c.Type),
		Color:         c.Color,
		DefaultBudget: c.DefaultBudget.String(),
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := req.toCategory()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := s.categories.Create(r.Context(), a, c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryJSON(created))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	cats, err := s.categories.List(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := req.toCategory()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	c.ID = id
	if err := s.categories.Update(r.Context(), a, c); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := s.categories.Delete(r.Context(), a, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeactivateCategory(w http.ResponseWriter, r *http.Request) {
	s.setCategoryActive(w, r, false)
}

func (s *Server) handleActivateCategory(w http.ResponseWriter, r *http.Request) {
	s.setCategoryActive(w, r, true)
}

func (s *Server) setCategoryActive(w http.ResponseWriter, r *http.Request, active bool) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if active {
		err = s.categories.Activate(r.Context(), a, id)
	} else {
		err = s.categories.Deactivate(r.Context(), a, id)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type budgetRequest struct {
	CategoryID int64  `json:"category_id"`
	Month      string `json:"month"` // YYYY-MM
	Planned    string `json:"planned_amount"`
}

type budgetJSON struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Month      string    `json:"month"`
	Planned    string    `json:"planned_amount"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:         b.ID,
		CategoryID: b.CategoryID,
		Month:      b.Month.Format("2006-01"),
		Planned:    b.Planned.String(),
		CreatedBy:  b.CreatedBy,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

type utilizationJSON struct {
	Planned   string  `json:"planned"`
	Actual    string  `json:"actual"`
	Remaining string  `json:"remaining"`
	Percent   float64 `json:"percent"`
	Health    string  `json:"health"`
}

func toUtilizationJSON(u core.Utilization) utilizationJSON {
	return utilizationJSON{
		Planned:   u.Planned.String(),
		Actual:    u.Actual.String(),
		Remaining: u.Remaining.String(),
		Percent:   u.Percent,
		Health:    string(u.Health),
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	month, err := time.Parse("2006-01", req.Month)
	if err != nil {
		writeServiceError(w, core.ErrInvalidDate)
		return
	}
	planned, err := core.ParseAmount(req.Planned)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	b, err := s.budgets.Create(r.Context(), a, req.CategoryID, month, planned)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetJSON(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	var req struct {
		Planned string `json:"planned_amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	planned, err := core.ParseAmount(req.Planned)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := s.budgets.UpdatePlanned(r.Context(), a, id, planned); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	force := r.URL.Query().Get("force") == "true"
	if err := s.budgets.Delete(r.Context(), a, id, force); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetUtilization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid budget id")
		return
	}
	u, err := s.budgets.Utilization(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUtilizationJSON(u))
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}
	rows, err := s.budgets.CategorySummary(r.Context(), month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]summaryRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, summaryRowJSON{
			Category:    toCategoryJSON(row.Category),
			BudgetID:    row.BudgetID,
			FromDefault: row.FromDefault,
			Utilization: toUtilizationJSON(row.Utilization),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type summaryRowJSON struct {
	Category    categoryJSON    `json:"category"`
	BudgetID    int64           `json:"budget_id,omitempty"`
	FromDefault bool            `json:"from_default"`
	Utilization utilizationJSON `json:"utilization"`
}
