package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"outlay/internal/core"
)

type ruleRequest struct {
	Type               string `json:"deduction_type"`
	Percentage         string `json:"percentage"`
	Description        string `json:"description"`
	DestinationAccount string `json:"destination_account"`
	IsActive           *bool  `json:"is_active"`
	AutoGenerate       *bool  `json:"auto_generate"`
}

func (req ruleRequest) toRule() (core.DeductionRule, error) {
	pct, err := decimal.NewFromString(req.Percentage)
	if err != nil {
		return core.DeductionRule{}, core.ErrInvalidPercentage
	}
	rule := core.DeductionRule{
		Type:               core.DeductionType(req.Type),
		Percentage:         pct,
		Description:        req.Description,
		DestinationAccount: req.DestinationAccount,
		IsActive:           true,
		AutoGenerate:       true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.AutoGenerate != nil {
		rule.AutoGenerate = *req.AutoGenerate
	}
	return rule, nil
}

type ruleJSON struct {
	ID                   int64     `json:"id"`
	Type                 string    `json:"deduction_type"`
	Percentage           string    `json:"percentage"`
	Description          string    `json:"description,omitempty"`
	DestinationAccount   string    `json:"destination_account,omitempty"`
	IsActive             bool      `json:"is_active"`
	AutoGenerate         bool      `json:"auto_generate"`
	LastCalculatedPeriod string    `json:"last_calculated_period,omitempty"`
	CumulativeDeducted   string    `json:"cumulative_deducted"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toRuleJSON(rule core.DeductionRule) ruleJSON {
	return ruleJSON{
		ID:                   rule.ID,
		Type:                 string(rule.Type),
		Percentage:           rule.Percentage.String(),
		Description:          rule.Description,
		DestinationAccount:   rule.DestinationAccount,
		IsActive:             rule.IsActive,
		AutoGenerate:         rule.AutoGenerate,
		LastCalculatedPeriod: rule.LastCalculatedPeriod,
		CumulativeDeducted:   rule.CumulativeDeducted.String(),
		CreatedAt:            rule.CreatedAt,
		UpdatedAt:            rule.UpdatedAt,
	}
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req ruleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rule, err := req.toRule()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	created, err := s.deductions.CreateRule(r.Context(), a, rule)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRuleJSON(created))
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.deductions.ListRules(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]ruleJSON, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleJSON(rule))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	var req ruleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rule, err := req.toRule()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rule.ID = id
	if err := s.deductions.UpdateRule(r.Context(), a, rule); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	if err := s.deductions.DeleteRule(r.Context(), a, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	ids, err := s.deductions.Calculate(r.Context(), a, parsePeriod(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"created_expense_ids": ids})
}
