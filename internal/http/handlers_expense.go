package http

import (
	"net/http"
	"strconv"
	"time"

	"outlay/internal/core"
	"outlay/internal/services"
	"outlay/internal/storage"
)

type expenseRequest struct {
	CategoryID    int64  `json:"category_id"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	PaymentDate   string `json:"payment_date"`
	VendorName    string `json:"vendor_name"`
	VendorContact string `json:"vendor_contact"`
	ReceiptNumber string `json:"receipt_number"`
	ReceiptRef    string `json:"receipt_ref"`
	Notes         string `json:"notes"`
}

func (req expenseRequest) toInput() (services.ExpenseInput, error) {
	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		return services.ExpenseInput{}, err
	}
	date, err := core.ParseDate(req.PaymentDate)
	if err != nil {
		return services.ExpenseInput{}, err
	}
	return services.ExpenseInput{
		CategoryID:    req.CategoryID,
		Description:   req.Description,
		Amount:        amount,
		PaymentMethod: core.PaymentMethod(req.PaymentMethod),
		PaymentDate:   date,
		VendorName:    req.VendorName,
		VendorContact: req.VendorContact,
		ReceiptNumber: req.ReceiptNumber,
		ReceiptRef:    req.ReceiptRef,
		Notes:         req.Notes,
	}, nil
}

type expenseJSON struct {
	ID            int64      `json:"id"`
	Number        string     `json:"expense_number"`
	CategoryID    int64      `json:"category_id"`
	Description   string     `json:"description"`
	Amount        string     `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	PaymentDate   string     `json:"payment_date"`
	VendorName    string     `json:"vendor_name,omitempty"`
	VendorContact string     `json:"vendor_contact,omitempty"`
	ReceiptNumber string     `json:"receipt_number,omitempty"`
	ReceiptRef    string     `json:"receipt_ref,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Status        string     `json:"status"`
	CreatedBy     string     `json:"created_by"`
	ApprovedBy    string     `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	PaidBy        string     `json:"paid_by,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	RuleID        *int64     `json:"rule_id,omitempty"`
	PeriodKey     string     `json:"period_key,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:            e.ID,
		Number:        e.Number,
		CategoryID:    e.CategoryID,
		Description:   e.Description,
		Amount:        e.Amount.String(),
		PaymentMethod: string(e.PaymentMethod),
		PaymentDate:   e.PaymentDate.ISO(),
		VendorName:    e.VendorName,
		VendorContact: e.VendorContact,
		ReceiptNumber: e.ReceiptNumber,
		ReceiptRef:    e.ReceiptRef,
		Notes:         e.Notes,
		Status:        string(e.Status),
		CreatedBy:     e.CreatedBy,
		ApprovedBy:    e.ApprovedBy,
		ApprovedAt:    e.ApprovedAt,
		PaidBy:        e.PaidBy,
		PaidAt:        e.PaidAt,
		RuleID:        e.RuleID,
		PeriodKey:     e.PeriodKey,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	e, err := s.ledger.Create(r.Context(), a, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseJSON(e))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	e, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(e))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f storage.ExpenseFilter
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id filter")
			return
		}
		f.CategoryID = id
	}
	if v := q.Get("status"); v != "" {
		st := core.Status(v)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		f.Status = st
	}
	if v := q.Get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return
		}
		f.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return
		}
		f.To = d
	}
	expenses, err := s.ledger.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := s.ledger.Update(r.Context(), id, a, in); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	if err := s.ledger.Delete(r.Context(), id, a); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleApproveExpense(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(id int64, a string) error {
		return s.ledger.Approve(r.Context(), id, a)
	})
}

func (s *Server) handleRejectExpense(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.transition(w, r, func(id int64, a string) error {
		return s.ledger.Reject(r.Context(), id, a, req.Reason)
	})
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(id int64, a string) error {
		return s.ledger.MarkPaid(r.Context(), id, a)
	})
}

func (s *Server) handleCancelExpense(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.transition(w, r, func(id int64, a string) error {
		return s.ledger.Cancel(r.Context(), id, a, req.Reason)
	})
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(id int64, actor string) error) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}
	if err := fn(id, a); err != nil {
		writeServiceError(w, err)
		return
	}
	e, err := s.ledger.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(e))
}
