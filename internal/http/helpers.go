package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"outlay/internal/core"
)

// actor returns the authenticated actor id supplied by the identity layer.
// The engine trusts the header; verifying it is the outer deployment's job.
func actor(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Actor-Id"))
}

func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	a := actor(r)
	if a == "" {
		writeError(w, http.StatusBadRequest, "missing X-Actor-Id header")
		return "", false
	}
	return a, true
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the core error taxonomy onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidTransition),
		errors.Is(err, core.ErrDuplicateBudget),
		errors.Is(err, core.ErrBlockedDeletion),
		errors.Is(err, core.ErrStorageConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrRevenueUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("Internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parsePeriod reads period selection from query parameters. Defaults to
// last-30-days when absent.
func parsePeriod(r *http.Request) core.Period {
	q := r.URL.Query()
	kind := core.PeriodKind(q.Get("period"))
	if kind == "" {
		kind = core.PeriodLast30
	}
	p := core.Period{Kind: kind}
	if kind == core.PeriodCustom {
		p.From, _ = core.ParseDate(q.Get("from"))
		p.To, _ = core.ParseDate(q.Get("to"))
	}
	return p
}

// parseMonth reads a month=YYYY-MM query parameter, defaulting to the
// current month.
func parseMonth(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01", v)
}
