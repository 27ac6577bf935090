package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fleetcomp/internal/catalog"
	"fleetcomp/internal/hos"
	"fleetcomp/internal/store"
	"fleetcomp/internal/weight"
)

// problem is an RFC 7807 error body.
type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeProblem(w http.ResponseWriter, code int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: code, Detail: detail})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// writeError maps engine and store errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, catalog.ErrUnknownConfiguration):
		writeProblem(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, store.ErrConflict),
		errors.Is(err, store.ErrNoOpenInterval),
		errors.Is(err, hos.ErrBadTransition):
		writeProblem(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, weight.ErrInvalidCargoWeight),
		errors.Is(err, weight.ErrNoRouteStates),
		errors.Is(err, hos.ErrInvalidDutyStatus),
		errors.Is(err, hos.ErrMissingSerial),
		errors.Is(err, hos.ErrMissingLicense):
		writeProblem(w, http.StatusBadRequest, "invalid request", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "internal error", err.Error())
	}
}
