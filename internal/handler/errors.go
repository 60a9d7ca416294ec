package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// ErrorResponse is the envelope every failed request receives.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorMapping pairs a domain sentinel with its HTTP status and error code.
// Order matters only when an error wraps more than one sentinel.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidPlan, http.StatusBadRequest, "invalid_plan"},
	{domain.ErrAlreadyAssigned, http.StatusBadRequest, "already_assigned"},
	{domain.ErrAlreadySettled, http.StatusBadRequest, "already_settled"},
	{domain.ErrMissingReceipt, http.StatusBadRequest, "missing_receipt"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// writeError renders the standard error envelope with the given status.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorDetail{Code: code, Message: msg}})
}

// fail maps err to a status via errorMapping. Unmapped errors are logged and
// reported as a bare 500 so internals never reach the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeError(w, r, m.status, m.code, unwrapMessage(err, m.err))
			return
		}
	}
	s.log.ErrorContext(r.Context(), "request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
}

// badRequest reports input rejected before it reached a service: an
// unparsable body or a malformed path or query parameter.
func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeError(w, r, http.StatusBadRequest, "bad_request", msg)
}

// invalid reports struct-tag validation failures as 422, matching how the
// services report their own rule violations.
func invalid(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusUnprocessableEntity, "validation_error", validationMessage(err))
}

// unwrapMessage extracts the human-readable part that follows the sentinel.
// e.g. "service.BoatService.Create: validation error: name is required" → "name is required"
// An error that is the bare sentinel yields the sentinel text.
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is not valid", fe.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}
