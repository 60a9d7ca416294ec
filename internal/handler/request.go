package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// Pagination is the metadata block on every list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ListResponse wraps one page of items.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func listResponse[T any](p domain.Page[T]) ListResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{
		Data:       items,
		Pagination: Pagination{Page: p.Page, Limit: p.Limit, Total: p.Total},
	}
}

// decode reads a JSON body into dst and runs its validate tags.
// It writes the error response itself and reports whether the caller may
// continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		case errors.Is(err, io.EOF):
			badRequest(w, r, "request body is required")
		default:
			badRequest(w, r, "request body must be valid JSON")
		}
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		invalid(w, r, err)
		return false
	}
	return true
}

// pathUUID binds the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid format for parameter %s: must be a UUID", name)
	}
	return id, nil
}

// pathUUIDs binds several UUID path parameters, writing a 400 on the first
// malformed one.
func pathUUIDs(w http.ResponseWriter, r *http.Request, names ...string) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, len(names))
	for i, name := range names {
		id, err := pathUUID(r, name)
		if err != nil {
			badRequest(w, r, err.Error())
			return nil, false
		}
		out[i] = id
	}
	return out, true
}

// query binds an optional form-style query parameter into dst, which must be
// a pointer to a pointer so absence stays distinguishable from zero.
func query(r *http.Request, name string, dst any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		return fmt.Errorf("invalid format for parameter %s", name)
	}
	return nil
}

// queries binds several optional query parameters, writing a 400 on the first
// malformed one. Pairs are name, destination.
func queries(w http.ResponseWriter, r *http.Request, pairs ...any) bool {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := query(r, pairs[i].(string), pairs[i+1]); err != nil {
			badRequest(w, r, err.Error())
			return false
		}
	}
	return true
}

// pagination reads ?page= and ?limit= with the domain defaults.
func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	if !queries(w, r, "page", &page, "limit", &limit) {
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
