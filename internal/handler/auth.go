package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/service"
)

// LoginRequest accepts either an email or a username as the identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// CreateOwnerRequest omits the password to fall back to the configured default.
type CreateOwnerRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Username string `json:"username" validate:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UpdateOwnerRequest is a partial update; omitted fields are unchanged.
type UpdateOwnerRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Username *string `json:"username"`
	Phone    *string `json:"phone"`
	Active   *bool   `json:"active"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TokenValidityResponse struct {
	Valid bool `json:"valid"`
}

// Login handles POST /auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

// ForgotPassword handles POST /auth/forgot-password. The response is the same
// whether or not the email belongs to an account.
func (s *Server) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "if the account exists, a reset link has been issued"})
}

// ResetPassword handles POST /auth/reset-password.
func (s *Server) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, MessageResponse{Message: "password updated"})
}

// ValidateResetToken handles GET /auth/validate-reset-token?token=.
func (s *Server) ValidateResetToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		badRequest(w, r, "token is required")
		return
	}
	ok, err := s.auth.ValidateResetToken(r.Context(), token)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, TokenValidityResponse{Valid: ok})
}

// ListOwners handles GET /auth.
func (s *Server) ListOwners(w http.ResponseWriter, r *http.Request) {
	var search *string
	if !queries(w, r, "search", &search) {
		return
	}
	p, ok := pagination(w, r)
	if !ok {
		return
	}
	page, err := s.owners.List(r.Context(), deref(search), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, listResponse(page))
}

// CreateOwner handles POST /auth/create-owner.
func (s *Server) CreateOwner(w http.ResponseWriter, r *http.Request) {
	var req CreateOwnerRequest
	if !s.decode(w, r, &req) {
		return
	}
	owner, err := s.owners.CreateOwner(r.Context(), service.NewOwner{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, owner)
}

// GetOwner handles GET /auth/{id}.
func (s *Server) GetOwner(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	owner, err := s.owners.GetByID(r.Context(), ids[0])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, owner)
}

// UpdateOwner handles PUT /auth/{id}.
func (s *Server) UpdateOwner(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	var req UpdateOwnerRequest
	if !s.decode(w, r, &req) {
		return
	}
	owner, err := s.owners.Update(r.Context(), ids[0], domain.OwnerPatch{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
		Phone:    req.Phone,
		Active:   req.Active,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	render.JSON(w, r, owner)
}

// DeleteOwner handles DELETE /auth/{id}.
func (s *Server) DeleteOwner(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	if err := s.owners.Delete(r.Context(), ids[0]); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PATCH /auth/{id}/password.
func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ids, ok := pathUUIDs(w, r, "id")
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.owners.ChangePassword(r.Context(), ids[0], req.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
