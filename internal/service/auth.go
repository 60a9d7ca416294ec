package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkordes/fleet-ledger/internal/auth"
	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      domain.Owner `json:"user"`
}

// AuthService handles login and password recovery.
type AuthService struct {
	owners   repo.OwnerRepo
	tokens   repo.ResetTokenRepo
	tx       repo.Transactor
	maker    *auth.TokenMaker
	resetTTL time.Duration
	clock    Clock
	log      *slog.Logger
}

// NewAuthService constructs an AuthService. resetTTL bounds the lifetime of
// password reset tokens.
func NewAuthService(owners repo.OwnerRepo, tokens repo.ResetTokenRepo, tx repo.Transactor, maker *auth.TokenMaker, resetTTL time.Duration, clock Clock, log *slog.Logger) *AuthService {
	return &AuthService{owners: owners, tokens: tokens, tx: tx, maker: maker, resetTTL: resetTTL, clock: clock, log: log}
}

// Login authenticates by email or username. Unknown accounts, wrong
// passwords and inactive accounts all yield domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: credentials required", domain.ErrUnauthorized)
	}

	o, err := s.owners.GetByLogin(ctx, identifier)
	if errors.Is(err, domain.ErrNotFound) {
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if !auth.CheckPassword(o.PasswordHash, password) {
		return LoginResult{}, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	}
	if !o.Active {
		return LoginResult{}, fmt.Errorf("%w: account is inactive", domain.ErrUnauthorized)
	}

	token, exp, err := s.maker.Generate(o)
	if err != nil {
		return LoginResult{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	s.log.InfoContext(ctx, "login", "owner_id", o.ID, "role", o.Role)
	return LoginResult{Token: token, ExpiresAt: exp, User: o}, nil
}

// ForgotPassword issues a reset token for an active account. It never
// reveals whether the email is known.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	o, err := s.owners.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.DebugContext(ctx, "password reset for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.AuthService.ForgotPassword: %w", err)
	}
	if !o.Active {
		s.log.DebugContext(ctx, "password reset for inactive account", "owner_id", o.ID)
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("service.AuthService.ForgotPassword: %w", err)
	}
	expires := s.clock.now().Add(s.resetTTL)
	if err := s.tokens.Create(ctx, domain.ResetToken{Token: token, OwnerID: o.ID, ExpiresAt: expires}); err != nil {
		return fmt.Errorf("service.AuthService.ForgotPassword: %w", err)
	}

	// Delivery happens outside this service; the token is logged for the operator.
	s.log.InfoContext(ctx, "password reset token issued", "owner_id", o.ID, "token", token, "expires_at", expires)
	return nil
}

// ValidateResetToken reports whether token can still be redeemed.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	t, err := s.tokens.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("service.AuthService.ValidateResetToken: %w", err)
	}
	return t.Usable(s.clock.now()), nil
}

// ResetPassword redeems token and sets a new password in one transaction.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}

	t, err := s.tokens.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !t.Usable(s.clock.now())) {
		return fmt.Errorf("%w: invalid or expired reset token", domain.ErrValidation)
	}
	if err != nil {
		return fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}

	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		// Consume is conditional on used_at IS NULL, so a token redeemed
		// concurrently loses here and the password is left alone.
		if err := r.ResetTokens.Consume(ctx, token); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: invalid or expired reset token", domain.ErrValidation)
			}
			return err
		}
		return r.Owners.UpdatePassword(ctx, t.OwnerID, hash)
	})
	if err != nil {
		return fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}
	s.log.InfoContext(ctx, "password reset", "owner_id", t.OwnerID)
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
