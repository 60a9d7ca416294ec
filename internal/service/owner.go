package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/auth"
	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
)

// minPasswordLen applies to every password set through the API.
const minPasswordLen = 6

// NewOwner is the input for creating a boat owner account.
// Password is optional; the configured default is used when empty.
type NewOwner struct {
	FullName string
	Email    string
	Username string
	Phone    string
	Password string
}

// AdminSeed describes the bootstrap operator account.
type AdminSeed struct {
	Email    string
	Username string
	Password string
}

// OwnerService manages user accounts.
type OwnerService struct {
	repo            repo.OwnerRepo
	defaultPassword string
	log             *slog.Logger
}

// NewOwnerService constructs an OwnerService. defaultPassword is assigned to
// owners created without one.
func NewOwnerService(r repo.OwnerRepo, defaultPassword string, log *slog.Logger) *OwnerService {
	return &OwnerService{repo: r, defaultPassword: defaultPassword, log: log}
}

// CreateOwner validates and persists a new active OWNER account.
func (s *OwnerService) CreateOwner(ctx context.Context, in NewOwner) (domain.Owner, error) {
	fullName, err := required("full_name", in.FullName)
	if err != nil {
		return domain.Owner{}, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return domain.Owner{}, err
	}
	username, err := normalizeUsername(in.Username)
	if err != nil {
		return domain.Owner{}, err
	}

	password := in.Password
	if password == "" {
		password = s.defaultPassword
	}
	if len(password) < minPasswordLen {
		return domain.Owner{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("service.OwnerService.CreateOwner: %w", err)
	}

	created, err := s.repo.Create(ctx, domain.Owner{
		FullName:     fullName,
		Email:        email,
		Username:     username,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleOwner,
		Active:       true,
		PasswordHash: hash,
	})
	if err != nil {
		return domain.Owner{}, fmt.Errorf("service.OwnerService.CreateOwner: %w", err)
	}
	s.log.InfoContext(ctx, "owner created", "owner_id", created.ID, "username", created.Username)
	return created, nil
}

// GetByID returns a single account by ID.
func (s *OwnerService) GetByID(ctx context.Context, id uuid.UUID) (domain.Owner, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("service.OwnerService.GetByID: %w", err)
	}
	return o, nil
}

// List returns one page of OWNER accounts, optionally filtered by search.
func (s *OwnerService) List(ctx context.Context, search string, p domain.PaginationParams) (domain.Page[domain.Owner], error) {
	owners, total, err := s.repo.List(ctx, domain.RoleOwner, strings.TrimSpace(search), p)
	if err != nil {
		return domain.Page[domain.Owner]{}, fmt.Errorf("service.OwnerService.List: %w", err)
	}
	return page(owners, total, p), nil
}

// Update applies a partial update. Nil fields in patch are left unchanged.
func (s *OwnerService) Update(ctx context.Context, id uuid.UUID, patch domain.OwnerPatch) (domain.Owner, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("service.OwnerService.Update: %w", err)
	}

	if patch.FullName != nil {
		if o.FullName, err = required("full_name", *patch.FullName); err != nil {
			return domain.Owner{}, err
		}
	}
	if patch.Email != nil {
		if o.Email, err = normalizeEmail(*patch.Email); err != nil {
			return domain.Owner{}, err
		}
	}
	if patch.Username != nil {
		if o.Username, err = normalizeUsername(*patch.Username); err != nil {
			return domain.Owner{}, err
		}
	}
	if patch.Phone != nil {
		o.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Active != nil {
		o.Active = *patch.Active
	}

	updated, err := s.repo.Update(ctx, o)
	if err != nil {
		return domain.Owner{}, fmt.Errorf("service.OwnerService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes an account. Boats it owned become unassigned.
func (s *OwnerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.OwnerService.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "owner deleted", "owner_id", id)
	return nil
}

// ChangePassword replaces an account's password.
func (s *OwnerService) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("service.OwnerService.ChangePassword: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("service.OwnerService.ChangePassword: %w", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap ADMIN account unless an account with
// that email already exists. It reports whether an account was created.
func (s *OwnerService) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	email, err := normalizeEmail(seed.Email)
	if err != nil {
		return false, err
	}

	_, err = s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.log.DebugContext(ctx, "admin account present", "email", email)
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("service.OwnerService.EnsureAdmin: %w", err)
	}

	username, err := normalizeUsername(seed.Username)
	if err != nil {
		return false, err
	}
	if len(seed.Password) < minPasswordLen {
		return false, fmt.Errorf("%w: admin password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("service.OwnerService.EnsureAdmin: %w", err)
	}

	created, err := s.repo.Create(ctx, domain.Owner{
		FullName:     "Administrator",
		Email:        email,
		Username:     username,
		Role:         domain.RoleAdmin,
		Active:       true,
		PasswordHash: hash,
	})
	if err != nil {
		return false, fmt.Errorf("service.OwnerService.EnsureAdmin: %w", err)
	}
	s.log.InfoContext(ctx, "admin account seeded", "owner_id", created.ID, "email", email)
	return true, nil
}

func normalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(e) {
		return "", fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	return e, nil
}

func normalizeUsername(username string) (string, error) {
	u := strings.TrimSpace(username)
	if !usernamePattern.MatchString(u) {
		return "", fmt.Errorf("%w: username must be 3-20 letters, digits, '_' or '-'", domain.ErrValidation)
	}
	return u, nil
}
