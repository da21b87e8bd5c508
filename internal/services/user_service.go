package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/divesh330/timevault/internal/auth"
	"github.com/divesh330/timevault/internal/config"
	"github.com/divesh330/timevault/internal/errs"
	"github.com/divesh330/timevault/internal/models"
	"github.com/divesh330/timevault/internal/repository"
)

const minPasswordLength = 8

// IUserService defines the interface for account operations.
type IUserService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	// Login returns a signed JWT and the authenticated user.
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// userService implements IUserService.
type userService struct {
	users repository.UserRepository
	cfg   *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, cfg *config.Config) IUserService {
	return &userService{users: users, cfg: cfg}
}

// Register creates a new account with role user.
func (s *userService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, errs.New(errs.KindValidation, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errs.New(errs.KindValidation, "invalid email address %q", email)
	}
	if len(password) < minPasswordLength {
		return nil, errs.New(errs.KindValidation, "password must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "failed to hash password")
	}

	now := time.Now().UTC()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errs.New(errs.KindConflict, "email %s is already registered", email)
		}
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to create user")
	}
	return user, nil
}

// Login authenticates by email and password and issues a JWT. Invalid
// credentials are reported uniformly so the response does not leak which
// part was wrong.
func (s *userService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, errs.New(errs.KindUnauthorized, "invalid email or password")
		}
		return "", nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load user")
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, errs.New(errs.KindUnauthorized, "invalid email or password")
	}

	token, err := auth.GenerateJWT(user.ID, user.Role, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return "", nil, errs.Wrap(errs.KindInternal, err, "failed to issue token")
	}
	return token, user, nil
}

// FindByID fetches a user by ID.
func (s *userService) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.New(errs.KindNotFound, "user %s not found", id)
		}
		return nil, errs.Wrap(errs.KindStoreUnavailable, err, "failed to load user %s", id)
	}
	return user, nil
}
