package service

import (
	"context"
	"log/slog"
	"strings"

	domainauth "github.com/church-agenda/agenda-client/internal/domain/auth"
	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/church-agenda/agenda-client/internal/ports"
	"github.com/church-agenda/agenda-client/internal/validation"
)

// KeyForbidden is reported when a privileged action is attempted without an admin session.
const KeyForbidden = "auth.forbidden"

// RegisterInput is the registration form.
type RegisterInput struct {
	Email            string
	Password         string
	ConfirmPassword  string
	FullName         string
	OrganizationSlug string
}

// AccountsOptions groups dependencies for AccountService.
type AccountsOptions struct {
	API      ports.AuthAPI
	Sessions *SessionStore
	Logger   *slog.Logger
}

// AccountService handles registration and approval.
type AccountService struct {
	api      ports.AuthAPI
	sessions *SessionStore
	logger   *slog.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(opts AccountsOptions) *AccountService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		api:      opts.API,
		sessions: opts.Sessions,
		logger:   logger.With("component", "accounts"),
	}
}

// Validate runs the local registration checks without touching the network.
func (in RegisterInput) Validate() error {
	return validation.New().
		Validate("email", in.Email, validation.Required(254), validation.Email()).
		Validate("full_name", in.FullName, validation.Required(200), validation.FullName()).
		Validate("password", in.Password, validation.StrongPassword()).
		Validate("confirm_password", in.ConfirmPassword, validation.Matches(in.Password)).
		Err()
}

// Register validates in locally and, when valid, registers the account. New accounts
// stay pending until an admin approves them.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domainauth.RegisterResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := in.Validate(); err != nil {
		return domainauth.RegisterResult{}, err
	}

	env := s.api.Register(ctx, domainauth.RegisterRequest{
		Email:            in.Email,
		Password:         in.Password,
		FullName:         in.FullName,
		OrganizationSlug: strings.TrimSpace(in.OrganizationSlug),
	})
	if err := env.Err(); err != nil {
		s.logger.InfoContext(ctx, "registration rejected", "error_key", env.ErrorKey)
		return domainauth.RegisterResult{}, err
	}
	return env.Value(), nil
}

// Approve activates a pending account. The current session must be privileged.
func (s *AccountService) Approve(ctx context.Context, email string) (string, error) {
	if s.sessions == nil || !s.sessions.IsAdmin() {
		return "", apperrors.Domain(KeyForbidden)
	}
	email = strings.TrimSpace(email)
	if err := validation.New().Validate("email", email, validation.Required(254), validation.Email()).Err(); err != nil {
		return "", err
	}

	env := s.api.Approve(ctx, email)
	if err := env.Err(); err != nil {
		return "", err
	}
	return env.Value().Message, nil
}
