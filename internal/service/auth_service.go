package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/reviewdesk/internal/apiclient"
	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/observability/metrics"
	"github.com/aryan0dhankhar/reviewdesk/internal/router"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/audit"
	"github.com/aryan0dhankhar/reviewdesk/internal/session"
)

// ErrUnauthorized is returned when the backend rejects the credentials
var ErrUnauthorized = errors.New("invalid credentials")

// LoginAPI is the backend call used by Login
type LoginAPI interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
}

// Navigator moves the client to a location
type Navigator interface {
	Navigate(location string) router.Location
}

// AuthService logs users in and out. It is the only writer of the session.
type AuthService struct {
	api     LoginAPI
	session *session.Store
	nav     Navigator
	audit   *audit.Logger
	logger  *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	api LoginAPI,
	store *session.Store,
	nav Navigator,
	auditLogger *audit.Logger,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLogger == nil {
		auditLogger = audit.NewLogger(logger)
	}

	return &AuthService{
		api:     api,
		session: store,
		nav:     nav,
		audit:   auditLogger,
		logger:  logger,
	}
}

// Login posts the credentials and, on success, persists the token and user
// and marks the session authenticated. On any failure the session is left
// as it was. Failed attempts are not retried.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	result, err := s.api.Login(ctx, email, password)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			err = fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.Message)
		}
		s.loginFailed(ctx, email, err)
		return nil, err
	}

	if !result.Success || result.Token == "" {
		msg := result.Message
		if msg == "" {
			msg = "login rejected"
		}
		err := fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		s.loginFailed(ctx, email, err)
		return nil, err
	}

	user := domain.UserInfo{Email: email}
	if result.User != nil {
		user = *result.User
	}

	// Persist restores the previous entries on failure, so the session is untouched
	if err := s.session.Persist(ctx, result.Token, user); err != nil {
		s.loginFailed(ctx, email, err)
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	s.session.SetAuthenticated(true)

	metrics.ObserveAuthEvent("login", "success")
	s.audit.LogLogin(ctx, user.ID, user.Email, "success", "")
	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return result, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string, err error) {
	metrics.ObserveAuthEvent("login", "failure")
	s.audit.LogLogin(ctx, "", email, "failure", err.Error())
	s.logger.Info("login failed",
		slog.String("email", email),
		slog.String("error", err.Error()),
	)
}

// Logout removes the stored session, marks it unauthenticated and returns
// the client to the login page. Calling it again is harmless.
func (s *AuthService) Logout(ctx context.Context) error {
	var userID string
	if user, ok := s.session.CurrentUser(); ok {
		userID = user.ID
	}

	err := s.session.Clear(ctx)
	s.session.SetAuthenticated(false)
	if s.nav != nil {
		s.nav.Navigate(router.PathLogin)
	}

	status := "success"
	details := ""
	if err != nil {
		status = "failure"
		details = err.Error()
	}
	metrics.ObserveAuthEvent("logout", status)
	s.audit.LogLogout(ctx, userID, status, details)

	return err
}
