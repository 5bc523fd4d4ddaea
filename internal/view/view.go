// Package view holds the state of the dashboard screens. Each view fetches
// through the API client, keeps the latest result behind a mutex and
// derives display data with pure functions.
package view

import (
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/aryan0dhankhar/reviewdesk/internal/observability/metrics"
)

// ErrSuperseded is returned by a fetch whose result was discarded because a
// newer fetch of the same resource started after it.
var ErrSuperseded = errors.New("superseded by a newer request")

// ValidationError rejects input before any request is sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// generation implements last-request-wins for one resource. Callers hold
// the owning view's mutex.
type generation struct {
	n uint64
}

func (g *generation) next() uint64 {
	g.n++
	return g.n
}

func (g *generation) current(id uint64) bool {
	return g.n == id
}

func observeFetch(view string, err error) {
	switch {
	case err == nil:
		metrics.ObserveViewFetch(view, "success")
	case errors.Is(err, ErrSuperseded):
		metrics.ObserveViewFetch(view, "superseded")
	default:
		metrics.ObserveViewFetch(view, "error")
	}
}

// reportFetchError logs a failed fetch and shows it as an error toast.
// Superseded fetches stay silent.
func reportFetchError(logger *slog.Logger, notifier *Notifier, view, what string, err error) {
	if err == nil || errors.Is(err, ErrSuperseded) {
		return
	}
	logger.Warn("fetch failed",
		slog.String("view", view),
		slog.String("error", err.Error()),
	)
	notifier.Show(ToastError, fmt.Sprintf("Failed to load %s: %v", what, err))
}

// LoginForm is the sign-in form input
type LoginForm struct {
	Email    string
	Password string
}

// Validate checks the form before it is submitted
func (f LoginForm) Validate() error {
	email := strings.TrimSpace(f.Email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "enter a valid email address"}
	}
	if strings.TrimSpace(f.Password) == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}
