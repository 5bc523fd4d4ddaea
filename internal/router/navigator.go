package router

import (
	"log/slog"
	"sync"
)

// Location is where navigation landed
type Location struct {
	Route     Route
	ReturnURL string
}

// Navigator applies the guard to navigation requests and tracks the
// current location.
type Navigator struct {
	mu      sync.Mutex
	guard   *Guard
	session SessionReader
	current Location
	history []string
	logger  *slog.Logger
}

// NewNavigator creates a navigator positioned at the login page
func NewNavigator(session SessionReader, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	login, _ := Resolve(PathLogin)
	return &Navigator{
		guard:   NewGuard(session),
		session: session,
		current: Location{Route: login},
		logger:  logger,
	}
}

// Guard returns the guard used for navigation
func (n *Navigator) Guard() *Guard {
	return n.guard
}

// Navigate moves to location, redirecting to login when the guard refuses
// and away from login when already signed in.
func (n *Navigator) Navigate(location string) Location {
	route, query := Resolve(location)

	var next Location
	switch {
	case route.Path == PathLogin && n.session.IsAuthenticated():
		next.Route, _ = Resolve(PathDashboard)
	case route.Path == PathLogin:
		next = Location{Route: route, ReturnURL: query.Get("returnUrl")}
	default:
		decision := n.guard.Check(route.Path)
		if decision.Allowed {
			next.Route = route
			break
		}
		n.logger.Debug("navigation redirected",
			slog.String("requested", route.Path),
			slog.String("redirect", decision.Redirect),
		)
		login, q := Resolve(decision.Redirect)
		next = Location{Route: login, ReturnURL: q.Get("returnUrl")}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = next
	n.history = append(n.history, next.Route.Path)
	return next
}

// AfterLogin continues to the remembered return location, or the dashboard
func (n *Navigator) AfterLogin() Location {
	n.mu.Lock()
	target := n.current.ReturnURL
	n.mu.Unlock()

	if target == "" {
		target = PathDashboard
	}
	return n.Navigate(target)
}

// Current returns the current location
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// History returns the paths visited, oldest first
func (n *Navigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}
