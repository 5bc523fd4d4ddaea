package router

import "net/url"

// SessionReader reports whether the current session is authenticated
type SessionReader interface {
	IsAuthenticated() bool
}

// Decision is the outcome of a guard check
type Decision struct {
	Allowed  bool
	Redirect string
}

// Guard admits protected routes only for authenticated sessions
type Guard struct {
	session SessionReader
}

// NewGuard creates a guard reading the given session
func NewGuard(session SessionReader) *Guard {
	return &Guard{session: session}
}

// Check decides whether location may be entered. It reads the session
// flag and nothing else.
func (g *Guard) Check(location string) Decision {
	route, _ := Resolve(location)
	if !route.Protected || g.session.IsAuthenticated() {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: LoginRedirect(route.Path)}
}

// LoginRedirect is the login location remembering where to go afterwards
func LoginRedirect(returnTo string) string {
	if returnTo == "" || returnTo == PathLogin {
		return PathLogin
	}
	return PathLogin + "?returnUrl=" + url.QueryEscape(returnTo)
}
