package router

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

type fakeSession struct{ authenticated bool }

func (f *fakeSession) IsAuthenticated() bool { return f.authenticated }

func TestResolve(t *testing.T) {
	tests := map[string]string{
		"":                     PathDashboard,
		"/":                    PathDashboard,
		"reviews":              PathReviews,
		"/reviews/":            PathReviews,
		"/Settings":            PathSettings,
		"/login?returnUrl=%2F": PathLogin,
		"/nope":                PathDashboard,
	}
	for in, want := range tests {
		route, _ := Resolve(in)
		assert.Equal(t, want, route.Path, "resolve %q", in)
	}
}

func TestGuardGrantsIffAuthenticated(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	var protected []any
	for _, r := range Routes() {
		if r.Protected {
			protected = append(protected, r.Path)
		}
	}

	properties.Property("protected routes are allowed only when authenticated", prop.ForAll(
		func(authenticated bool, path string) bool {
			d := NewGuard(&fakeSession{authenticated: authenticated}).Check(path)
			if d.Allowed != authenticated {
				return false
			}
			return authenticated || d.Redirect == LoginRedirect(path)
		},
		gen.Bool(),
		gen.OneConstOf(protected...),
	))

	properties.Property("login is always allowed", prop.ForAll(
		func(authenticated bool) bool {
			return NewGuard(&fakeSession{authenticated: authenticated}).Check(PathLogin).Allowed
		},
		gen.Bool(),
	))

	properties.Property("unknown paths are guarded like the dashboard", prop.ForAll(
		func(authenticated bool, path string) bool {
			g := NewGuard(&fakeSession{authenticated: authenticated})
			return g.Check("/x-"+path).Allowed == g.Check(PathDashboard).Allowed
		},
		gen.Bool(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestGuardRedirectCarriesReturnURL(t *testing.T) {
	d := NewGuard(&fakeSession{}).Check("/reports")
	assert.False(t, d.Allowed)
	assert.Equal(t, "/login?returnUrl=%2Freports", d.Redirect)
}

func TestNavigatorRedirectsAndReturns(t *testing.T) {
	s := &fakeSession{}
	n := NewNavigator(s, nil)

	loc := n.Navigate("/analytics")
	assert.Equal(t, PathLogin, loc.Route.Path)
	assert.Equal(t, PathAnalytics, loc.ReturnURL)

	s.authenticated = true
	loc = n.AfterLogin()
	assert.Equal(t, PathAnalytics, loc.Route.Path)

	loc = n.Navigate(PathLogin)
	assert.Equal(t, PathDashboard, loc.Route.Path)

	assert.Equal(t, []string{PathLogin, PathAnalytics, PathDashboard}, n.History())
	assert.Equal(t, PathDashboard, n.Current().Route.Path)
}

func TestNavigatorAfterLoginDefaultsToDashboard(t *testing.T) {
	s := &fakeSession{authenticated: true}
	n := NewNavigator(s, nil)

	assert.Equal(t, PathDashboard, n.AfterLogin().Route.Path)
}
