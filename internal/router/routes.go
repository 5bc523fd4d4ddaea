package router

import (
	"net/url"
	"strings"
)

// Route paths
const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathReviews   = "/reviews"
	PathAnalytics = "/analytics"
	PathReports   = "/reports"
	PathSettings  = "/settings"
)

// Route is a navigable view
type Route struct {
	Path      string
	Title     string
	Protected bool
}

var routes = []Route{
	{Path: PathLogin, Title: "Sign in"},
	{Path: PathDashboard, Title: "Dashboard", Protected: true},
	{Path: PathReviews, Title: "Reviews", Protected: true},
	{Path: PathAnalytics, Title: "Analytics", Protected: true},
	{Path: PathReports, Title: "Reports", Protected: true},
	{Path: PathSettings, Title: "Settings", Protected: true},
}

// Routes returns the route table
func Routes() []Route {
	return append([]Route(nil), routes...)
}

// Resolve maps a requested location to its route. The empty path and
// unknown paths resolve to the dashboard. The query of the location is
// returned alongside.
func Resolve(location string) (Route, url.Values) {
	path, rawQuery, _ := strings.Cut(strings.TrimSpace(location), "?")
	query, _ := url.ParseQuery(rawQuery)

	path = "/" + strings.Trim(path, "/")
	for _, r := range routes {
		if strings.EqualFold(r.Path, path) {
			return r, query
		}
	}
	return routes[1], query
}
