package featureflags

import (
	"os"
	"strings"
)

// Known flags
const (
	RequireAuth = "require_auth"
	XLSXReports = "xlsx_reports"
)

// Flag describes a toggle read from FLAG_<NAME>
type Flag struct {
	Name        string
	Default     bool
	Description string
}

var known = []Flag{
	{Name: RequireAuth, Description: "dev server rejects API calls without a valid bearer token"},
	{Name: XLSXReports, Description: "reports can be downloaded as xlsx workbooks"},
}

// All returns the known flags in a stable order
func All() []Flag {
	return append([]Flag(nil), known...)
}

// Enabled returns true if a flag is enabled via environment variable.
// Flags are read from env as FLAG_<NAME>=true/1/yes (case-insensitive);
// an unset or unrecognised value falls back to the flag default.
func Enabled(name string) bool {
	v := os.Getenv(EnvVar(name))
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultFor(name)
	}
}

// Snapshot reports the current value of every known flag
func Snapshot() map[string]bool {
	out := make(map[string]bool, len(known))
	for _, f := range known {
		out[f.Name] = Enabled(f.Name)
	}
	return out
}

// EnvVar returns the environment variable backing a flag
func EnvVar(name string) string {
	return "FLAG_" + strings.ToUpper(name)
}

func defaultFor(name string) bool {
	for _, f := range known {
		if f.Name == name {
			return f.Default
		}
	}
	return false
}
