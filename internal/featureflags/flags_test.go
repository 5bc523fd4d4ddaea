package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	t.Setenv("FLAG_REQUIRE_AUTH", "Yes")
	t.Setenv("FLAG_XLSX_REPORTS", "0")

	if !Enabled(RequireAuth) {
		t.Fatalf("expected %s enabled", RequireAuth)
	}
	if Enabled(XLSXReports) {
		t.Fatalf("expected %s disabled", XLSXReports)
	}
	if Enabled("never_set") {
		t.Fatalf("expected unset flag disabled")
	}
}

func TestUnrecognisedValueUsesDefault(t *testing.T) {
	t.Setenv("FLAG_REQUIRE_AUTH", "maybe")

	if Enabled(RequireAuth) {
		t.Fatalf("expected %s to fall back to its default", RequireAuth)
	}
}

func TestSnapshotCoversKnownFlags(t *testing.T) {
	t.Setenv("FLAG_XLSX_REPORTS", "on")

	snap := Snapshot()
	if len(snap) != len(All()) {
		t.Fatalf("snapshot has %d flags, want %d", len(snap), len(All()))
	}
	if !snap[XLSXReports] {
		t.Fatalf("expected %s enabled in snapshot", XLSXReports)
	}
	if EnvVar(XLSXReports) != "FLAG_XLSX_REPORTS" {
		t.Fatalf("unexpected env var %q", EnvVar(XLSXReports))
	}
}
