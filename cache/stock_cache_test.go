package cache

import "testing"

func TestSlotSelection(t *testing.T) {
	orgA, orgB := "org-a", "org-b"

	if slot(&orgA, false) != "org-a" || slot(nil, false) != "none" {
		t.Error("scoped reports must live under their own organization slot")
	}
	// Cross-org reports share one slot regardless of the requester's org,
	// so Invalidate bumping that slot reaches all of them.
	if slot(&orgA, true) != slot(&orgB, true) || slot(&orgA, true) != allOrgs {
		t.Error("cross-org reports must share the all-orgs slot")
	}
}

func TestReportKeysSeparateVersions(t *testing.T) {
	if reportKey("org-a", 1, "fp") == reportKey("org-a", 2, "fp") {
		t.Error("a version bump must orphan previously cached reports")
	}
	if reportKey("org-a", 1, "fp") == reportKey("org-b", 1, "fp") {
		t.Error("organizations must not share report keys")
	}
	if verKey("org-a") == verKey(allOrgs) {
		t.Error("org and cross-org version counters must be distinct keys")
	}
}
