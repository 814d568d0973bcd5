package db

import "gorm.io/gorm"

// OrgScope carries the caller's organization and user for every repo
// operation. CrossOrg disables organization filtering for reads; it replaced
// a global "show all orgs" toggle and must be set deliberately per request
// (admin-only, gated by config), never as ambient state.
type OrgScope struct {
	OrgID    *string
	UserID   string
	CrossOrg bool
}

// cond builds the organization filter for the given column. Rows with a NULL
// org always match a scoped query; records predate org tagging and are still
// visible to every organization until backfilled.
func (s OrgScope) cond(col string) (string, []any) {
	if s.CrossOrg {
		return "1=1", nil
	}
	if s.OrgID == nil {
		return col + " IS NULL", nil
	}
	return "(" + col + " = ? OR " + col + " IS NULL)", []any{*s.OrgID}
}

// Apply adds the organization filter on col to a query.
func (s OrgScope) Apply(tx *gorm.DB, col string) *gorm.DB {
	c, args := s.cond(col)
	return tx.Where(c, args...)
}
