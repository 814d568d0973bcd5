package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// slipAttempts bounds the candidate regeneration loop when two writers race
// for the same sequence number. The per-org unique index on slip_no is the
// final arbiter: a losing insert still fails the transaction.
const slipAttempts = 10

// nextSlipNo produces a human-readable workflow identifier such as
// GRN-AUG-2026-14, sequenced per organization and calendar month.
func nextSlipNo(tx *gorm.DB, model any, scope OrgScope, prefix string, at time.Time) (string, error) {
	stem := fmt.Sprintf("%s-%s-%d-", prefix, strings.ToUpper(at.Format("Jan")), at.Year())

	q := scope.Apply(tx.Model(model), "org_id").Where("slip_no LIKE ?", stem+"%")
	var issued int64
	if err := q.Count(&issued).Error; err != nil {
		return "", err
	}

	for i := int64(0); i < slipAttempts; i++ {
		candidate := fmt.Sprintf("%s%d", stem, issued+1+i)
		var dup int64
		err := scope.Apply(tx.Model(model), "org_id").
			Where("slip_no = ?", candidate).
			Count(&dup).Error
		if err != nil {
			return "", err
		}
		if dup == 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("slip number generation exhausted after %d attempts (%s)", slipAttempts, stem)
}
