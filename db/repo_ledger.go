package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldstock/models"
)

// UnitState is the (status, location) pair of a ledger row. It doubles as
// the expected-current-state precondition for TransitionUnit and as the
// target state a transition moves to.
type UnitState struct {
	Status       string
	LocationType string
	LocationID   *string
}

// LocationFilter narrows unit queries to a location kind and optionally a
// specific area or user. A nil ID matches any location of that kind.
type LocationFilter struct {
	Type string
	ID   *string
}

// stateOf snapshots a unit's current state for a read-then-verify CAS.
func stateOf(u *models.Unit) UnitState {
	return UnitState{Status: u.Status, LocationType: u.LocationType, LocationID: u.LocationID}
}

// createUnits materializes ledger rows for one receipt line: one row per
// piece of quantity, or one row per serial. serials and macs are parallel;
// either may be shorter than count (remaining rows are anonymous bulk).
// Fails ErrDuplicateIdentity when an identity collides with an active unit.
func createUnits(tx *gorm.DB, scope OrgScope, materialID, areaID, receiptLineID string, count int, serials, macs []string) ([]string, error) {
	ids := make([]string, 0, count)
	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		u := models.Unit{
			ID:            uuid.NewString(),
			OrgID:         scope.OrgID,
			MaterialID:    materialID,
			LocationType:  models.LocWarehouse,
			LocationID:    &areaID,
			Status:        models.UnitAvailable,
			ReceiptLineID: receiptLineID,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if i < len(serials) && serials[i] != "" {
			s := serials[i]
			u.SerialNumber = &s
		}
		if i < len(macs) && macs[i] != "" {
			m := macs[i]
			u.MACAddress = &m
		}
		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, fmt.Errorf("%w: unit %d of line %s", ErrDuplicateIdentity, i+1, receiptLineID)
			}
			return nil, err
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// transitionUnit applies one state-machine step as a guarded UPDATE: the row
// is only touched if it still matches the expected state, so a concurrent
// writer that won the unit first makes this call fail ErrStaleState instead
// of silently overwriting it. ticket semantics: clearTicket wins, otherwise
// a non-nil ticket is set, otherwise the current ticket is preserved.
func transitionUnit(tx *gorm.DB, unitID string, expected, to UnitState, ticket *string, clearTicket bool) error {
	q := tx.Model(&models.Unit{}).
		Where("id = ? AND active AND status = ? AND location_type = ?",
			unitID, expected.Status, expected.LocationType)
	if expected.LocationID != nil {
		q = q.Where("location_id = ?", *expected.LocationID)
	}

	updates := map[string]any{
		"status":        to.Status,
		"location_type": to.LocationType,
		"location_id":   to.LocationID,
		"updated_at":    time.Now().UTC(),
	}
	if clearTicket {
		updates["ticket_id"] = nil
	} else if ticket != nil {
		updates["ticket_id"] = *ticket
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&models.Unit{}).Where("id = ? AND active", unitID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: unit %s", ErrNotFound, unitID)
		}
		return fmt.Errorf("%w: unit %s", ErrStaleState, unitID)
	}
	return nil
}

// findAvailable lists candidate units oldest-created-first. FIFO keeps
// allocation order deterministic and spreads contention off the newest rows.
func findAvailable(tx *gorm.DB, scope OrgScope, materialID string, loc LocationFilter, statuses []string, bulkOnly bool, limit int) ([]models.Unit, error) {
	q := scope.Apply(tx.Model(&models.Unit{}), "org_id").
		Where("material_id = ? AND active", materialID).
		Where("location_type = ?", loc.Type).
		Where("status IN ?", statuses)
	if loc.ID != nil {
		q = q.Where("location_id = ?", *loc.ID)
	}
	if bulkOnly {
		q = q.Where("serial_number IS NULL AND mac_address IS NULL")
	}
	var units []models.Unit
	err := q.Order("created_at ASC, id ASC").Limit(limit).Find(&units).Error
	return units, err
}

// findBySerial resolves a serial number to its active unit, optionally
// constrained to a location and ticket.
func findBySerial(tx *gorm.DB, scope OrgScope, serial string, loc *LocationFilter, ticketID *string) (*models.Unit, error) {
	q := scope.Apply(tx.Model(&models.Unit{}), "org_id").
		Where("serial_number = ? AND active", serial)
	if loc != nil {
		q = q.Where("location_type = ?", loc.Type)
		if loc.ID != nil {
			q = q.Where("location_id = ?", *loc.ID)
		}
	}
	if ticketID != nil {
		// Units handed out without a ticket match any ticket scope, else
		// they could never be consumed by serial from person stock.
		q = q.Where("(ticket_id = ? OR ticket_id IS NULL)", *ticketID)
	}
	var u models.Unit
	err := q.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: serial %s", ErrNotFound, serial)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// --- read-side entry points ---

// FindAvailableUnits is the public FIFO availability listing.
func (r *Repo) FindAvailableUnits(ctx context.Context, scope OrgScope, materialID string, areaID *string, limit int) ([]models.Unit, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return findAvailable(r.DB.WithContext(ctx), scope, materialID,
		LocationFilter{Type: models.LocWarehouse, ID: areaID},
		[]string{models.UnitAvailable}, false, limit)
}

// FindUnitBySerial resolves a serial among active units.
func (r *Repo) FindUnitBySerial(ctx context.Context, scope OrgScope, serial string) (*models.Unit, error) {
	return findBySerial(r.DB.WithContext(ctx), scope, serial, nil, nil)
}

// ListPersonStock returns every unit currently held by a technician.
func (r *Repo) ListPersonStock(ctx context.Context, scope OrgScope, userID string) ([]models.Unit, error) {
	var units []models.Unit
	err := scope.Apply(r.DB.WithContext(ctx).Model(&models.Unit{}), "org_id").
		Where("location_type = ? AND location_id = ? AND active", models.LocPerson, userID).
		Order("created_at ASC, id ASC").
		Find(&units).Error
	return units, err
}

// CountUnitsByStatus tallies a material's units per status, active rows only.
func (r *Repo) CountUnitsByStatus(ctx context.Context, scope OrgScope, materialID string) (map[string]int64, error) {
	rows, err := scope.Apply(r.DB.WithContext(ctx).Model(&models.Unit{}), "org_id").
		Where("material_id = ? AND active", materialID).
		Select("status, COUNT(*) AS n").
		Group("status").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
