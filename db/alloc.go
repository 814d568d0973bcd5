package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fieldstock/metrics"

	"fieldstock/models"
)

// Allocation uses a read-then-verify discipline: select candidates
// oldest-first, then transition each with its observed state as the CAS
// precondition. A concurrent transaction that already took a candidate makes
// the CAS fail ErrStaleState; we then select a fresh candidate set. Selection
// rounds are bounded, after that the whole workflow fails ErrInsufficientStock
// and rolls back.
const allocAttempts = 3

// warehouse-held units are selectable when available; person-held units when
// in transit or (legacy rows) available.
var personHeldStatuses = []string{models.UnitInTransit, models.UnitAvailable}

// allocateBulk transitions up to qty anonymous bulk units of a material at
// loc into the target state and returns their ids. With allowShort it
// returns whatever it could get (used for the person-stock-first phase of
// consumption); otherwise a shortfall is ErrInsufficientStock.
func allocateBulk(tx *gorm.DB, scope OrgScope, materialID string, loc LocationFilter, statuses []string, qty int, to UnitState, ticket *string, clearTicket, allowShort bool) ([]string, error) {
	picked := make([]string, 0, qty)
	remaining := qty

	for attempt := 0; attempt < allocAttempts && remaining > 0; attempt++ {
		if attempt > 0 {
			metrics.AllocationRetries.Inc()
		}
		candidates, err := findAvailable(tx, scope, materialID, loc, statuses, true, remaining)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			break
		}
		for i := range candidates {
			u := &candidates[i]
			err := transitionUnit(tx, u.ID, stateOf(u), to, ticket, clearTicket)
			if errors.Is(err, ErrStaleState) {
				// Lost the race for this unit; the next round reselects.
				continue
			}
			if err != nil {
				return nil, err
			}
			picked = append(picked, u.ID)
			remaining--
		}
	}

	if remaining > 0 && !allowShort {
		metrics.InsufficientStock.Inc()
		return nil, fmt.Errorf("%w: material %s short by %d", ErrInsufficientStock, materialID, remaining)
	}
	return picked, nil
}

// allocateSerial resolves one explicit serial within loc (and ticket scope,
// when given) and transitions it. An unknown serial is a validation failure;
// a known serial that cannot be won within the retry bound reports as
// insufficient stock, same as the bulk path.
func allocateSerial(tx *gorm.DB, scope OrgScope, serial, materialID string, loc LocationFilter, scopeTicket *string, to UnitState, ticket *string, clearTicket bool) (string, error) {
	for attempt := 0; attempt < allocAttempts; attempt++ {
		if attempt > 0 {
			metrics.AllocationRetries.Inc()
		}
		u, err := findBySerial(tx, scope, serial, &loc, scopeTicket)
		if errors.Is(err, ErrNotFound) {
			// Either the serial never existed here or a rival moved it away.
			if exists, eerr := serialExists(tx, scope, serial); eerr == nil && !exists {
				return "", invalid("serialNumbers", "unknown serial "+serial)
			}
			metrics.InsufficientStock.Inc()
			return "", fmt.Errorf("%w: serial %s not available at source", ErrInsufficientStock, serial)
		}
		if err != nil {
			return "", err
		}
		if u.MaterialID != materialID {
			return "", invalid("serialNumbers", "serial "+serial+" belongs to another material")
		}
		if !selectable(u.Status, loc.Type) {
			metrics.InsufficientStock.Inc()
			return "", fmt.Errorf("%w: serial %s is %s", ErrInsufficientStock, serial, u.Status)
		}

		err = transitionUnit(tx, u.ID, stateOf(u), to, ticket, clearTicket)
		if errors.Is(err, ErrStaleState) {
			continue
		}
		if err != nil {
			return "", err
		}
		return u.ID, nil
	}
	metrics.InsufficientStock.Inc()
	return "", fmt.Errorf("%w: serial %s contended away", ErrInsufficientStock, serial)
}

func selectable(status, locType string) bool {
	if locType == models.LocPerson {
		return status == models.UnitInTransit || status == models.UnitAvailable
	}
	return status == models.UnitAvailable
}

func serialExists(tx *gorm.DB, scope OrgScope, serial string) (bool, error) {
	var n int64
	err := scope.Apply(tx.Model(&models.Unit{}), "org_id").
		Where("serial_number = ? AND active", serial).
		Count(&n).Error
	return n > 0, err
}
