package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldstock/metrics"
	"fieldstock/models"
)

type ReturnLineInput struct {
	MaterialID    string   `json:"materialId" binding:"required"`
	Quantity      int      `json:"quantity"`
	SerialNumbers []string `json:"serialNumbers"`
}

type SubmitReturnInput struct {
	FromUserID   string            `json:"fromUserId" binding:"required"`
	TargetAreaID string            `json:"targetAreaId" binding:"required"`
	Reason       string            `json:"reason"`
	Note         string            `json:"note"`
	Lines        []ReturnLineInput `json:"lines" binding:"required"`
}

// SubmitReturn opens a PENDING return for units a technician holds. The
// referenced units are resolved and recorded now, but stay on the technician
// until approval; rejection never touches them.
func (r *Repo) SubmitReturn(ctx context.Context, scope OrgScope, in SubmitReturnInput) (*models.Return, error) {
	if len(in.Lines) == 0 {
		return nil, invalid("lines", "at least one line required")
	}
	switch in.Reason {
	case "":
		in.Reason = models.ReturnReasonOK
	case models.ReturnReasonOK, models.ReturnReasonFaulty:
	default:
		return nil, invalid("reason", "must be ok or faulty")
	}

	var ret *models.Return
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getActiveUser(tx, scope, "fromUserId", in.FromUserID); err != nil {
			return err
		}
		if _, err := getActiveStockArea(tx, scope, "targetAreaId", in.TargetAreaID); err != nil {
			return err
		}

		slip, err := nextSlipNo(tx, &models.Return{}, scope, "RT", time.Now().UTC())
		if err != nil {
			return err
		}
		ret = &models.Return{
			ID:           uuid.NewString(),
			OrgID:        scope.OrgID,
			SlipNo:       slip,
			FromUserID:   in.FromUserID,
			TargetAreaID: in.TargetAreaID,
			Reason:       in.Reason,
			Status:       models.ReturnPending,
			Note:         in.Note,
			CreatedBy:    scope.UserID,
		}
		if err := tx.Create(ret).Error; err != nil {
			return err
		}

		held := LocationFilter{Type: models.LocPerson, ID: &in.FromUserID}
		for i, li := range in.Lines {
			qty, serials, _, err := normalizeLine(tx, scope, li.MaterialID, li.Quantity, li.SerialNumbers, nil)
			if err != nil {
				return err
			}

			var unitIDs []string
			if len(serials) > 0 {
				for _, serial := range serials {
					u, err := findBySerial(tx, scope, serial, &held, nil)
					if errors.Is(err, ErrNotFound) {
						return invalid("serialNumbers", "serial "+serial+" is not held by this technician")
					}
					if err != nil {
						return err
					}
					if u.MaterialID != li.MaterialID {
						return invalid("serialNumbers", "serial "+serial+" belongs to another material")
					}
					unitIDs = append(unitIDs, u.ID)
				}
			} else {
				units, err := findAvailable(tx, scope, li.MaterialID, held, personHeldStatuses, true, qty)
				if err != nil {
					return err
				}
				if len(units) < qty {
					metrics.InsufficientStock.Inc()
					return fmt.Errorf("%w: technician holds %d of %d requested", ErrInsufficientStock, len(units), qty)
				}
				for _, u := range units {
					unitIDs = append(unitIDs, u.ID)
				}
			}

			line := models.ReturnLine{
				ID:            uuid.NewString(),
				ReturnID:      ret.ID,
				LineNo:        i + 1,
				MaterialID:    li.MaterialID,
				Quantity:      qty,
				SerialNumbers: serials,
				UnitIDs:       unitIDs,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			ret.Lines = append(ret.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Workflows.WithLabelValues("return").Inc()
	return ret, nil
}

// ApproveReturn transitions every referenced unit back to the target
// warehouse, AVAILABLE for ordinary returns and FAULTY for faulty ones, and
// clears their ticket ids. A unit that left the technician since submission
// fails the approval as a state conflict; nothing is applied partially.
func (r *Repo) ApproveReturn(ctx context.Context, scope OrgScope, returnID string) (*models.Return, error) {
	var ret *models.Return
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rc, err := lockPendingReturn(tx, scope, returnID)
		if err != nil {
			return err
		}

		status := models.UnitAvailable
		if rc.Reason == models.ReturnReasonFaulty {
			status = models.UnitFaulty
		}
		to := UnitState{Status: status, LocationType: models.LocWarehouse, LocationID: &rc.TargetAreaID}

		for _, line := range rc.Lines {
			for _, unitID := range line.UnitIDs {
				var u models.Unit
				if err := tx.First(&u, "id = ? AND active", unitID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: unit %s", ErrNotFound, unitID)
					}
					return err
				}
				if u.LocationType != models.LocPerson || u.LocationID == nil || *u.LocationID != rc.FromUserID {
					return fmt.Errorf("%w: unit %s is no longer held by the technician", ErrStateConflict, unitID)
				}
				if err := transitionUnit(tx, unitID, stateOf(&u), to, nil, true); err != nil {
					if errors.Is(err, ErrStaleState) {
						return fmt.Errorf("%w: unit %s moved during approval", ErrStateConflict, unitID)
					}
					return err
				}
			}
		}

		return decideReturn(tx, rc, models.ReturnApproved, scope.UserID, &ret)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// RejectReturn closes a pending return without any ledger effect.
func (r *Repo) RejectReturn(ctx context.Context, scope OrgScope, returnID string) (*models.Return, error) {
	var ret *models.Return
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rc, err := lockPendingReturn(tx, scope, returnID)
		if err != nil {
			return err
		}
		return decideReturn(tx, rc, models.ReturnRejected, scope.UserID, &ret)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// GetReturn loads a return with its lines.
func (r *Repo) GetReturn(ctx context.Context, scope OrgScope, id string) (*models.Return, error) {
	var rc models.Return
	err := scope.Apply(r.DB.WithContext(ctx).Preload("Lines"), "org_id").
		First(&rc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func lockPendingReturn(tx *gorm.DB, scope OrgScope, returnID string) (*models.Return, error) {
	var rc models.Return
	err := scope.Apply(tx.Preload("Lines"), "org_id").
		First(&rc, "id = ?", returnID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: return %s", ErrNotFound, returnID)
	}
	if err != nil {
		return nil, err
	}
	if rc.Status != models.ReturnPending {
		return nil, fmt.Errorf("%w: return %s is already %s", ErrStateConflict, returnID, rc.Status)
	}
	return &rc, nil
}

// decideReturn flips the workflow's own status with a guarded UPDATE so two
// concurrent decisions cannot both win.
func decideReturn(tx *gorm.DB, rc *models.Return, status, decidedBy string, out **models.Return) error {
	now := time.Now().UTC()
	res := tx.Model(&models.Return{}).
		Where("id = ? AND status = ?", rc.ID, models.ReturnPending).
		Updates(map[string]any{"status": status, "decided_by": decidedBy, "decided_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: return %s already decided", ErrStateConflict, rc.ID)
	}
	rc.Status = status
	rc.DecidedBy = &decidedBy
	rc.DecidedAt = &now
	*out = rc
	return nil
}
