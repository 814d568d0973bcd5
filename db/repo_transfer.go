package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldstock/metrics"
	"fieldstock/models"
)

// Destination is the transfer target: another stock area or a technician.
type Destination struct {
	Kind   string  `json:"kind" binding:"required"`
	AreaID *string `json:"areaId"`
	UserID *string `json:"userId"`
}

type TransferLineInput struct {
	MaterialID    string   `json:"materialId" binding:"required"`
	Quantity      int      `json:"quantity"`
	SerialNumbers []string `json:"serialNumbers"`
}

type SubmitTransferInput struct {
	SourceAreaID string              `json:"sourceAreaId" binding:"required"`
	Dest         Destination         `json:"dest" binding:"required"`
	TicketID     *string             `json:"ticketId"`
	Note         string              `json:"note"`
	Lines        []TransferLineInput `json:"lines" binding:"required"`
}

// SubmitTransfer moves units out of the source area in one transaction.
// Partial transfer is not permitted: a shortfall on any line rolls the whole
// workflow back.
func (r *Repo) SubmitTransfer(ctx context.Context, scope OrgScope, in SubmitTransferInput) (*models.Transfer, error) {
	if len(in.Lines) == 0 {
		return nil, invalid("lines", "at least one line required")
	}

	var tr *models.Transfer
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getActiveStockArea(tx, scope, "sourceAreaId", in.SourceAreaID); err != nil {
			return err
		}

		// Destination-area column must stay non-null; for person transfers it
		// keeps the source area (where the stock administratively belongs).
		destAreaID := in.SourceAreaID
		var to UnitState
		switch in.Dest.Kind {
		case models.DestWarehouse:
			if in.Dest.AreaID == nil {
				return invalid("dest.areaId", "required for warehouse destination")
			}
			if *in.Dest.AreaID == in.SourceAreaID {
				return invalid("dest.areaId", "cannot transfer to the source area")
			}
			if _, err := getActiveStockArea(tx, scope, "dest.areaId", *in.Dest.AreaID); err != nil {
				return err
			}
			destAreaID = *in.Dest.AreaID
			to = UnitState{Status: models.UnitAvailable, LocationType: models.LocWarehouse, LocationID: in.Dest.AreaID}
		case models.DestPerson:
			if in.Dest.UserID == nil {
				return invalid("dest.userId", "required for person destination")
			}
			if _, err := getActiveUser(tx, scope, "dest.userId", *in.Dest.UserID); err != nil {
				return err
			}
			to = UnitState{Status: models.UnitInTransit, LocationType: models.LocPerson, LocationID: in.Dest.UserID}
		default:
			return invalid("dest.kind", "must be warehouse or person")
		}

		var ticket *string
		if in.Dest.Kind == models.DestPerson {
			ticket = in.TicketID
		}

		slip, err := nextSlipNo(tx, &models.Transfer{}, scope, "ST", time.Now().UTC())
		if err != nil {
			return err
		}
		tr = &models.Transfer{
			ID:           uuid.NewString(),
			OrgID:        scope.OrgID,
			SlipNo:       slip,
			SourceAreaID: in.SourceAreaID,
			DestKind:     in.Dest.Kind,
			DestAreaID:   destAreaID,
			DestUserID:   in.Dest.UserID,
			TicketID:     in.TicketID,
			Note:         in.Note,
			CreatedBy:    scope.UserID,
		}
		if err := tx.Create(tr).Error; err != nil {
			return err
		}

		source := LocationFilter{Type: models.LocWarehouse, ID: &in.SourceAreaID}
		for i, li := range in.Lines {
			qty, serials, _, err := normalizeLine(tx, scope, li.MaterialID, li.Quantity, li.SerialNumbers, nil)
			if err != nil {
				return err
			}

			var unitIDs []string
			if len(serials) > 0 {
				for _, serial := range serials {
					id, err := allocateSerial(tx, scope, serial, li.MaterialID, source, nil, to, ticket, false)
					if err != nil {
						return err
					}
					unitIDs = append(unitIDs, id)
				}
			} else {
				unitIDs, err = allocateBulk(tx, scope, li.MaterialID, source,
					[]string{models.UnitAvailable}, qty, to, ticket, false, false)
				if err != nil {
					return err
				}
			}

			line := models.TransferLine{
				ID:            uuid.NewString(),
				TransferID:    tr.ID,
				LineNo:        i + 1,
				MaterialID:    li.MaterialID,
				Quantity:      qty,
				SerialNumbers: serials,
				UnitIDs:       unitIDs,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			tr.Lines = append(tr.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Workflows.WithLabelValues("transfer").Inc()
	return tr, nil
}
