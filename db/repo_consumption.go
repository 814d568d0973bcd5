package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldstock/metrics"
	"fieldstock/models"
)

type ConsumptionLineInput struct {
	MaterialID    string   `json:"materialId" binding:"required"`
	Quantity      int      `json:"quantity"`
	SerialNumbers []string `json:"serialNumbers"`
}

type SubmitConsumptionInput struct {
	TicketID    string                 `json:"ticketId" binding:"required"`
	FromUserID  *string                `json:"fromUserId"`
	StockAreaID *string                `json:"stockAreaId"`
	Note        string                 `json:"note"`
	Lines       []ConsumptionLineInput `json:"lines" binding:"required"`
}

// SubmitConsumption consumes units against a service ticket. Bulk quantities
// drain the technician's person stock first and fall back to the stated
// warehouse for the remainder; with no stated area the fallback area is
// resolved from available stock and recorded on the header. Explicit serials
// must sit in the stated source. All-or-nothing, same as transfers.
func (r *Repo) SubmitConsumption(ctx context.Context, scope OrgScope, in SubmitConsumptionInput) (*models.Consumption, error) {
	if len(in.Lines) == 0 {
		return nil, invalid("lines", "at least one line required")
	}
	if in.FromUserID == nil && in.StockAreaID == nil {
		return nil, invalid("fromUserId", "a person or a stock area source is required")
	}

	consumed := UnitState{Status: models.UnitConsumed, LocationType: models.LocConsumed, LocationID: nil}

	var cn *models.Consumption
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.FromUserID != nil {
			if _, err := getActiveUser(tx, scope, "fromUserId", *in.FromUserID); err != nil {
				return err
			}
		}
		if in.StockAreaID != nil {
			if _, err := getActiveStockArea(tx, scope, "stockAreaId", *in.StockAreaID); err != nil {
				return err
			}
		}

		slip, err := nextSlipNo(tx, &models.Consumption{}, scope, "CN", time.Now().UTC())
		if err != nil {
			return err
		}
		cn = &models.Consumption{
			ID:          uuid.NewString(),
			OrgID:       scope.OrgID,
			SlipNo:      slip,
			TicketID:    in.TicketID,
			FromUserID:  in.FromUserID,
			StockAreaID: in.StockAreaID,
			Note:        in.Note,
			CreatedBy:   scope.UserID,
		}
		if err := tx.Create(cn).Error; err != nil {
			return err
		}

		// The warehouse fallback always draws from one concrete area; when
		// the caller named none it is resolved from the first line that needs
		// it and written back to the header, so the consumed quantity stays
		// attributable in the stock level streams.
		fallbackArea := in.StockAreaID

		for i, li := range in.Lines {
			qty, serials, _, err := normalizeLine(tx, scope, li.MaterialID, li.Quantity, li.SerialNumbers, nil)
			if err != nil {
				return err
			}

			var (
				unitIDs       []string
				warehouseQty  int
				areaForSerial = in.StockAreaID
			)
			if len(serials) > 0 {
				for _, serial := range serials {
					var id string
					if in.FromUserID != nil {
						// Person stock is scoped to the ticket the unit was
						// handed out against.
						id, err = allocateSerial(tx, scope, serial, li.MaterialID,
							LocationFilter{Type: models.LocPerson, ID: in.FromUserID},
							&in.TicketID, consumed, nil, false)
					} else {
						id, err = allocateSerial(tx, scope, serial, li.MaterialID,
							LocationFilter{Type: models.LocWarehouse, ID: areaForSerial},
							nil, consumed, &in.TicketID, false)
						if err == nil {
							warehouseQty++
						}
					}
					if err != nil {
						return err
					}
					unitIDs = append(unitIDs, id)
				}
			} else {
				remaining := qty
				if in.FromUserID != nil {
					// Person-held units keep their ticket id for traceability.
					ids, err := allocateBulk(tx, scope, li.MaterialID,
						LocationFilter{Type: models.LocPerson, ID: in.FromUserID},
						personHeldStatuses, remaining, consumed, nil, false, true)
					if err != nil {
						return err
					}
					unitIDs = append(unitIDs, ids...)
					remaining -= len(ids)
				}
				if remaining > 0 {
					if fallbackArea == nil {
						oldest, err := findAvailable(tx, scope, li.MaterialID,
							LocationFilter{Type: models.LocWarehouse},
							[]string{models.UnitAvailable}, true, 1)
						if err != nil {
							return err
						}
						if len(oldest) == 0 {
							metrics.InsufficientStock.Inc()
							return fmt.Errorf("%w: material %s short by %d", ErrInsufficientStock, li.MaterialID, remaining)
						}
						fallbackArea = oldest[0].LocationID
						if err := tx.Model(&models.Consumption{}).
							Where("id = ?", cn.ID).
							Update("stock_area_id", fallbackArea).Error; err != nil {
							return err
						}
						cn.StockAreaID = fallbackArea
					}
					// Warehouse-pulled units get stamped with this ticket.
					ids, err := allocateBulk(tx, scope, li.MaterialID,
						LocationFilter{Type: models.LocWarehouse, ID: fallbackArea},
						[]string{models.UnitAvailable}, remaining, consumed, &in.TicketID, false, false)
					if err != nil {
						return err
					}
					unitIDs = append(unitIDs, ids...)
					warehouseQty += len(ids)
				}
			}

			line := models.ConsumptionLine{
				ID:                uuid.NewString(),
				ConsumptionID:     cn.ID,
				LineNo:            i + 1,
				MaterialID:        li.MaterialID,
				Quantity:          qty,
				SerialNumbers:     serials,
				UnitIDs:           unitIDs,
				WarehouseQuantity: warehouseQty,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			cn.Lines = append(cn.Lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Workflows.WithLabelValues("consumption").Inc()
	return cn, nil
}
