package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fieldstock/metrics"
	"fieldstock/models"
)

type ReceiptLineInput struct {
	MaterialID    string          `json:"materialId" binding:"required"`
	Quantity      int             `json:"quantity"`
	SerialNumbers []string        `json:"serialNumbers"`
	MACAddresses  []string        `json:"macAddresses"`
	UnitCost      decimal.Decimal `json:"unitCost"`
}

type SubmitReceiptInput struct {
	StockAreaID string             `json:"stockAreaId" binding:"required"`
	SupplierID  *string            `json:"supplierId"`
	Note        string             `json:"note"`
	DocumentURL string             `json:"documentUrl"`
	Lines       []ReceiptLineInput `json:"lines" binding:"required"`
}

// SubmitReceipt records an inward receipt in DRAFT status. No ledger rows
// exist until the receipt is completed.
func (r *Repo) SubmitReceipt(ctx context.Context, scope OrgScope, in SubmitReceiptInput) (*models.Receipt, error) {
	if len(in.Lines) == 0 {
		return nil, invalid("lines", "at least one line required")
	}

	var rec *models.Receipt
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := getActiveStockArea(tx, scope, "stockAreaId", in.StockAreaID); err != nil {
			return err
		}

		lines := make([]models.ReceiptLine, 0, len(in.Lines))
		for i, li := range in.Lines {
			qty, serials, macs, err := normalizeLine(tx, scope, li.MaterialID, li.Quantity, li.SerialNumbers, li.MACAddresses)
			if err != nil {
				return err
			}
			if li.UnitCost.IsNegative() {
				return invalid("unitCost", "must not be negative")
			}
			lines = append(lines, models.ReceiptLine{
				ID:            uuid.NewString(),
				LineNo:        i + 1,
				MaterialID:    li.MaterialID,
				Quantity:      qty,
				SerialNumbers: serials,
				MACAddresses:  macs,
				UnitCost:      li.UnitCost,
			})
		}

		slip, err := nextSlipNo(tx, &models.Receipt{}, scope, "GRN", time.Now().UTC())
		if err != nil {
			return err
		}
		rec = &models.Receipt{
			ID:          uuid.NewString(),
			OrgID:       scope.OrgID,
			SlipNo:      slip,
			StockAreaID: in.StockAreaID,
			SupplierID:  in.SupplierID,
			Status:      models.ReceiptDraft,
			Note:        in.Note,
			DocumentURL: in.DocumentURL,
			CreatedBy:   scope.UserID,
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ReceiptID = rec.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return err
		}
		rec.Lines = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.Workflows.WithLabelValues("receipt").Inc()
	return rec, nil
}

// CompleteReceipt transitions a receipt to COMPLETED and materializes its
// ledger units. Completion is idempotent per line: units already created for
// a line (counted by provenance) are never duplicated, so re-running a
// partially applied or repeated completion converges on the same unit set.
// Concurrent completions serialize on the header row, not on the counts.
func (r *Repo) CompleteReceipt(ctx context.Context, scope OrgScope, receiptID string) (*models.Receipt, []string, error) {
	var (
		rec     *models.Receipt
		unitIDs []string
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rc models.Receipt
		err := scope.Apply(tx.Preload("Lines"), "org_id").
			First(&rc, "id = ?", receiptID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: receipt %s", ErrNotFound, receiptID)
		}
		if err != nil {
			return err
		}

		// Flip the header first. The guarded UPDATE takes the header's row
		// lock, so a concurrent completion blocks here until this transaction
		// commits and then counts the winner's units instead of re-creating
		// them.
		now := time.Now().UTC()
		res := tx.Model(&models.Receipt{}).
			Where("id = ? AND status <> ?", rc.ID, models.ReceiptCompleted).
			Updates(map[string]any{"status": models.ReceiptCompleted, "completed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			rc.Status = models.ReceiptCompleted
			rc.CompletedAt = &now
		} else if rc.Status != models.ReceiptCompleted {
			// A rival finished while we were loading; refresh the header.
			if err := tx.First(&rc, "id = ?", rc.ID).Error; err != nil {
				return err
			}
		}

		for _, line := range rc.Lines {
			var existing int64
			if err := tx.Model(&models.Unit{}).
				Where("receipt_line_id = ?", line.ID).
				Count(&existing).Error; err != nil {
				return err
			}
			missing := line.Quantity - int(existing)
			if missing <= 0 {
				continue
			}
			// Creation order is deterministic, so skipping the first
			// `existing` identities resumes exactly where the last run stopped.
			serials := tail(line.SerialNumbers, int(existing))
			macs := tail(line.MACAddresses, int(existing))
			ids, err := createUnits(tx, scope, line.MaterialID, rc.StockAreaID, line.ID, missing, serials, macs)
			if err != nil {
				return err
			}
			unitIDs = append(unitIDs, ids...)
		}

		rec = &rc
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return rec, unitIDs, nil
}

// GetReceipt loads a receipt with its lines.
func (r *Repo) GetReceipt(ctx context.Context, scope OrgScope, id string) (*models.Receipt, error) {
	var rc models.Receipt
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

// normalizeLine validates a workflow line's material and quantity/serial
// shape; when serials are given they fix the quantity.
func normalizeLine(tx *gorm.DB, scope OrgScope, materialID string, qty int, serials, macs []string) (int, []string, []string, error) {
	if _, err := getActiveMaterial(tx, scope, materialID); err != nil {
		return 0, nil, nil, err
	}
	if len(serials) > 0 {
		if qty != 0 && qty != len(serials) {
			return 0, nil, nil, invalid("quantity", "must match number of serials")
		}
		qty = len(serials)
		if len(macs) > 0 && len(macs) != qty {
			return 0, nil, nil, invalid("macAddresses", "must match number of serials")
		}
		seen := map[string]bool{}
		for _, s := range serials {
			if s == "" {
				return 0, nil, nil, invalid("serialNumbers", "empty serial")
			}
			if seen[s] {
				return 0, nil, nil, invalid("serialNumbers", "duplicate serial "+s)
			}
			seen[s] = true
		}
		return qty, serials, macs, nil
	}
	if len(macs) > 0 {
		if qty != 0 && qty != len(macs) {
			return 0, nil, nil, invalid("quantity", "must match number of MAC addresses")
		}
		qty = len(macs)
		return qty, nil, macs, nil
	}
	if qty <= 0 {
		return 0, nil, nil, invalid("quantity", "must be positive")
	}
	return qty, nil, nil, nil
}

func tail(ss []string, n int) []string {
	if n >= len(ss) {
		return nil
	}
	return ss[n:]
}
