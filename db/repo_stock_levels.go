package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fieldstock/models"
)

// StockLevelFilter narrows the stock level report. IncludeDraftReceipts
// preserves the legacy convention of counting DRAFT receipt lines as stock
// even though their ledger units do not exist yet; it is off by default and
// only enabled through explicit configuration.
type StockLevelFilter struct {
	MaterialID           *string
	StockAreaID          *string
	From                 *time.Time
	To                   *time.Time
	IncludeDraftReceipts bool
}

// StockLevel is the derived on-hand quantity for one (material, stock area)
// pair, recomputed from the four movement streams rather than read off the
// ledger. It serves dashboards and doubles as a consistency cross-check.
type StockLevel struct {
	MaterialID     string          `json:"materialId"`
	MaterialCode   string          `json:"materialCode"`
	MaterialName   string          `json:"materialName"`
	StockAreaID    string          `json:"stockAreaId"`
	StockAreaName  string          `json:"stockAreaName"`
	Inward         int             `json:"inward"`
	TransferredOut int             `json:"transferredOut"`
	TransferredIn  int             `json:"transferredIn"`
	Consumed       int             `json:"consumed"`
	Current        int             `json:"current"`
	InwardValue    decimal.Decimal `json:"inwardValue"`
}

type levelKey struct{ materialID, areaID string }

// GetStockLevels computes, per (material, area):
// inward - transferred out + transferred in - consumed.
// A row that fails to scan degrades that entry with a warning instead of
// failing the whole report.
func (r *Repo) GetStockLevels(ctx context.Context, scope OrgScope, f StockLevelFilter) ([]StockLevel, error) {
	acc := map[levelKey]*StockLevel{}
	get := func(materialID, areaID string) *StockLevel {
		k := levelKey{materialID, areaID}
		lv, ok := acc[k]
		if !ok {
			lv = &StockLevel{MaterialID: materialID, StockAreaID: areaID, InwardValue: decimal.Zero}
			acc[k] = lv
		}
		return lv
	}

	// Inward stream: line-level so unit costs can be summed exactly.
	receiptStatuses := []string{models.ReceiptCompleted}
	if f.IncludeDraftReceipts {
		receiptStatuses = append(receiptStatuses, models.ReceiptDraft)
	}
	inward := scope.Apply(r.DB.WithContext(ctx).Model(&models.ReceiptLine{}), "h.org_id").
		Select("h.stock_area_id, fs_receipt_lines.material_id, fs_receipt_lines.quantity, fs_receipt_lines.unit_cost").
		Joins(fmt.Sprintf("JOIN %s h ON h.id = fs_receipt_lines.receipt_id", models.ReceiptTable)).
		Where("h.status IN ?", receiptStatuses)
	inward = applyLevelFilter(inward, f, "h.stock_area_id", "fs_receipt_lines.material_id", "h.created_at")
	if err := r.scanRows(inward, "inward", func(rows *sql.Rows) error {
		var (
			areaID, materialID string
			qty                int
			unitCost           decimal.Decimal
		)
		if err := rows.Scan(&areaID, &materialID, &qty, &unitCost); err != nil {
			return err
		}
		lv := get(materialID, areaID)
		lv.Inward += qty
		lv.InwardValue = lv.InwardValue.Add(unitCost.Mul(decimal.NewFromInt(int64(qty))))
		return nil
	}); err != nil {
		return nil, err
	}

	// Transfer-out stream.
	out := scope.Apply(r.DB.WithContext(ctx).Model(&models.TransferLine{}), "h.org_id").
		Select("h.source_area_id, fs_transfer_lines.material_id, SUM(fs_transfer_lines.quantity)").
		Joins(fmt.Sprintf("JOIN %s h ON h.id = fs_transfer_lines.transfer_id", models.TransferTable)).
		Group("h.source_area_id, fs_transfer_lines.material_id")
	out = applyLevelFilter(out, f, "h.source_area_id", "fs_transfer_lines.material_id", "h.created_at")
	if err := r.scanSums(out, "transfer-out", func(areaID, materialID string, qty int) {
		get(materialID, areaID).TransferredOut += qty
	}); err != nil {
		return nil, err
	}

	// Transfer-in stream: warehouse destinations only; person stock is not a
	// stock area.
	in := scope.Apply(r.DB.WithContext(ctx).Model(&models.TransferLine{}), "h.org_id").
		Select("h.dest_area_id, fs_transfer_lines.material_id, SUM(fs_transfer_lines.quantity)").
		Joins(fmt.Sprintf("JOIN %s h ON h.id = fs_transfer_lines.transfer_id", models.TransferTable)).
		Where("h.dest_kind = ?", models.DestWarehouse).
		Group("h.dest_area_id, fs_transfer_lines.material_id")
	in = applyLevelFilter(in, f, "h.dest_area_id", "fs_transfer_lines.material_id", "h.created_at")
	if err := r.scanSums(in, "transfer-in", func(areaID, materialID string, qty int) {
		get(materialID, areaID).TransferredIn += qty
	}); err != nil {
		return nil, err
	}

	// Consumption stream: only the part actually pulled off the area; the
	// person-stock part already left the area through a transfer.
	cons := scope.Apply(r.DB.WithContext(ctx).Model(&models.ConsumptionLine{}), "h.org_id").
		Select("h.stock_area_id, fs_consumption_lines.material_id, SUM(fs_consumption_lines.warehouse_quantity)").
		Joins(fmt.Sprintf("JOIN %s h ON h.id = fs_consumption_lines.consumption_id", models.ConsumptionTable)).
		Where("h.stock_area_id IS NOT NULL").
		Group("h.stock_area_id, fs_consumption_lines.material_id")
	cons = applyLevelFilter(cons, f, "h.stock_area_id", "fs_consumption_lines.material_id", "h.created_at")
	if err := r.scanSums(cons, "consumption", func(areaID, materialID string, qty int) {
		get(materialID, areaID).Consumed += qty
	}); err != nil {
		return nil, err
	}

	levels := make([]StockLevel, 0, len(acc))
	for _, lv := range acc {
		lv.Current = lv.Inward - lv.TransferredOut + lv.TransferredIn - lv.Consumed
		levels = append(levels, *lv)
	}
	if err := r.decorateLevels(ctx, levels); err != nil {
		return nil, err
	}
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].MaterialCode != levels[j].MaterialCode {
			return levels[i].MaterialCode < levels[j].MaterialCode
		}
		return levels[i].StockAreaName < levels[j].StockAreaName
	})
	return levels, nil
}

func applyLevelFilter(q *gorm.DB, f StockLevelFilter, areaCol, materialCol, dateCol string) *gorm.DB {
	if f.MaterialID != nil {
		q = q.Where(materialCol+" = ?", *f.MaterialID)
	}
	if f.StockAreaID != nil {
		q = q.Where(areaCol+" = ?", *f.StockAreaID)
	}
	if f.From != nil {
		q = q.Where(dateCol+" >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where(dateCol+" < ?", *f.To)
	}
	return q
}

// scanRows iterates a stream query, degrading bad rows to warnings.
func (r *Repo) scanRows(q *gorm.DB, stream string, scan func(*sql.Rows) error) error {
	rows, err := q.Rows()
	if err != nil {
		return fmt.Errorf("stock levels %s stream: %w", stream, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			r.Log.Warn("stock level row skipped", "stream", stream, "err", err)
		}
	}
	return rows.Err()
}

func (r *Repo) scanSums(q *gorm.DB, stream string, add func(areaID, materialID string, qty int)) error {
	return r.scanRows(q, stream, func(rows *sql.Rows) error {
		var (
			areaID, materialID string
			qty                int
		)
		if err := rows.Scan(&areaID, &materialID, &qty); err != nil {
			return err
		}
		add(areaID, materialID, qty)
		return nil
	})
}

// decorateLevels fills in material and area display fields.
func (r *Repo) decorateLevels(ctx context.Context, levels []StockLevel) error {
	if len(levels) == 0 {
		return nil
	}
	matIDs := map[string]bool{}
	areaIDs := map[string]bool{}
	for _, lv := range levels {
		matIDs[lv.MaterialID] = true
		areaIDs[lv.StockAreaID] = true
	}

	var mats []models.Material
	if err := r.DB.WithContext(ctx).Where("id IN ?", keys(matIDs)).Find(&mats).Error; err != nil {
		return err
	}
	var areas []models.StockArea
	if err := r.DB.WithContext(ctx).Where("id IN ?", keys(areaIDs)).Find(&areas).Error; err != nil {
		return err
	}

	matByID := map[string]models.Material{}
	for _, m := range mats {
		matByID[m.ID] = m
	}
	areaByID := map[string]models.StockArea{}
	for _, a := range areas {
		areaByID[a.ID] = a
	}
	for i := range levels {
		if m, ok := matByID[levels[i].MaterialID]; ok {
			levels[i].MaterialCode = m.Code
			levels[i].MaterialName = m.Name
		}
		if a, ok := areaByID[levels[i].StockAreaID]; ok {
			levels[i].StockAreaName = a.Name
		}
	}
	return nil
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
