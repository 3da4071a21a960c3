package service

import (
	"sort"
	"strings"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
)

// ReconcileRow compares one part across the shipment and the memo.
type ReconcileRow struct {
	Key         string  `json:"key"`
	PartNo      string  `json:"partNo"`
	PartName    string  `json:"partName"`
	ShipmentQty float64 `json:"shipmentQty"`
	MemoQty     float64 `json:"memoQty"`
	Match       bool    `json:"match"`
}

// ReconcileResult is the per-part diff between shipment items and memo items.
type ReconcileResult struct {
	Rows    []ReconcileRow `json:"rows"`
	IsMatch bool           `json:"isMatch"`
}

// FirstMismatch returns the first row whose quantities differ.
func (r *ReconcileResult) FirstMismatch() (ReconcileRow, bool) {
	for _, row := range r.Rows {
		if !row.Match {
			return row, true
		}
	}
	return ReconcileRow{}, false
}

// Mismatches returns the rows whose quantities differ.
func (r *ReconcileResult) Mismatches() []ReconcileRow {
	var out []ReconcileRow
	for _, row := range r.Rows {
		if !row.Match {
			out = append(out, row)
		}
	}
	return out
}

// ReconcileKey normalizes a part into its comparison key.
func ReconcileKey(partNo, partName string) string {
	return strings.ToLower(strings.TrimSpace(partNo)) + "|" + strings.ToLower(strings.TrimSpace(partName))
}

// Reconcile sums quantities per part on each side and compares them.
// Rows are ordered by key. Both lists empty is not a match.
func Reconcile(shipmentItems []entity.ShipmentItem, memoItems []entity.ManualItem) *ReconcileResult {
	rows := make(map[string]*ReconcileRow)
	row := func(partNo, partName string) *ReconcileRow {
		key := ReconcileKey(partNo, partName)
		r, ok := rows[key]
		if !ok {
			r = &ReconcileRow{
				Key:      key,
				PartNo:   strings.TrimSpace(partNo),
				PartName: strings.TrimSpace(partName),
			}
			rows[key] = r
		}
		return r
	}

	for _, it := range shipmentItems {
		row(it.PartNo, it.PartName).ShipmentQty += it.Quantity
	}
	for _, it := range memoItems {
		row(it.PartNo, it.PartName).MemoQty += it.Qty.Float64()
	}

	result := &ReconcileResult{Rows: make([]ReconcileRow, 0, len(rows))}
	for _, r := range rows {
		r.Match = r.ShipmentQty == r.MemoQty
		result.Rows = append(result.Rows, *r)
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		return result.Rows[i].Key < result.Rows[j].Key
	})

	result.IsMatch = len(result.Rows) > 0
	for _, r := range result.Rows {
		if !r.Match {
			result.IsMatch = false
			break
		}
	}
	return result
}
