package service

import (
	"strings"
	"time"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/google/uuid"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"02/01/2006",
	"01/2006",
	"2006/01",
	"January 2006",
	"Jan 2006",
	"Jan-2006",
	"Jan-06",
}

// parseDate parses an ISO-8601 date or one of the month formats found in
// shipment spreadsheets. An empty string is nil.
func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, NewValidationError("Validation failed", field+" must be an ISO-8601 date")
}

func parseDatePtr(field string, value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	return parseDate(field, *value)
}

// itemsFromManual maps memo lines onto shipment items. Lines without a
// number are numbered by position.
func itemsFromManual(manual []entity.ManualItem) []entity.ShipmentItem {
	items := make([]entity.ShipmentItem, 0, len(manual))
	for i, it := range manual {
		no := it.No
		if no == 0 {
			no = i + 1
		}
		items = append(items, entity.ShipmentItem{
			ID:             uuid.New().String(),
			No:             no,
			BoxNo:          it.BoxNo,
			PartNo:         it.PartNo,
			PartName:       it.PartName,
			Quantity:       it.Qty.Float64(),
			Remark:         optString(it.Remark),
			PricePerPcs:    entity.FloatPtr(it.PricePerPc),
			TotalAmount:    entity.FloatPtr(it.TotalAmount),
			SpecialPacking: optString(it.SpecialPacking),
		})
	}
	return items
}

func itemsFromRequest(reqItems []ShipmentItemRequest) []entity.ShipmentItem {
	items := make([]entity.ShipmentItem, 0, len(reqItems))
	for i, it := range reqItems {
		no := it.No
		if no == 0 {
			no = i + 1
		}
		items = append(items, entity.ShipmentItem{
			ID:             uuid.New().String(),
			No:             no,
			BoxNo:          strings.TrimSpace(it.BoxNo),
			PartNo:         strings.TrimSpace(it.PartNo),
			PartName:       strings.TrimSpace(it.PartName),
			Quantity:       it.Quantity.Float64(),
			Remark:         it.Remark,
			PricePerPcs:    entity.FloatPtr(it.PricePerPcs),
			TotalAmount:    entity.FloatPtr(it.TotalAmount),
			SpecialPacking: it.SpecialPacking,
		})
	}
	return items
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
