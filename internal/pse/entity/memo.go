package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Memo is the pre-shipment export memo attached to a shipment. A shipment
// has at most one memo row.
type Memo struct {
	ID              string        `json:"id" gorm:"primaryKey;size:36"`
	ShipmentID      string        `json:"shipmentId" gorm:"size:36;not null;uniqueIndex"`
	MemoNo          *string       `json:"memoNo" gorm:"size:100"`
	GoodsType       *string       `json:"goodsType" gorm:"size:100"`
	ShipmentType    *string       `json:"shipmentType" gorm:"size:100"`
	DangerLevel     *string       `json:"dangerLevel" gorm:"size:50"`
	SpecialPermit   bool          `json:"specialPermit"`
	InvoiceType     *string       `json:"invoiceType" gorm:"size:100"`
	Purpose         *string       `json:"purpose" gorm:"size:200"`
	SapInfo         *string       `json:"sapInfo" gorm:"size:200"`
	TpNo            *string       `json:"tpNo" gorm:"size:100"`
	TpDate          *time.Time    `json:"tpDate"`
	PackingDetails  *string       `json:"packingDetails" gorm:"type:text"`
	MemoGoodsInfo   *string       `json:"memoGoodsInfo" gorm:"type:text"`
	ManualItems     *MemoSnapshot `json:"manualItems" gorm:"type:jsonb"`
	PortOfDischarge *string       `json:"portOfDischarge" gorm:"size:200"`
	ShipmentMethod  *string       `json:"shipmentMethod" gorm:"size:100"`
	PaymentMethod   *string       `json:"paymentMethod" gorm:"size:100"`
	ExportType      *string       `json:"exportType" gorm:"size:100"`
	EtdShipment     *time.Time    `json:"etdShipment"`
	Status          string        `json:"status" gorm:"size:20;not null;default:'DRAFT'"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (Memo) TableName() string {
	return "shipment_memos"
}

// Memo status
const (
	MemoStatusDraft     = "DRAFT"
	MemoStatusPublished = "PUBLISHED"
)

// MemoSnapshotVersion is written into every stored snapshot.
const MemoSnapshotVersion = 1

// MemoSnapshot is the stored form of a memo's manual items together with the
// raw party data the user entered.
type MemoSnapshot struct {
	Version    int          `json:"version"`
	Items      []ManualItem `json:"items"`
	OrderBy    *Party       `json:"orderBy,omitempty"`
	DeliveryTo *Party       `json:"deliveryTo,omitempty"`
}

// NewMemoSnapshot returns nil when there is nothing to store.
func NewMemoSnapshot(items []ManualItem, orderBy, deliveryTo *Party) *MemoSnapshot {
	if items == nil && orderBy == nil && deliveryTo == nil {
		return nil
	}
	if items == nil {
		items = []ManualItem{}
	}
	return &MemoSnapshot{
		Version:    MemoSnapshotVersion,
		Items:      items,
		OrderBy:    orderBy,
		DeliveryTo: deliveryTo,
	}
}

func (m MemoSnapshot) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan accepts the versioned object, an unversioned {items,...} object and a
// bare item array. NULL reads as an empty snapshot.
func (m *MemoSnapshot) Scan(value interface{}) error {
	raw, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("failed to scan MemoSnapshot: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	*m = MemoSnapshot{Version: MemoSnapshotVersion}
	if len(raw) != 0 {
		if raw[0] == '[' {
			err = json.Unmarshal(raw, &m.Items)
		} else {
			err = json.Unmarshal(raw, m)
		}
		if err != nil {
			return err
		}
	}
	if m.Version == 0 {
		m.Version = MemoSnapshotVersion
	}
	if m.Items == nil {
		m.Items = []ManualItem{}
	}
	return nil
}

// ManualItem is a memo line as typed or edited by the user.
type ManualItem struct {
	No             int        `json:"no,omitempty"`
	BoxNo          string     `json:"boxNo,omitempty"`
	PartNo         string     `json:"partNo"`
	PartName       string     `json:"partName"`
	Qty            FlexFloat  `json:"qty"`
	PricePerPc     *FlexFloat `json:"pricePerPc,omitempty"`
	TotalAmount    *FlexFloat `json:"totalAmount,omitempty"`
	SpecialPacking string     `json:"specialPacking,omitempty"`
	Remark         string     `json:"remark,omitempty"`
}
