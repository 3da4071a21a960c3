package entity

import "time"

// Shipment is one export shipment record: header, packed items, the company
// references and a mirror of the last published memo.
type Shipment struct {
	ID              string      `json:"id" gorm:"primaryKey;size:36"`
	ShippingMark    string      `json:"shippingMark" gorm:"size:200;not null"`
	OrderNo         string      `json:"orderNo" gorm:"size:100;not null;index"`
	CaseNo          string      `json:"caseNo" gorm:"size:100;not null"`
	Destination     string      `json:"destination" gorm:"size:200;not null"`
	Model           string      `json:"model" gorm:"size:100;not null"`
	ProductionMonth *time.Time  `json:"productionMonth"`
	CaseSize        string      `json:"caseSize" gorm:"size:100"`
	GrossWeight     float64     `json:"grossWeight"`
	NetWeight       float64     `json:"netWeight"`
	RackNo          RackNumbers `json:"rackNo" gorm:"type:text"`
	Status          string      `json:"status" gorm:"size:20;not null;default:'DRAFT';index"`

	// memo mirror, written on publish
	MemoNo          *string    `json:"memoNo" gorm:"size:100;index"`
	GoodsType       *string    `json:"goodsType" gorm:"size:100"`
	ShipmentType    *string    `json:"shipmentType" gorm:"size:100"`
	DangerLevel     *string    `json:"dangerLevel" gorm:"size:50"`
	SpecialPermit   *bool      `json:"specialPermit"`
	InvoiceType     *string    `json:"invoiceType" gorm:"size:100"`
	Purpose         *string    `json:"purpose" gorm:"size:200"`
	SapInfo         *string    `json:"sapInfo" gorm:"size:200"`
	TpNo            *string    `json:"tpNo" gorm:"size:100"`
	TpDate          *time.Time `json:"tpDate"`
	PackingDetails  *string    `json:"packingDetails" gorm:"type:text"`
	MemoGoodsInfo   *string    `json:"memoGoodsInfo" gorm:"type:text"`
	PortOfDischarge *string    `json:"portOfDischarge" gorm:"size:200"`
	ShipmentMethod  *string    `json:"shipmentMethod" gorm:"size:100"`
	PaymentMethod   *string    `json:"paymentMethod" gorm:"size:100"`
	ExportType      *string    `json:"exportType" gorm:"size:100"`
	EtdShipment     *time.Time `json:"etdShipment"`

	UserID      string  `json:"userId" gorm:"size:36;not null;index"`
	OrderByID   *string `json:"orderById" gorm:"size:36"`
	DeliverToID *string `json:"deliverToId" gorm:"size:36"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Items     []ShipmentItem `json:"items" gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
	User      *User          `json:"user,omitempty" gorm:"foreignKey:UserID"`
	OrderBy   *Company       `json:"orderBy,omitempty" gorm:"foreignKey:OrderByID"`
	DeliverTo *Company       `json:"deliverTo,omitempty" gorm:"foreignKey:DeliverToID"`
}

func (Shipment) TableName() string {
	return "shipments"
}

// Shipment status
const (
	ShipmentStatusDraft     = "DRAFT"
	ShipmentStatusInProcess = "IN_PROCESS"
	ShipmentStatusApproved  = "APPROVED"
)

// ValidShipmentStatus reports whether s is one of the shipment statuses.
func ValidShipmentStatus(s string) bool {
	switch s {
	case ShipmentStatusDraft, ShipmentStatusInProcess, ShipmentStatusApproved:
		return true
	}
	return false
}

// ShipmentItem is one packed line of a shipment.
type ShipmentItem struct {
	ID             string   `json:"id" gorm:"primaryKey;size:36"`
	ShipmentID     string   `json:"shipmentId" gorm:"size:36;not null;index"`
	No             int      `json:"no" gorm:"column:item_no"`
	BoxNo          string   `json:"boxNo" gorm:"size:50"`
	PartNo         string   `json:"partNo" gorm:"size:100;not null"`
	PartName       string   `json:"partName" gorm:"size:300;not null"`
	Quantity       float64  `json:"quantity"`
	Remark         *string  `json:"remark" gorm:"size:500"`
	PricePerPcs    *float64 `json:"pricePerPcs"`
	TotalAmount    *float64 `json:"totalAmount"`
	SpecialPacking *string  `json:"specialPacking" gorm:"size:200"`
}

func (ShipmentItem) TableName() string {
	return "shipment_items"
}
