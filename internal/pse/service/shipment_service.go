package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/arifsuz/pre-shipment-system/internal/pse/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShipmentService is the shipment record store.
type ShipmentService struct {
	db        *gorm.DB
	repo      *repository.ShipmentRepository
	memoRepo  *repository.MemoRepository
	companies *CompanyService
	events    *sse.Hub
	logger    *zap.Logger
}

func NewShipmentService(db *gorm.DB, repos *repository.Repositories, companies *CompanyService, events *sse.Hub, logger *zap.Logger) *ShipmentService {
	return &ShipmentService{
		db:        db,
		repo:      repos.Shipment,
		memoRepo:  repos.Memo,
		companies: companies,
		events:    events,
		logger:    logger,
	}
}

// WithTx returns a copy of the service writing through tx.
func (s *ShipmentService) WithTx(tx *gorm.DB) *ShipmentService {
	return &ShipmentService{
		db:        tx,
		repo:      s.repo.WithTx(tx),
		memoRepo:  s.memoRepo.WithTx(tx),
		companies: s.companies.WithTx(tx),
		events:    s.events,
		logger:    s.logger,
	}
}

// ShipmentItemRequest is one item line of a create or replace request.
type ShipmentItemRequest struct {
	No             int               `json:"no"`
	BoxNo          string            `json:"boxNo" binding:"required"`
	PartNo         string            `json:"partNo" binding:"required"`
	PartName       string            `json:"partName" binding:"required"`
	Quantity       entity.FlexFloat  `json:"quantity"`
	Remark         *string           `json:"remark"`
	PricePerPcs    *entity.FlexFloat `json:"pricePerPcs"`
	TotalAmount    *entity.FlexFloat `json:"totalAmount"`
	SpecialPacking *string           `json:"specialPacking"`
}

// CreateShipmentRequest creates a shipment with its items.
type CreateShipmentRequest struct {
	ShippingMark    string                `json:"shippingMark" binding:"required"`
	OrderNo         string                `json:"orderNo" binding:"required"`
	CaseNo          string                `json:"caseNo" binding:"required"`
	Destination     string                `json:"destination" binding:"required"`
	Model           string                `json:"model" binding:"required"`
	ProductionMonth string                `json:"productionMonth" binding:"required"`
	CaseSize        string                `json:"caseSize" binding:"required"`
	GrossWeight     entity.FlexFloat      `json:"grossWeight"`
	NetWeight       entity.FlexFloat      `json:"netWeight"`
	RackNo          entity.RackNumbers    `json:"rackNo"`
	Items           []ShipmentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateShipmentRequest is the combined update. Only the listed keys are
// accepted; memo-named keys write the shipment's memo mirror columns.
type UpdateShipmentRequest struct {
	ShippingMark    *string             `json:"shippingMark"`
	OrderNo         *string             `json:"orderNo"`
	CaseNo          *string             `json:"caseNo"`
	Destination     *string             `json:"destination"`
	Model           *string             `json:"model"`
	ProductionMonth *string             `json:"productionMonth"`
	CaseSize        *string             `json:"caseSize"`
	GrossWeight     *entity.FlexFloat   `json:"grossWeight"`
	NetWeight       *entity.FlexFloat   `json:"netWeight"`
	RackNo          *entity.RackNumbers `json:"rackNo"`
	Status          *string             `json:"status"`

	MemoNo          *string `json:"memoNo"`
	GoodsType       *string `json:"goodsType"`
	ShipmentType    *string `json:"shipmentType"`
	DangerLevel     *string `json:"dangerLevel"`
	SpecialPermit   *bool   `json:"specialPermit"`
	InvoiceType     *string `json:"invoiceType"`
	Purpose         *string `json:"purpose"`
	SapInfo         *string `json:"sapInfo"`
	TpNo            *string `json:"tpNo"`
	TpDate          *string `json:"tpDate"`
	PackingDetails  *string `json:"packingDetails"`
	MemoGoodsInfo   *string `json:"memoGoodsInfo"`
	PortOfDischarge *string `json:"portOfDischarge"`
	ShipmentMethod  *string `json:"shipmentMethod"`
	PaymentMethod   *string `json:"paymentMethod"`
	ExportType      *string `json:"exportType"`
	EtdShipment     *string `json:"etdShipment"`

	OrderBy     *entity.Party         `json:"orderBy"`
	DeliveryTo  *entity.Party         `json:"deliveryTo"`
	Items       []ShipmentItemRequest `json:"items"`
	ManualItems []entity.ManualItem   `json:"manualItems"`
}

// List returns a page of shipments, newest first.
func (s *ShipmentService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Shipment, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

// Get loads a shipment with items, owner and companies.
func (s *ShipmentService) Get(ctx context.Context, id string) (*entity.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "shipment", id)
	}
	return shipment, nil
}

// ListWithMemo returns shipments that carry published or in-progress memo data.
func (s *ShipmentService) ListWithMemo(ctx context.Context) ([]entity.Shipment, error) {
	return s.repo.FindWithMemo(ctx)
}

func validateCreate(req *CreateShipmentRequest) error {
	var fields []string
	required := []struct{ name, value string }{
		{"shippingMark", req.ShippingMark},
		{"orderNo", req.OrderNo},
		{"caseNo", req.CaseNo},
		{"destination", req.Destination},
		{"model", req.Model},
		{"productionMonth", req.ProductionMonth},
		{"caseSize", req.CaseSize},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, f.name+" is required")
		}
	}
	if req.GrossWeight < 0 {
		fields = append(fields, "grossWeight must not be negative")
	}
	if req.NetWeight < 0 {
		fields = append(fields, "netWeight must not be negative")
	}
	if len(req.Items) == 0 {
		fields = append(fields, "items must contain at least one item")
	}
	fields = append(fields, validateItems(req.Items)...)
	if len(fields) > 0 {
		return NewValidationError("Validation failed", fields...)
	}
	return nil
}

// validateItems checks each item line and returns field messages.
func validateItems(items []ShipmentItemRequest) []string {
	var fields []string
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if it.No < 0 {
			fields = append(fields, prefix+"no must be positive")
		}
		if strings.TrimSpace(it.BoxNo) == "" {
			fields = append(fields, prefix+"boxNo is required")
		}
		if strings.TrimSpace(it.PartNo) == "" {
			fields = append(fields, prefix+"partNo is required")
		}
		if strings.TrimSpace(it.PartName) == "" {
			fields = append(fields, prefix+"partName is required")
		}
		if it.Quantity < 1 {
			fields = append(fields, prefix+"quantity must be at least 1")
		}
	}
	return fields
}

// Create stores a new DRAFT shipment owned by userID.
func (s *ShipmentService) Create(ctx context.Context, userID string, req *CreateShipmentRequest) (*entity.Shipment, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	productionMonth, err := parseDate("productionMonth", req.ProductionMonth)
	if err != nil {
		return nil, err
	}

	shipment := &entity.Shipment{
		ID:              uuid.New().String(),
		ShippingMark:    strings.TrimSpace(req.ShippingMark),
		OrderNo:         strings.TrimSpace(req.OrderNo),
		CaseNo:          strings.TrimSpace(req.CaseNo),
		Destination:     strings.TrimSpace(req.Destination),
		Model:           strings.TrimSpace(req.Model),
		ProductionMonth: productionMonth,
		CaseSize:        strings.TrimSpace(req.CaseSize),
		GrossWeight:     req.GrossWeight.Float64(),
		NetWeight:       req.NetWeight.Float64(),
		RackNo:          req.RackNo,
		Status:          entity.ShipmentStatusDraft,
		UserID:          userID,
		Items:           itemsFromRequest(req.Items),
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		s.logger.Error("create shipment failed", zap.Error(err))
		return nil, err
	}
	s.events.PublishShipmentUpdate(shipment.ID, "created")
	return s.Get(ctx, shipment.ID)
}

// Update applies a combined update. Approved shipments cannot be changed.
func (s *ShipmentService) Update(ctx context.Context, id string, req *UpdateShipmentRequest) (*entity.Shipment, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.WithTx(tx).update(ctx, id, req)
	})
	if err != nil {
		return nil, err
	}
	s.events.PublishShipmentUpdate(id, "updated")
	return s.Get(ctx, id)
}

func (s *ShipmentService) update(ctx context.Context, id string, req *UpdateShipmentRequest) error {
	status, err := s.repo.FindStatus(ctx, id)
	if err != nil {
		return translate(err, "shipment", id)
	}
	if status == entity.ShipmentStatusApproved {
		return conflictf("cannot update approved shipment")
	}

	if req.ManualItems == nil && req.Items != nil {
		if msgs := validateItems(req.Items); len(msgs) > 0 {
			return NewValidationError("Validation failed", msgs...)
		}
	}

	fields, err := updateFields(req)
	if err != nil {
		return err
	}

	if orderByID, err := s.companies.EnsureExists(ctx, req.OrderBy); err != nil {
		return err
	} else if orderByID != "" {
		fields["order_by_id"] = orderByID
	}
	if deliverToID, err := s.companies.EnsureExists(ctx, req.DeliveryTo); err != nil {
		return err
	} else if deliverToID != "" {
		fields["deliver_to_id"] = deliverToID
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		s.logger.Error("update shipment failed", zap.String("id", id), zap.Error(err))
		return err
	}

	switch {
	case req.ManualItems != nil:
		err = s.repo.ReplaceItems(ctx, id, itemsFromManual(req.ManualItems))
	case req.Items != nil:
		err = s.repo.ReplaceItems(ctx, id, itemsFromRequest(req.Items))
	}
	if err != nil {
		s.logger.Error("replace shipment items failed", zap.String("id", id), zap.Error(err))
	}
	return err
}

// updateFields turns the allow-listed keys into column updates.
func updateFields(req *UpdateShipmentRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	strs := []struct {
		column string
		value  *string
	}{
		{"shipping_mark", req.ShippingMark},
		{"order_no", req.OrderNo},
		{"case_no", req.CaseNo},
		{"destination", req.Destination},
		{"model", req.Model},
		{"case_size", req.CaseSize},
		{"memo_no", req.MemoNo},
		{"goods_type", req.GoodsType},
		{"shipment_type", req.ShipmentType},
		{"danger_level", req.DangerLevel},
		{"invoice_type", req.InvoiceType},
		{"purpose", req.Purpose},
		{"sap_info", req.SapInfo},
		{"tp_no", req.TpNo},
		{"packing_details", req.PackingDetails},
		{"memo_goods_info", req.MemoGoodsInfo},
		{"port_of_discharge", req.PortOfDischarge},
		{"shipment_method", req.ShipmentMethod},
		{"payment_method", req.PaymentMethod},
		{"export_type", req.ExportType},
	}
	for _, f := range strs {
		if f.value != nil {
			fields[f.column] = *f.value
		}
	}

	dates := []struct {
		column, field string
		value         *string
	}{
		{"production_month", "productionMonth", req.ProductionMonth},
		{"tp_date", "tpDate", req.TpDate},
		{"etd_shipment", "etdShipment", req.EtdShipment},
	}
	for _, f := range dates {
		if f.value == nil {
			continue
		}
		t, err := parseDatePtr(f.field, f.value)
		if err != nil {
			return nil, err
		}
		fields[f.column] = t
	}

	if req.GrossWeight != nil {
		fields["gross_weight"] = req.GrossWeight.Float64()
	}
	if req.NetWeight != nil {
		fields["net_weight"] = req.NetWeight.Float64()
	}
	if req.RackNo != nil {
		fields["rack_no"] = *req.RackNo
	}
	if req.SpecialPermit != nil {
		fields["special_permit"] = *req.SpecialPermit
	}
	if req.Status != nil {
		if !entity.ValidShipmentStatus(*req.Status) {
			return nil, NewValidationError("Validation failed", "status must be one of DRAFT, IN_PROCESS, APPROVED")
		}
		fields["status"] = *req.Status
	}
	return fields, nil
}

// SetStatus moves the shipment to any of the three statuses.
func (s *ShipmentService) SetStatus(ctx context.Context, id, status string) (*entity.Shipment, error) {
	if !entity.ValidShipmentStatus(status) {
		return nil, NewValidationError("Invalid status", "status must be one of DRAFT, IN_PROCESS, APPROVED")
	}
	if _, err := s.repo.FindStatus(ctx, id); err != nil {
		return nil, translate(err, "shipment", id)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		s.logger.Error("update shipment status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.events.PublishShipmentUpdate(id, "status")
	return s.Get(ctx, id)
}

// Delete removes a non-approved shipment with its items and memo.
func (s *ShipmentService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs := s.WithTx(tx)
		status, err := txs.repo.FindStatus(ctx, id)
		if err != nil {
			return translate(err, "shipment", id)
		}
		if status == entity.ShipmentStatusApproved {
			return conflictf("cannot delete approved shipment")
		}
		if _, err := txs.memoRepo.DeleteByShipmentID(ctx, id); err != nil {
			return err
		}
		return txs.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.events.PublishShipmentUpdate(id, "deleted")
	return nil
}

// CountByStatus counts shipments; "" counts all.
func (s *ShipmentService) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.repo.CountByStatus(ctx, status)
}
