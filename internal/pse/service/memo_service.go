package service

import (
	"context"
	"errors"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/arifsuz/pre-shipment-system/internal/pse/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MemoPayload is the memo form as submitted by the client. Unknown keys are
// ignored.
type MemoPayload struct {
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

	OrderBy     *entity.Party       `json:"orderBy"`
	DeliveryTo  *entity.Party       `json:"deliveryTo"`
	ManualItems []entity.ManualItem `json:"manualItems"`
}

// toMemo builds the full memo row. Fields missing from the payload are
// cleared, since a memo write replaces the previous one.
func (p *MemoPayload) toMemo(shipmentID, status string) (*entity.Memo, error) {
	tpDate, err := parseDatePtr("tpDate", p.TpDate)
	if err != nil {
		return nil, err
	}
	etd, err := parseDatePtr("etdShipment", p.EtdShipment)
	if err != nil {
		return nil, err
	}

	memo := &entity.Memo{
		ID:              uuid.New().String(),
		ShipmentID:      shipmentID,
		MemoNo:          p.MemoNo,
		GoodsType:       p.GoodsType,
		ShipmentType:    p.ShipmentType,
		DangerLevel:     p.DangerLevel,
		InvoiceType:     p.InvoiceType,
		Purpose:         p.Purpose,
		SapInfo:         p.SapInfo,
		TpNo:            p.TpNo,
		TpDate:          tpDate,
		PackingDetails:  p.PackingDetails,
		MemoGoodsInfo:   p.MemoGoodsInfo,
		ManualItems:     entity.NewMemoSnapshot(p.ManualItems, p.OrderBy, p.DeliveryTo),
		PortOfDischarge: p.PortOfDischarge,
		ShipmentMethod:  p.ShipmentMethod,
		PaymentMethod:   p.PaymentMethod,
		ExportType:      p.ExportType,
		EtdShipment:     etd,
		Status:          status,
	}
	if p.SpecialPermit != nil {
		memo.SpecialPermit = *p.SpecialPermit
	}
	return memo, nil
}

// MemoService is the memo draft store.
type MemoService struct {
	repo         *repository.MemoRepository
	shipmentRepo *repository.ShipmentRepository
	events       *sse.Hub
	logger       *zap.Logger
}

func NewMemoService(repos *repository.Repositories, events *sse.Hub, logger *zap.Logger) *MemoService {
	return &MemoService{
		repo:         repos.Memo,
		shipmentRepo: repos.Shipment,
		events:       events,
		logger:       logger,
	}
}

// WithTx returns a copy of the service writing through tx.
func (s *MemoService) WithTx(tx *gorm.DB) *MemoService {
	return &MemoService{
		repo:         s.repo.WithTx(tx),
		shipmentRepo: s.shipmentRepo.WithTx(tx),
		events:       s.events,
		logger:       s.logger,
	}
}

// Get returns the shipment's memo, or nil when it has none.
func (s *MemoService) Get(ctx context.Context, shipmentID string) (*entity.Memo, error) {
	memo, err := s.repo.FindByShipmentID(ctx, shipmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return memo, err
}

// UpsertDraft stores the payload as the shipment's DRAFT memo. Party data is
// kept only inside the snapshot; no company is created and shipment items
// are left alone.
func (s *MemoService) UpsertDraft(ctx context.Context, shipmentID string, payload *MemoPayload) (*entity.Memo, error) {
	memo, err := s.save(ctx, shipmentID, payload, entity.MemoStatusDraft)
	if err != nil {
		return nil, err
	}
	s.events.PublishMemoUpdate(shipmentID, memo.Status, "draft")
	return memo, nil
}

// save upserts the memo with the given status.
func (s *MemoService) save(ctx context.Context, shipmentID string, payload *MemoPayload, status string) (*entity.Memo, error) {
	if _, err := s.shipmentRepo.FindStatus(ctx, shipmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewValidationError("Shipment does not exist", "shipmentId "+shipmentID+" does not exist")
		}
		return nil, err
	}

	memo, err := payload.toMemo(shipmentID, status)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, memo); err != nil {
		s.logger.Error("upsert memo failed", zap.String("shipment_id", shipmentID), zap.Error(err))
		return nil, err
	}
	return memo, nil
}

// DeleteDraft removes the shipment's memo. Deleting a missing memo is not an error.
func (s *MemoService) DeleteDraft(ctx context.Context, shipmentID string) error {
	n, err := s.repo.DeleteByShipmentID(ctx, shipmentID)
	if err != nil {
		s.logger.Error("delete memo failed", zap.String("shipment_id", shipmentID), zap.Error(err))
		return err
	}
	if n > 0 {
		s.events.PublishMemoUpdate(shipmentID, "", "deleted")
	}
	return nil
}

// ListPublishedOrInProgress returns shipments carrying memo data.
func (s *MemoService) ListPublishedOrInProgress(ctx context.Context) ([]entity.Shipment, error) {
	return s.shipmentRepo.FindWithMemo(ctx)
}
