package service

import (
	"context"
	"errors"

	"github.com/arifsuz/pre-shipment-system/internal/metrics"
	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/arifsuz/pre-shipment-system/internal/pse/sse"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PublishRequest publishes the memo. SetShipmentStatus, when given, is
// written to the shipment; publish never picks a status on its own.
type PublishRequest struct {
	MemoPayload
	SetShipmentStatus *string `json:"setShipmentStatus"`
}

// FinalSaveRequest saves the memo as DRAFT and moves the shipment to
// StatusAfterSave.
type FinalSaveRequest struct {
	MemoPayload
	StatusAfterSave string `json:"statusAfterSave"`
}

// ReconcileRequest overrides the memo items to compare. When ManualItems is
// nil the stored memo's items are used.
type ReconcileRequest struct {
	ManualItems []entity.ManualItem `json:"manualItems"`
}

// WorkflowService drives a memo through draft, in-process and published.
// Multi-step operations run in a single transaction.
type WorkflowService struct {
	db           *gorm.DB
	companies    *CompanyService
	memos        *MemoService
	shipmentRepo *repository.ShipmentRepository
	events       *sse.Hub
	logger       *zap.Logger
}

func NewWorkflowService(db *gorm.DB, repos *repository.Repositories, companies *CompanyService, memos *MemoService, events *sse.Hub, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		db:           db,
		companies:    companies,
		memos:        memos,
		shipmentRepo: repos.Shipment,
		events:       events,
		logger:       logger,
	}
}

// SaveDraft stores the memo as DRAFT. The shipment status is untouched.
func (s *WorkflowService) SaveDraft(ctx context.Context, shipmentID string, payload *MemoPayload) (*entity.Memo, error) {
	memo, err := s.memos.UpsertDraft(ctx, shipmentID, payload)
	metrics.MemoActions.WithLabelValues("draft", metrics.Result(err)).Inc()
	return memo, err
}

// SaveAsInProcess stores the memo as DRAFT and moves the shipment to
// IN_PROCESS. The caller has already decided the memo does not match.
func (s *WorkflowService) SaveAsInProcess(ctx context.Context, shipmentID string, payload *MemoPayload) (*entity.Memo, error) {
	var memo *entity.Memo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureNotApproved(ctx, tx, shipmentID); err != nil {
			return err
		}
		var err error
		memo, err = s.memos.WithTx(tx).save(ctx, shipmentID, payload, entity.MemoStatusDraft)
		if err != nil {
			return err
		}
		return s.shipmentRepo.WithTx(tx).UpdateStatus(ctx, shipmentID, entity.ShipmentStatusInProcess)
	})
	metrics.MemoActions.WithLabelValues("in_process", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Warn("save memo as in-process failed", zap.String("shipment_id", shipmentID), zap.Error(err))
		return nil, err
	}

	s.events.PublishMemoUpdate(shipmentID, memo.Status, "in_process")
	s.events.PublishShipmentUpdate(shipmentID, "status")
	return memo, nil
}

// Publish resolves both parties to companies, stores the memo as PUBLISHED,
// mirrors its fields onto the shipment and links the resolved companies.
func (s *WorkflowService) Publish(ctx context.Context, shipmentID string, req *PublishRequest) (*entity.Memo, error) {
	if req.SetShipmentStatus != nil && !entity.ValidShipmentStatus(*req.SetShipmentStatus) {
		return nil, NewValidationError("Invalid setShipmentStatus", "setShipmentStatus must be one of DRAFT, IN_PROCESS, APPROVED")
	}

	var memo *entity.Memo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureNotApproved(ctx, tx, shipmentID); err != nil {
			return err
		}
		fields, err := s.resolveParties(ctx, tx, &req.MemoPayload)
		if err != nil {
			return err
		}

		memo, err = s.memos.WithTx(tx).save(ctx, shipmentID, &req.MemoPayload, entity.MemoStatusPublished)
		if err != nil {
			return err
		}

		for k, v := range memoMirror(memo) {
			fields[k] = v
		}
		if req.SetShipmentStatus != nil {
			fields["status"] = *req.SetShipmentStatus
		}
		return s.shipmentRepo.WithTx(tx).UpdateFields(ctx, shipmentID, fields)
	})
	metrics.MemoActions.WithLabelValues("publish", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Warn("publish memo failed", zap.String("shipment_id", shipmentID), zap.Error(err))
		return nil, err
	}

	s.events.PublishMemoUpdate(shipmentID, memo.Status, "published")
	s.events.PublishShipmentUpdate(shipmentID, "updated")
	return memo, nil
}

// FinalSave resolves both parties and mirrors the memo like Publish, keeps
// the memo as DRAFT and sets the shipment status to statusAfterSave (DRAFT or
// IN_PROCESS).
func (s *WorkflowService) FinalSave(ctx context.Context, shipmentID string, req *FinalSaveRequest) (*entity.Memo, error) {
	switch req.StatusAfterSave {
	case entity.ShipmentStatusDraft, entity.ShipmentStatusInProcess:
	default:
		return nil, NewValidationError("Invalid statusAfterSave", "statusAfterSave must be DRAFT or IN_PROCESS")
	}

	var memo *entity.Memo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureNotApproved(ctx, tx, shipmentID); err != nil {
			return err
		}
		fields, err := s.resolveParties(ctx, tx, &req.MemoPayload)
		if err != nil {
			return err
		}

		memo, err = s.memos.WithTx(tx).save(ctx, shipmentID, &req.MemoPayload, entity.MemoStatusDraft)
		if err != nil {
			return err
		}

		for k, v := range memoMirror(memo) {
			fields[k] = v
		}
		fields["status"] = req.StatusAfterSave
		return s.shipmentRepo.WithTx(tx).UpdateFields(ctx, shipmentID, fields)
	})
	metrics.MemoActions.WithLabelValues("final_save", metrics.Result(err)).Inc()
	if err != nil {
		s.logger.Warn("final save memo failed", zap.String("shipment_id", shipmentID), zap.Error(err))
		return nil, err
	}

	s.events.PublishMemoUpdate(shipmentID, memo.Status, "saved")
	s.events.PublishShipmentUpdate(shipmentID, "status")
	return memo, nil
}

// Reconcile compares the shipment's items with the memo's manual items.
func (s *WorkflowService) Reconcile(ctx context.Context, shipmentID string, req *ReconcileRequest) (*ReconcileResult, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, translate(err, "shipment", shipmentID)
	}

	var manual []entity.ManualItem
	if req != nil && req.ManualItems != nil {
		manual = req.ManualItems
	} else {
		memo, err := s.memos.Get(ctx, shipmentID)
		if err != nil {
			return nil, err
		}
		if memo != nil && memo.ManualItems != nil {
			manual = memo.ManualItems.Items
		}
	}

	result := Reconcile(shipment.Items, manual)
	switch {
	case len(result.Rows) == 0:
		metrics.ReconcileRuns.WithLabelValues("empty").Inc()
	case result.IsMatch:
		metrics.ReconcileRuns.WithLabelValues("match").Inc()
	default:
		metrics.ReconcileRuns.WithLabelValues("mismatch").Inc()
	}
	return result, nil
}

// ensureNotApproved fails with a conflict when the shipment is APPROVED. A
// missing shipment passes; the memo write reports it.
func (s *WorkflowService) ensureNotApproved(ctx context.Context, tx *gorm.DB, shipmentID string) error {
	status, err := s.shipmentRepo.WithTx(tx).FindStatus(ctx, shipmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if status == entity.ShipmentStatusApproved {
		return conflictf("cannot modify approved shipment")
	}
	return nil
}

// resolveParties creates or reuses companies for both parties and returns
// the shipment columns to link them.
func (s *WorkflowService) resolveParties(ctx context.Context, tx *gorm.DB, payload *MemoPayload) (map[string]interface{}, error) {
	companies := s.companies.WithTx(tx)
	fields := map[string]interface{}{}

	orderByID, err := companies.EnsureExists(ctx, payload.OrderBy)
	if err != nil {
		return nil, err
	}
	if orderByID != "" {
		fields["order_by_id"] = orderByID
	}

	deliverToID, err := companies.EnsureExists(ctx, payload.DeliveryTo)
	if err != nil {
		return nil, err
	}
	if deliverToID != "" {
		fields["deliver_to_id"] = deliverToID
	}
	return fields, nil
}

// memoMirror lists the shipment columns that copy a saved memo.
func memoMirror(m *entity.Memo) map[string]interface{} {
	return map[string]interface{}{
		"memo_no":           m.MemoNo,
		"goods_type":        m.GoodsType,
		"shipment_type":     m.ShipmentType,
		"danger_level":      m.DangerLevel,
		"special_permit":    m.SpecialPermit,
		"invoice_type":      m.InvoiceType,
		"purpose":           m.Purpose,
		"sap_info":          m.SapInfo,
		"tp_no":             m.TpNo,
		"tp_date":           m.TpDate,
		"packing_details":   m.PackingDetails,
		"memo_goods_info":   m.MemoGoodsInfo,
		"port_of_discharge": m.PortOfDischarge,
		"shipment_method":   m.ShipmentMethod,
		"payment_method":    m.PaymentMethod,
		"export_type":       m.ExportType,
		"etd_shipment":      m.EtdShipment,
	}
}
