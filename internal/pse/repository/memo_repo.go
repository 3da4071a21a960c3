package repository

import (
	"context"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"gorm.io/gorm"
)

// MemoRepository stores shipment memos.
type MemoRepository struct {
	db *gorm.DB
}

func NewMemoRepository(db *gorm.DB) *MemoRepository {
	return &MemoRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *MemoRepository) WithTx(tx *gorm.DB) *MemoRepository {
	return &MemoRepository{db: tx}
}

func (r *MemoRepository) FindByShipmentID(ctx context.Context, shipmentID string) (*entity.Memo, error) {
	var memo entity.Memo
	err := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).First(&memo).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &memo, nil
}

// Upsert replaces the memo of memo.ShipmentID, creating it if absent.
// The existing row id and creation time are preserved.
func (r *MemoRepository) Upsert(ctx context.Context, memo *entity.Memo) error {
	existing, err := r.FindByShipmentID(ctx, memo.ShipmentID)
	switch {
	case err == nil:
		memo.ID = existing.ID
		memo.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(memo).Error
	case err == ErrNotFound:
		return r.db.WithContext(ctx).Create(memo).Error
	default:
		return err
	}
}

// DeleteByShipmentID removes every memo row of the shipment.
func (r *MemoRepository) DeleteByShipmentID(ctx context.Context, shipmentID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Delete(&entity.Memo{})
	return res.RowsAffected, res.Error
}
