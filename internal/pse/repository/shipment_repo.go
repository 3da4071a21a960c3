package repository

import (
	"context"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShipmentRepository stores shipments and their items.
type ShipmentRepository struct {
	db *gorm.DB
}

func NewShipmentRepository(db *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *ShipmentRepository) WithTx(tx *gorm.DB) *ShipmentRepository {
	return &ShipmentRepository{db: tx}
}

func (r *ShipmentRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_no ASC")
		}).
		Preload("User").
		Preload("OrderBy").
		Preload("DeliverTo")
}

// FindAll lists shipments, newest first.
func (r *ShipmentRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Shipment, int64, error) {
	var items []entity.Shipment
	var total int64

	filtered := func(db *gorm.DB) *gorm.DB {
		if status := filters["status"]; status != "" && status != "ALL" {
			db = db.Where("status = ?", status)
		}
		if search := filters["search"]; search != "" {
			like := "%" + search + "%"
			db = db.Where("LOWER(shipping_mark) LIKE LOWER(?) OR LOWER(order_no) LIKE LOWER(?) OR LOWER(case_no) LIKE LOWER(?)",
				like, like, like)
		}
		return db
	}

	if err := r.db.WithContext(ctx).Model(&entity.Shipment{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.preloaded(ctx).
		Scopes(filtered).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads a shipment with items, owner and companies.
func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*entity.Shipment, error) {
	var shipment entity.Shipment
	err := r.preloaded(ctx).Where("id = ?", id).First(&shipment).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &shipment, nil
}

// FindStatus returns only the status column.
func (r *ShipmentRepository) FindStatus(ctx context.Context, id string) (string, error) {
	var shipment entity.Shipment
	err := r.db.WithContext(ctx).Select("id", "status").Where("id = ?", id).First(&shipment).Error
	if err != nil {
		return "", notFound(err)
	}
	return shipment.Status, nil
}

// FindWithMemo lists shipments carrying memo data, most recently updated first.
func (r *ShipmentRepository) FindWithMemo(ctx context.Context) ([]entity.Shipment, error) {
	var items []entity.Shipment
	err := r.preloaded(ctx).
		Where("memo_no IS NOT NULL OR memo_goods_info IS NOT NULL OR goods_type IS NOT NULL").
		Order("updated_at DESC").
		Find(&items).Error
	return items, err
}

// Create inserts the shipment together with its items.
func (r *ShipmentRepository) Create(ctx context.Context, shipment *entity.Shipment) error {
	return r.db.WithContext(ctx).Create(shipment).Error
}

// UpdateFields writes the given columns.
func (r *ShipmentRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&entity.Shipment{ID: id}).
		Omit(clause.Associations).
		Updates(fields).Error
}

func (r *ShipmentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"status": status})
}

// ReplaceItems deletes all items of the shipment and inserts the new set.
func (r *ShipmentRepository) ReplaceItems(ctx context.Context, shipmentID string, items []entity.ShipmentItem) error {
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", shipmentID).Delete(&entity.ShipmentItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ShipmentID = shipmentID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// Delete removes the shipment and its items.
func (r *ShipmentRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", id).Delete(&entity.ShipmentItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Shipment{}).Error
}

// CountByStatus counts shipments; an empty status counts all.
func (r *ShipmentRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Shipment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}
