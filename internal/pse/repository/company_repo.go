package repository

import (
	"context"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"gorm.io/gorm"
)

// CompanyRepository stores directory companies.
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *CompanyRepository) WithTx(tx *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: tx}
}

// FindAll lists companies by name.
func (r *CompanyRepository) FindAll(ctx context.Context, activeOnly bool, search string) ([]entity.Company, error) {
	var items []entity.Company
	query := r.db.WithContext(ctx).Model(&entity.Company{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(country) LIKE LOWER(?)", like, like)
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &company, nil
}

func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *CompanyRepository) Update(ctx context.Context, company *entity.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

// SetActive flips the active flag. ErrNotFound when the id is unknown.
func (r *CompanyRepository) SetActive(ctx context.Context, id string, active bool) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Company{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return r.db.WithContext(ctx).
		Model(&entity.Company{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *CompanyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Company{}).Count(&count).Error
	return count, err
}
