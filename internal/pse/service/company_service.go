package service

import (
	"context"
	"strings"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/arifsuz/pre-shipment-system/internal/pse/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyService is the company directory.
type CompanyService struct {
	repo   *repository.CompanyRepository
	logger *zap.Logger
}

func NewCompanyService(repo *repository.CompanyRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{repo: repo, logger: logger}
}

// WithTx returns a copy of the service writing through tx.
func (s *CompanyService) WithTx(tx *gorm.DB) *CompanyService {
	return &CompanyService{repo: s.repo.WithTx(tx), logger: s.logger}
}

// CreateCompanyRequest creates a directory entry.
type CreateCompanyRequest struct {
	Name          string `json:"name" binding:"required"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Fax           string `json:"fax"`
	Email         string `json:"email"`
	ContactPerson string `json:"contactPerson"`
	Country       string `json:"country"`
	Section       string `json:"section"`
}

// UpdateCompanyRequest updates the given fields only.
type UpdateCompanyRequest struct {
	Name          *string `json:"name"`
	Address       *string `json:"address"`
	Phone         *string `json:"phone"`
	Fax           *string `json:"fax"`
	Email         *string `json:"email"`
	ContactPerson *string `json:"contactPerson"`
	Country       *string `json:"country"`
	Section       *string `json:"section"`
	IsActive      *bool   `json:"isActive"`
}

// List returns companies ordered by name.
func (s *CompanyService) List(ctx context.Context, activeOnly bool, search string) ([]entity.Company, error) {
	return s.repo.FindAll(ctx, activeOnly, strings.TrimSpace(search))
}

func (s *CompanyService) Get(ctx context.Context, id string) (*entity.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "company", id)
	}
	return company, nil
}

func (s *CompanyService) Create(ctx context.Context, req *CreateCompanyRequest) (*entity.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("Validation failed", "name is required")
	}

	company := &entity.Company{
		ID:            uuid.New().String(),
		Name:          name,
		Address:       req.Address,
		Phone:         req.Phone,
		Fax:           req.Fax,
		Email:         req.Email,
		ContactPerson: req.ContactPerson,
		Country:       req.Country,
		Section:       req.Section,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		s.logger.Error("create company failed", zap.Error(err))
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, id string, req *UpdateCompanyRequest) (*entity.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "company", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewValidationError("Validation failed", "name must not be empty")
		}
		company.Name = name
	}
	if req.Address != nil {
		company.Address = *req.Address
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}
	if req.Fax != nil {
		company.Fax = *req.Fax
	}
	if req.Email != nil {
		company.Email = *req.Email
	}
	if req.ContactPerson != nil {
		company.ContactPerson = *req.ContactPerson
	}
	if req.Country != nil {
		company.Country = *req.Country
	}
	if req.Section != nil {
		company.Section = *req.Section
	}
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, company); err != nil {
		s.logger.Error("update company failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return company, nil
}

// Deactivate hides the company from active listings. Companies are never
// physically deleted.
func (s *CompanyService) Deactivate(ctx context.Context, id string) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return translate(err, "company", id)
	}
	return nil
}

// EnsureExists resolves a party to a company id. A party with an id is
// returned as is without checking it. A party with only a company name
// always creates a new company, so two calls with the same name create two
// records. Returns "" when there is nothing to resolve.
func (s *CompanyService) EnsureExists(ctx context.Context, party *entity.Party) (string, error) {
	if party == nil {
		return "", nil
	}
	if id := strings.TrimSpace(party.ID); id != "" {
		return id, nil
	}
	name := strings.TrimSpace(party.CompanyName)
	if name == "" {
		return "", nil
	}

	company := &entity.Company{
		ID:            uuid.New().String(),
		Name:          name,
		Address:       party.Address,
		Phone:         party.Phone,
		Fax:           party.Fax,
		Email:         party.Email,
		ContactPerson: party.Attention,
		Country:       party.Country,
		Section:       party.Section,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, company); err != nil {
		s.logger.Error("create company from party failed", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return company.ID, nil
}

func (s *CompanyService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
