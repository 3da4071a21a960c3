package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories groups the PSE repositories over one connection.
type Repositories struct {
	Company      *CompanyRepository
	Shipment     *ShipmentRepository
	Memo         *MemoRepository
	User         *UserRepository
	Notification *NotificationRepository
}

// NewRepositories creates all repositories.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Company:      NewCompanyRepository(db),
		Shipment:     NewShipmentRepository(db),
		Memo:         NewMemoRepository(db),
		User:         NewUserRepository(db),
		Notification: NewNotificationRepository(db),
	}
}

// WithTx returns a copy of the repositories bound to tx.
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return NewRepositories(tx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
