package entity

import "time"

// User is an operator account.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Email     string    `json:"email" gorm:"size:100;not null;uniqueIndex"`
	Nama      string    `json:"nama" gorm:"size:100;not null"`
	Username  string    `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Password  string    `json:"-" gorm:"size:100;not null"`
	Role      string    `json:"role" gorm:"size:20;not null;default:'VIEWER'"`
	IsActive  bool      `json:"isActive" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// Roles
const (
	RoleAdmin  = "ADMIN"
	RoleViewer = "VIEWER"
)
