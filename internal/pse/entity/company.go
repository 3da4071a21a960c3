package entity

import "time"

// Company is a directory entry used as consignor (orderBy) or consignee (deliverTo).
type Company struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Name          string    `json:"name" gorm:"size:200;not null;index"`
	Address       string    `json:"address" gorm:"size:500"`
	Phone         string    `json:"phone" gorm:"size:50"`
	Fax           string    `json:"fax" gorm:"size:50"`
	Email         string    `json:"email" gorm:"size:100"`
	ContactPerson string    `json:"contactPerson" gorm:"size:100"`
	Country       string    `json:"country" gorm:"size:100"`
	Section       string    `json:"section" gorm:"size:100"`
	IsActive      bool      `json:"isActive" gorm:"not null;index"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Company) TableName() string {
	return "companies"
}

// Party is an inline company reference sent by clients. A non-empty ID
// points at an existing company; otherwise CompanyName and the contact
// fields describe one to create.
type Party struct {
	ID          string `json:"id,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Fax         string `json:"fax,omitempty"`
	Email       string `json:"email,omitempty"`
	Attention   string `json:"attention,omitempty"`
	Country     string `json:"country,omitempty"`
	Section     string `json:"section,omitempty"`
}
