package entity

import "time"

// Notification is an in-app message, e.g. "spreadsheet uploaded".
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Content   string    `json:"content" gorm:"type:text"`
	UserID    *string   `json:"userId" gorm:"size:36;index"`
	IsRead    bool      `json:"isRead" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}
