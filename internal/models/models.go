package models

import (
	"time"
)

// Contact is a stored recipient. Phone is the normalised digit string and
// is unique; ID preserves first-import order.
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Phone     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Message   string    `gorm:"type:text" json:"message"`
	Tags      string    `gorm:"type:text" json:"tags"` // Comma separated tags
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}
