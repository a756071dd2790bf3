package models

import "time"

// Address is a shipping address owned by exactly one user.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:36;index;not null" json:"user_id"`
	FullName   string    `gorm:"size:255;not null" json:"full_name"`
	Phone      string    `gorm:"size:20;not null" json:"phone"`
	Street     string    `gorm:"type:text;not null" json:"street"`
	City       string    `gorm:"size:100;not null" json:"city"`
	State      string    `gorm:"size:100" json:"state"`
	PostalCode string    `gorm:"size:10;not null" json:"postal_code"`
	Country    string    `gorm:"size:2;not null;default:'ID'" json:"country"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
