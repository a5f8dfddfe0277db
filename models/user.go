package models

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	ProviderLocal = "local"
	ProviderClerk = "clerk"
)

// User is serialized on public endpoints; Email stays out of JSON and is
// only returned to its owner (see controllers.account).
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"type:varchar(255)" json:"-"`
	Name      string    `gorm:"type:varchar(100)" json:"name"`
	ImageURL  string    `gorm:"type:text" json:"image_url"`
	Role      string    `gorm:"type:varchar(20);default:'user'" json:"role"`
	Provider  string    `gorm:"type:varchar(20);default:'local'" json:"provider"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
