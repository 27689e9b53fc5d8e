package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a storefront account. Address fields are the checkout defaults
// merged under any shipping address supplied at order time.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FirstName    string    `gorm:"column:first_name;not null"`
	LastName     string    `gorm:"column:last_name"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false"`

	StreetAddress string `gorm:"column:street_address"`
	City          string `gorm:"column:city"`
	State         string `gorm:"column:state"`
	PostalCode    string `gorm:"column:postal_code"`
	Country       string `gorm:"column:country"`
	Phone         string `gorm:"column:phone"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
