package model

import "time"

// User represents the user record stored in the users table.
//
// The password column only ever holds a bcrypt hash and is excluded from
// JSON serialization, so it never appears in any API response. Wire field
// names are camelCase to match the existing API contract.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Email       string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"type:varchar(255);not null"`
	PhoneNumber int       `json:"phoneNumber" gorm:"not null"`
	IsAdmin     bool      `json:"isAdmin" gorm:"default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
