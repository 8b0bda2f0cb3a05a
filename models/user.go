package models

import "time"

// User roles
const (
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// User represents users table
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(80);not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	Role         string    `gorm:"type:varchar(20);not null;default:'cashier'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsManager reports whether the user holds the manager role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}
