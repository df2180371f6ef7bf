package domain

import "time"

// UserRole distinguishes bank customers from bank employees (reviewers).
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleEmployee UserRole = "EMPLOYEE"
)

// User represents a customer or employee of the bank in the domain.
type User struct {
	UserID       string   `json:"userID"` // Primary Key (UUID)
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	Role         UserRole `json:"role"`
	AuditFields
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
	DeletedAt              *time.Time `json:"deletedAt,omitempty"` // Soft delete
}
