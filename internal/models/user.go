package models

import "time"

// UserRole is the closed set of roles known to the system. Role checks are
// always performed against this type, never against ad hoc string lists.
type UserRole string

const (
	RoleAdmin      UserRole = "Admin"
	RoleWarden     UserRole = "Warden"
	RoleStudent    UserRole = "Student"
	RoleStaff      UserRole = "Staff"
	RoleAccountant UserRole = "Accountant"
)

// AllRoles lists every valid role.
func AllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleWarden, RoleStudent, RoleStaff, RoleAccountant}
}

// ValidRole reports whether the value names a known role.
func ValidRole(role UserRole) bool {
	switch role {
	case RoleAdmin, RoleWarden, RoleStudent, RoleStaff, RoleAccountant:
		return true
	}
	return false
}

// AssignableRole reports whether the role may be given to accounts created
// through the user management API. Admin accounts only come from the seed.
func AssignableRole(role UserRole) bool {
	return ValidRole(role) && role != RoleAdmin
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateUserRequest is the payload for creating a staff or student account.
// The password is generated server side and mailed to the new user.
type CreateUserRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	FullName string   `json:"full_name" validate:"required,min=2,max=120"`
	Role     UserRole `json:"role" validate:"required"`
}

// UpdateUserRequest is the payload for partially updating an account.
type UpdateUserRequest struct {
	FullName *string   `json:"full_name" validate:"omitempty,min=2,max=120"`
	Role     *UserRole `json:"role" validate:"omitempty"`
	Active   *bool     `json:"active"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
