package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role partitions accounts into the three portal areas.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// Status is the approval state of an account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved
}

// InitialStatus returns the status an account of the given role is created with.
// Doctors wait for an administrator; everyone else is approved immediately.
func InitialStatus(role Role) Status {
	if role == RoleDoctor {
		return StatusPending
	}
	return StatusApproved
}

// Account maps to the account table.
type Account struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Credential string    `db:"credential" json:"-"`
	Role       Role      `db:"role" json:"role"`
	Status     Status    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// IsPendingDoctor reports whether the account is a doctor awaiting approval.
func (a *Account) IsPendingDoctor() bool {
	return a.Role == RoleDoctor && a.Status == StatusPending
}

// Caller is the (account, role) pair established by the session layer and
// passed into every access-controlled operation.
type Caller struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// ListFilter narrows account listings. Zero values match everything.
type ListFilter struct {
	Role   Role
	Status Status
}

// NormalizeEmail trims and lowercases an address for case-insensitive lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
