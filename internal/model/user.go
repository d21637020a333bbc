package model

import (
	"time"
)

// User is the application profile bound to an identity provider uid.
type User struct {
	ID            string         `json:"id" db:"id"`
	Username      string         `json:"username" db:"username"`
	Email         string         `json:"email" db:"email"`
	FullName      string         `json:"full_name" db:"full_name"`
	Phone         string         `json:"phone" db:"phone"`
	Role          Role           `json:"role" db:"role"`
	Disabled      bool           `json:"disabled" db:"disabled"`
	DoctorProfile *DoctorProfile `json:"doctor_profile,omitempty" db:"-"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

func (u *User) IsDoctor() bool {
	return u != nil && u.Role == RoleDoctor
}

// CanAccessCase reports whether u may read c and its chat thread.
func (u *User) CanAccessCase(c *PatientCase) bool {
	if u == nil || c == nil {
		return false
	}
	switch u.Role {
	case RoleDoctor:
		return true
	case RolePatient:
		return c.PatientID != nil && *c.PatientID == u.ID
	}
	return false
}

// RegisterRequest creates the profile for an already verified identity.
type RegisterRequest struct {
	Username      string                      `json:"username" binding:"required,min=3,max=50"`
	Email         string                      `json:"email" binding:"omitempty,email"`
	FullName      string                      `json:"full_name" binding:"max=200"`
	Phone         string                      `json:"phone" binding:"max=50"`
	Role          Role                        `json:"role" binding:"required,role"`
	DoctorProfile *CreateDoctorProfileRequest `json:"doctor_profile"`
}

// UpdateUserRequest patches the mutable contact fields of a profile.
type UpdateUserRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=200"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Email    *string `json:"email" binding:"omitempty,email"`
}
