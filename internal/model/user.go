package model

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a member of exactly one organization.
type User struct {
	BaseModel
	Email          string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password       string        `gorm:"type:varchar(255);not null" json:"-"`
	Name           string        `gorm:"type:varchar(255)" json:"name"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;index;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
	RoleID         *uuid.UUID    `gorm:"type:uuid;index" json:"role_id"`
	Role           *Role         `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"-"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// RoleSlug returns the assigned role's slug, or "" without a loaded role.
func (u *User) RoleSlug() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Slug
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	Name           string      `json:"name"`
	OrganizationID uuid.UUID   `json:"organization_id"`
	RoleID         *uuid.UUID  `json:"role_id"`
	Role           RoleSummary `json:"role"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		OrganizationID: u.OrganizationID,
		RoleID:         u.RoleID,
	}
	if u.Role != nil {
		resp.Role = RoleSummary{ID: u.Role.ID.String(), Name: u.Role.Name, Slug: u.Role.Slug}
	} else if u.RoleID != nil {
		resp.Role = RoleSummary{ID: u.RoleID.String()}
	}
	return resp
}

// Caller identifies the authenticated user behind a request. It is built by
// the auth middleware and handed to services explicitly.
type Caller struct {
	UserID         uuid.UUID
	Email          string
	OrganizationID uuid.UUID
	RoleSlug       string
}
