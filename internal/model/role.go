package model

import (
	"regexp"
	"strings"
)

// Role grants a permission map to the users assigned to it.
type Role struct {
	BaseModel
	Name        string   `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string   `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Permissions GrantMap `json:"permissions"`
	IsActive    bool     `gorm:"not null" json:"is_active"`
}

// Built-in role slugs
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// IsSuperRoleSlug reports whether slug names a role that bypasses
// permission checks.
func IsSuperRoleSlug(slug string) bool {
	return strings.EqualFold(slug, RoleOwner) || strings.EqualFold(slug, RoleAdmin)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ToSlug lowercases s and replaces whitespace runs with "_".
func ToSlug(s string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}

// RoleSummary is the role reference embedded in user payloads.
type RoleSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
