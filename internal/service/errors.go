package service

import "errors"

// Authentication and authorization
var (
	ErrNotAuthenticated        = errors.New("not authenticated")
	ErrNoRoleAssigned          = errors.New("no role assigned")
	ErrRoleInactive            = errors.New("role is inactive")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrInvalidCredentials      = errors.New("invalid email or password")
)

// Resources
var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")
	ErrTaskNotFound = errors.New("task not found")
)

// Conflicts
var (
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrRoleSlugExists = errors.New("a role with this slug already exists")
	ErrRoleInUse      = errors.New("role is assigned to users")
)

// Business rules
var (
	ErrCrossOrganization = errors.New("cannot manage users of another organization")
	ErrCannotDeleteSelf  = errors.New("cannot delete your own user")
	ErrInvalidAssignee   = errors.New("assignee is not a member of this organization")
)
