package model

import "github.com/google/uuid"

// Organization is a tenant. Exactly one organization is marked super; new
// organizations are parented to it.
type Organization struct {
	BaseModel
	Name     string     `gorm:"type:varchar(255);not null" json:"name"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	IsSuper  bool       `gorm:"not null" json:"is_super"`
}
