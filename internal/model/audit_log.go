package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// Audit resources
const (
	AuditResourceTask         = "task"
	AuditResourceUser         = "user"
	AuditResourceRole         = "role"
	AuditResourceOrganization = "organization"
)

// AuditLog is an append-only record of a mutation.
type AuditLog struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID      *uuid.UUID `gorm:"type:uuid" json:"account_id"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id"`
	Action         string     `gorm:"type:varchar(20);not null" json:"action"`
	Resource       string     `gorm:"type:varchar(50);not null" json:"resource"`
	ResourceID     *string    `gorm:"type:varchar(100)" json:"resource_id"`
	Details        JSONMap    `json:"details"`
	IPAddress      *string    `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent      *string    `gorm:"type:varchar(512)" json:"user_agent"`
	Timestamp      time.Time  `gorm:"autoCreateTime;index" json:"timestamp"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
