package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Student rows are owned by the account-management flows; this service only
// reads them, except for the repair tool's parent_id backfill.
type Student struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(150);not null" json:"name" valid:"required~Name is required"`
	AdmissionNo string         `gorm:"type:varchar(30);not null" json:"admission_no"`
	ClassName   string         `gorm:"type:varchar(30)" json:"class_name"`
	ParentID    *uuid.UUID     `gorm:"type:uuid" json:"parent_id"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
