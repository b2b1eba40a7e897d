package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Parent is a profile row describing a parent of one student. It is not an
// addressable recipient: only a User with RoleParent can receive anything.
type Parent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name" valid:"required~Name is required"`
	Email     *string        `gorm:"type:varchar(255)" json:"email,omitempty" valid:"email~Invalid email format,optional"`
	Relation  string         `gorm:"type:varchar(20)" json:"relation" valid:"in(Father|Mother|Guardian)~Invalid relation,optional"`
	StudentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	TenantID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ParentStudentRelationship lives in an optional table that only some
// deployments carry. Its absence is a capability fact, not an error.
type ParentStudentRelationship struct {
	ID               uuid.UUID `json:"id"`
	ParentID         uuid.UUID `json:"parent_id"`
	StudentID        uuid.UUID `json:"student_id"`
	IsPrimaryContact bool      `json:"is_primary_contact"`
	TenantID         uuid.UUID `json:"tenant_id"`
}
