package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
)

// User is an authenticable account. LinkedParentOf marks the account as the
// login identity of that student's parent; LinkedTeacherID is the analog for
// teacher accounts.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string     `gorm:"type:varchar(150)" json:"name"`
	Email           string     `gorm:"type:varchar(255);not null" json:"email" valid:"required~Email is required,email~Invalid email format"`
	Password        string     `gorm:"type:varchar(255)" json:"-"`
	Role            Role       `gorm:"type:varchar(20);not null" json:"role"`
	Phone           *string    `gorm:"type:varchar(20)" json:"phone,omitempty"`
	LinkedParentOf  *uuid.UUID `gorm:"type:uuid" json:"linked_parent_of,omitempty"`
	LinkedTeacherID *uuid.UUID `gorm:"type:uuid" json:"linked_teacher_id,omitempty"`
	TenantID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
