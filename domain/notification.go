package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationGeneral  NotificationType = "General"
	NotificationAbsentee NotificationType = "Absentee"
	NotificationUrgent   NotificationType = "Urgent"
)

type DeliveryMode string

const (
	DeliveryModeInApp DeliveryMode = "InApp"
	DeliveryModeSMS   DeliveryMode = "SMS"
	DeliveryModeEmail DeliveryMode = "Email"
)

type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "Pending"
	StatusSent    DeliveryStatus = "Sent"
	StatusFailed  DeliveryStatus = "Failed"
)

type RecipientType string

const (
	RecipientParent  RecipientType = "Parent"
	RecipientTeacher RecipientType = "Teacher"
	RecipientAdmin   RecipientType = "Admin"
)

type Notification struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Type           NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message        string           `gorm:"type:text;not null" json:"message"`
	DeliveryMode   DeliveryMode     `gorm:"type:varchar(10);not null" json:"delivery_mode"`
	DeliveryStatus DeliveryStatus   `gorm:"type:varchar(10);not null" json:"delivery_status"`
	SentBy         uuid.UUID        `gorm:"type:uuid;not null" json:"sent_by"`
	SentAt         *time.Time       `json:"sent_at,omitempty"`
	ScheduledAt    *time.Time       `json:"scheduled_at,omitempty"`
	TenantID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// NotificationRecipient is the per-addressee fan-out row. A notification with
// N addressees has exactly N of these and exactly one Notification row.
type NotificationRecipient struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	NotificationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"notification_id"`
	RecipientID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"recipient_id"`
	RecipientType  RecipientType  `gorm:"type:varchar(10);not null" json:"recipient_type"`
	DeliveryStatus DeliveryStatus `gorm:"type:varchar(10);not null" json:"delivery_status"`
	SentAt         *time.Time     `json:"sent_at,omitempty"`
	IsRead         bool           `gorm:"not null;default:false" json:"is_read"`
	TenantID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
}

type EventKind string

const (
	EventAbsence               EventKind = "absence"
	EventLeaveRequestForAdmins EventKind = "leave_request_admins"
	EventLeaveStatusForTeacher EventKind = "leave_status_teacher"
	EventTest                  EventKind = "test"
)

// EventPayload carries the raw event data for one ComposeAndPersist call.
// Which fields matter depends on the EventKind.
type EventPayload struct {
	StudentID   uuid.UUID `json:"student_id"`
	AbsenceDate time.Time `json:"absence_date"`
	SentBy      uuid.UUID `json:"sent_by"`

	TeacherID   uuid.UUID `json:"teacher_id"`
	TeacherName string    `json:"teacher_name"`
	LeaveType   string    `json:"leave_type"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Reason      string    `json:"reason"`

	Approved     bool   `json:"approved"`
	AdminRemarks string `json:"admin_remarks"`
}

// ComposeResult is the structured outcome of one notification event. Business
// failures (no resolvable recipient, missing tenant) land here with
// Success=false; they are never raised as errors.
type ComposeResult struct {
	Success        bool              `json:"success"`
	NotificationID uuid.UUID         `json:"notification_id,omitempty"`
	Title          string            `json:"title,omitempty"`
	SentCount      int               `json:"sent_count"`
	FailedCount    int               `json:"failed_count"`
	MessageCreated bool              `json:"message_created"`
	Resolution     *ResolutionResult `json:"resolution,omitempty"`
	Error          string            `json:"error,omitempty"`
}

type DeliveryResult struct {
	Success  bool   `json:"success"`
	Updated  int64  `json:"updated"`
	Promoted bool   `json:"promoted"`
	Error    string `json:"error,omitempty"`
}

type ComposerUseCase interface {
	ComposeAndPersist(ctx context.Context, tenantID uuid.UUID, kind EventKind, payload *EventPayload) *ComposeResult
	AbsenceAlreadyNotified(ctx context.Context, tenantID, studentID uuid.UUID, date time.Time) (bool, error)
}

type CoordinatorUseCase interface {
	Deliver(ctx context.Context, tenantID, notificationID uuid.UUID, recipientID *uuid.UUID) *DeliveryResult
	MarkFailed(ctx context.Context, tenantID, notificationID, recipientID uuid.UUID, reason string) *DeliveryResult
}
