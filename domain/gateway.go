package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Gateway is the read/write facade over the shared relational store. It does
// query construction only; every usecase is built against this interface so
// tests can substitute an in-memory fake.
//
// Single-row lookups return (nil, nil) when no row matches: not-found is data,
// not an error.
type Gateway interface {
	GetAdminUsers(ctx context.Context, tenantID uuid.UUID) ([]User, error)
	GetParentUserByStudentLink(ctx context.Context, tenantID, studentID uuid.UUID) (*User, error)
	GetParentProfilesByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]Parent, error)
	GetParentUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)
	GetStudentByID(ctx context.Context, tenantID, studentID uuid.UUID) (*Student, error)
	GetParentProfileByID(ctx context.Context, tenantID, parentID uuid.UUID) (*Parent, error)
	GetTeacherUserByLink(ctx context.Context, tenantID, teacherID uuid.UUID) (*User, error)
	GetUserByID(ctx context.Context, tenantID, userID uuid.UUID) (*User, error)

	// HasRelationshipTable reports whether this deployment carries the
	// optional parent_student_relationships table. Resolved once at startup.
	HasRelationshipTable() bool
	GetPrimaryRelationship(ctx context.Context, tenantID, studentID uuid.UUID) (*ParentStudentRelationship, error)

	InsertNotification(ctx context.Context, n *Notification) error
	InsertRecipients(ctx context.Context, recipients []NotificationRecipient) error
	InsertMessage(ctx context.Context, m *Message) error
	GetNotificationByID(ctx context.Context, tenantID, notificationID uuid.UUID) (*Notification, error)
	GetRecipients(ctx context.Context, tenantID, notificationID uuid.UUID) ([]NotificationRecipient, error)
	UpdateRecipientStatus(ctx context.Context, tenantID, notificationID uuid.UUID, recipientID *uuid.UUID, status DeliveryStatus, sentAt *time.Time) (int64, error)
	CountRecipientsByStatus(ctx context.Context, tenantID, notificationID uuid.UUID) (map[DeliveryStatus]int, error)
	PromoteNotificationStatus(ctx context.Context, tenantID, notificationID uuid.UUID, sentAt time.Time) error
	// CountAbsenceNotifications backs the absence dedup precondition. It
	// matches on the day the notification row was written, not on the
	// absence day carried in the message body: the schema has no
	// absence-date column, so the write day is the dedup key.
	CountAbsenceNotifications(ctx context.Context, tenantID, parentUserID uuid.UUID, date time.Time) (int, error)

	GetAllStudents(ctx context.Context, tenantID uuid.UUID) ([]Student, error)
	GetAllParentProfiles(ctx context.Context, tenantID uuid.UUID) ([]Parent, error)
	GetParentUsers(ctx context.Context, tenantID uuid.UUID) ([]User, error)
	LinkParentUserToStudent(ctx context.Context, tenantID, userID, studentID uuid.UUID) error
	SetStudentParentID(ctx context.Context, tenantID, studentID, parentID uuid.UUID) error
}
