package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/config"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
	"github.com/kennethjason07/schoolmangmentsystem-sub007/metrics"
)

const absenceDateFormat = "02/01/2006"

type composerUC struct {
	gateway  domain.Gateway
	resolver domain.ResolverUseCase
	TimeOut  time.Duration
	log      *logrus.Logger
}

func NewComposerUseCase(gateway domain.Gateway, resolver domain.ResolverUseCase, timeOut time.Duration) domain.ComposerUseCase {
	return &composerUC{
		gateway:  gateway,
		resolver: resolver,
		TimeOut:  timeOut,
		log:      config.GetLogrusInstance(),
	}
}

// Message wording is a compatibility contract shared with the mobile clients.
// Do not reword without versioning the apps.

func absenceTitle(studentName string) string {
	return fmt.Sprintf("%s - Absent", studentName)
}

func absenceBody(date time.Time) string {
	return fmt.Sprintf("Your child was marked absent on %s. Please contact the school if this is incorrect.", date.Format(absenceDateFormat))
}

func absenceMessageBody(studentName, admissionNo string, date time.Time) string {
	return fmt.Sprintf(`Dear Parent,

This is to inform you that your child %s (Admission No: %s) was marked absent on %s.

If this is incorrect or if there are any concerns, please contact the school immediately.

Thank you,
School Administration`, studentName, admissionNo, date.Format(absenceDateFormat))
}

func leaveRequestBody(teacherName, leaveType, startDate, endDate, reason string) string {
	return fmt.Sprintf("[LEAVE_REQUEST] %s has submitted a %s request from %s to %s. Reason: %s", teacherName, leaveType, startDate, endDate, reason)
}

func leaveStatusBody(leaveType string, approved bool, adminRemarks string) string {
	verdict := "rejected"
	if approved {
		verdict = "approved"
	}
	msg := fmt.Sprintf("Your %s request has been %s.", leaveType, verdict)
	if adminRemarks != "" {
		msg += fmt.Sprintf(" Remarks: %s", adminRemarks)
	}
	return msg
}

func composeFailure(kind domain.EventKind, errMsg string) *domain.ComposeResult {
	metrics.ComposeFailures.WithLabelValues(string(kind)).Inc()
	return &domain.ComposeResult{Success: false, Error: errMsg}
}

// ComposeAndPersist turns one raw event into persisted notification state.
// It never creates a Notification row with zero recipients, and it never
// panics or errors across this boundary: every outcome is a ComposeResult.
func (cUC *composerUC) ComposeAndPersist(ctx context.Context, tenantID uuid.UUID, kind domain.EventKind, payload *domain.EventPayload) *domain.ComposeResult {
	ctx, cancel := context.WithTimeout(ctx, cUC.TimeOut)
	defer cancel()

	if tenantID == uuid.Nil {
		return composeFailure(kind, "tenant id is required")
	}
	if payload == nil {
		return composeFailure(kind, "event payload is required")
	}

	var result *domain.ComposeResult
	switch kind {
	case domain.EventAbsence:
		result = cUC.composeAbsence(ctx, tenantID, payload)
	case domain.EventLeaveRequestForAdmins:
		result = cUC.composeLeaveRequest(ctx, tenantID, payload)
	case domain.EventLeaveStatusForTeacher:
		result = cUC.composeLeaveStatus(ctx, tenantID, payload)
	case domain.EventTest:
		result = cUC.composeTest(ctx, tenantID, payload)
	default:
		return composeFailure(kind, fmt.Sprintf("unknown event kind: %s", kind))
	}

	if result.Success {
		metrics.NotificationsComposed.WithLabelValues(string(kind)).Inc()
		metrics.RecipientsFannedOut.Add(float64(result.SentCount))
	} else {
		metrics.ComposeFailures.WithLabelValues(string(kind)).Inc()
	}
	return result
}

func (cUC *composerUC) composeAbsence(ctx context.Context, tenantID uuid.UUID, payload *domain.EventPayload) *domain.ComposeResult {
	resolution := cUC.resolver.ResolveParentForStudent(ctx, tenantID, payload.StudentID)
	if !resolution.Success {
		return &domain.ComposeResult{
			Success:    false,
			Resolution: resolution,
			Error:      fmt.Sprintf("no resolvable recipient: %s", resolution.Error),
		}
	}

	student, err := cUC.gateway.GetStudentByID(ctx, tenantID, payload.StudentID)
	if err != nil {
		return &domain.ComposeResult{Success: false, Resolution: resolution, Error: err.Error()}
	}
	if student == nil {
		return &domain.ComposeResult{Success: false, Resolution: resolution, Error: fmt.Sprintf("student %s not found", payload.StudentID)}
	}

	date := payload.AbsenceDate
	if date.IsZero() {
		date = time.Now()
	}

	notification := &domain.Notification{
		Type:           domain.NotificationAbsentee,
		Message:        absenceBody(date),
		DeliveryMode:   domain.DeliveryModeInApp,
		DeliveryStatus: domain.StatusPending,
		SentBy:         payload.SentBy,
		TenantID:       tenantID,
	}
	if err := cUC.gateway.InsertNotification(ctx, notification); err != nil {
		return &domain.ComposeResult{Success: false, Resolution: resolution, Error: err.Error()}
	}

	recipients := []domain.NotificationRecipient{{
		NotificationID: notification.ID,
		RecipientID:    resolution.ParentUserID,
		RecipientType:  domain.RecipientParent,
		DeliveryStatus: domain.StatusPending,
		TenantID:       tenantID,
	}}
	if err := cUC.gateway.InsertRecipients(ctx, recipients); err != nil {
		return &domain.ComposeResult{
			Success:        false,
			NotificationID: notification.ID,
			FailedCount:    1,
			Resolution:     resolution,
			Error:          err.Error(),
		}
	}

	result := &domain.ComposeResult{
		Success:        true,
		NotificationID: notification.ID,
		Title:          absenceTitle(student.Name),
		SentCount:      1,
		Resolution:     resolution,
	}

	// Second channel. Deliberately not coupled to the notification insert:
	// a failed Message leaves the Notification and Recipient rows in place.
	message := &domain.Message{
		SenderID:    payload.SentBy,
		ReceiverID:  resolution.ParentUserID,
		StudentID:   student.ID,
		Message:     absenceMessageBody(student.Name, student.AdmissionNo, date),
		MessageType: "text",
		SentAt:      time.Now(),
		TenantID:    tenantID,
	}
	if err := cUC.gateway.InsertMessage(ctx, message); err != nil {
		cUC.log.Warnf("absence message insert failed for student %s: %v", student.ID, err)
	} else {
		result.MessageCreated = true
	}

	return result
}

func (cUC *composerUC) composeLeaveRequest(ctx context.Context, tenantID uuid.UUID, payload *domain.EventPayload) *domain.ComposeResult {
	admins, err := cUC.gateway.GetAdminUsers(ctx, tenantID)
	if err != nil {
		return &domain.ComposeResult{Success: false, Error: err.Error()}
	}
	// Zero-recipient guard: no Notification row when nobody would receive it.
	if len(admins) == 0 {
		return &domain.ComposeResult{Success: false, Error: "no resolvable recipient: no admin accounts configured"}
	}

	now := time.Now()
	notification := &domain.Notification{
		Type:           domain.NotificationGeneral,
		Message:        leaveRequestBody(payload.TeacherName, payload.LeaveType, payload.StartDate, payload.EndDate, payload.Reason),
		DeliveryMode:   domain.DeliveryModeInApp,
		DeliveryStatus: domain.StatusSent,
		SentBy:         payload.SentBy,
		SentAt:         &now,
		TenantID:       tenantID,
	}
	if err := cUC.gateway.InsertNotification(ctx, notification); err != nil {
		return &domain.ComposeResult{Success: false, Error: err.Error()}
	}

	recipients := make([]domain.NotificationRecipient, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, domain.NotificationRecipient{
			NotificationID: notification.ID,
			RecipientID:    admin.ID,
			RecipientType:  domain.RecipientAdmin,
			DeliveryStatus: domain.StatusSent,
			SentAt:         &now,
			TenantID:       tenantID,
		})
	}
	if err := cUC.gateway.InsertRecipients(ctx, recipients); err != nil {
		return &domain.ComposeResult{
			Success:        false,
			NotificationID: notification.ID,
			FailedCount:    len(admins),
			Error:          err.Error(),
		}
	}

	return &domain.ComposeResult{
		Success:        true,
		NotificationID: notification.ID,
		SentCount:      len(admins),
	}
}

func (cUC *composerUC) composeLeaveStatus(ctx context.Context, tenantID uuid.UUID, payload *domain.EventPayload) *domain.ComposeResult {
	teacher, err := cUC.gateway.GetTeacherUserByLink(ctx, tenantID, payload.TeacherID)
	if err != nil {
		return &domain.ComposeResult{Success: false, Error: err.Error()}
	}
	if teacher == nil {
		return &domain.ComposeResult{Success: false, Error: fmt.Sprintf("no resolvable recipient: no teacher account linked to %s", payload.TeacherID)}
	}

	now := time.Now()
	notification := &domain.Notification{
		Type:           domain.NotificationGeneral,
		Message:        leaveStatusBody(payload.LeaveType, payload.Approved, payload.AdminRemarks),
		DeliveryMode:   domain.DeliveryModeInApp,
		DeliveryStatus: domain.StatusSent,
		SentBy:         payload.SentBy,
		SentAt:         &now,
		TenantID:       tenantID,
	}
	if err := cUC.gateway.InsertNotification(ctx, notification); err != nil {
		return &domain.ComposeResult{Success: false, Error: err.Error()}
	}

	recipients := []domain.NotificationRecipient{{
		NotificationID: notification.ID,
		RecipientID:    teacher.ID,
		RecipientType:  domain.RecipientTeacher,
		DeliveryStatus: domain.StatusSent,
		SentAt:         &now,
		TenantID:       tenantID,
	}}
	if err := cUC.gateway.InsertRecipients(ctx, recipients); err != nil {
		return &domain.ComposeResult{
			Success:        false,
			NotificationID: notification.ID,
			FailedCount:    1,
			Error:          err.Error(),
		}
	}

	return &domain.ComposeResult{
		Success:        true,
		NotificationID: notification.ID,
		SentCount:      1,
	}
}

func (cUC *composerUC) composeTest(ctx context.Context, tenantID uuid.UUID, payload *domain.EventPayload) *domain.ComposeResult {
	resolution := cUC.resolver.ResolveParentForStudent(ctx, tenantID, payload.StudentID)
	if !resolution.Success {
		return &domain.ComposeResult{
			Success:    false,
			Resolution: resolution,
			Error:      fmt.Sprintf("no resolvable recipient: %s", resolution.Error),
		}
	}

	notification := &domain.Notification{
		Type:           domain.NotificationGeneral,
		Message:        "This is a test notification from the school administration.",
		DeliveryMode:   domain.DeliveryModeInApp,
		DeliveryStatus: domain.StatusPending,
		SentBy:         payload.SentBy,
		TenantID:       tenantID,
	}
	if err := cUC.gateway.InsertNotification(ctx, notification); err != nil {
		return &domain.ComposeResult{Success: false, Resolution: resolution, Error: err.Error()}
	}

	recipients := []domain.NotificationRecipient{{
		NotificationID: notification.ID,
		RecipientID:    resolution.ParentUserID,
		RecipientType:  domain.RecipientParent,
		DeliveryStatus: domain.StatusPending,
		TenantID:       tenantID,
	}}
	if err := cUC.gateway.InsertRecipients(ctx, recipients); err != nil {
		return &domain.ComposeResult{
			Success:        false,
			NotificationID: notification.ID,
			FailedCount:    1,
			Resolution:     resolution,
			Error:          err.Error(),
		}
	}

	return &domain.ComposeResult{
		Success:        true,
		NotificationID: notification.ID,
		SentCount:      1,
		Resolution:     resolution,
	}
}

// AbsenceAlreadyNotified is the explicit dedup precondition. The send path
// never calls it on its own; callers that want at-most-one absence
// notification per student per day check here first. The day checked is the
// day the notification was written, not the absence day in the body.
func (cUC *composerUC) AbsenceAlreadyNotified(ctx context.Context, tenantID, studentID uuid.UUID, date time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, cUC.TimeOut)
	defer cancel()

	resolution := cUC.resolver.ResolveParentForStudent(ctx, tenantID, studentID)
	if !resolution.Success {
		return false, nil
	}

	count, err := cUC.gateway.CountAbsenceNotifications(ctx, tenantID, resolution.ParentUserID, date)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
