package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
)

// fakeGateway is the in-memory stand-in the usecases are tested against.
// It counts calls per method so tests can assert short-circuit behavior.
type fakeGateway struct {
	students      []domain.Student
	parents       []domain.Parent
	users         []domain.User
	relationships []domain.ParentStudentRelationship

	relationshipTable bool

	notifications []domain.Notification
	recipients    []domain.NotificationRecipient
	messages      []domain.Message

	calls map[string]int

	failNotificationInsert bool
	failRecipientInsert    bool
	failMessageInsert      bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{calls: make(map[string]int)}
}

func (f *fakeGateway) called(name string) { f.calls[name]++ }

func (f *fakeGateway) GetAdminUsers(ctx context.Context, tenantID uuid.UUID) ([]domain.User, error) {
	f.called("GetAdminUsers")
	var admins []domain.User
	for _, u := range f.users {
		if u.Role == domain.RoleAdmin && u.TenantID == tenantID {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

func (f *fakeGateway) GetParentUserByStudentLink(ctx context.Context, tenantID, studentID uuid.UUID) (*domain.User, error) {
	f.called("GetParentUserByStudentLink")
	for i, u := range f.users {
		if u.Role == domain.RoleParent && u.TenantID == tenantID && u.LinkedParentOf != nil && *u.LinkedParentOf == studentID {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) GetParentProfilesByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]domain.Parent, error) {
	f.called("GetParentProfilesByStudent")
	var profiles []domain.Parent
	for _, p := range f.parents {
		if p.StudentID == studentID && p.TenantID == tenantID {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func (f *fakeGateway) GetParentUserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*domain.User, error) {
	f.called("GetParentUserByEmail")
	for i, u := range f.users {
		if u.Role == domain.RoleParent && u.TenantID == tenantID && strings.EqualFold(u.Email, email) {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) GetStudentByID(ctx context.Context, tenantID, studentID uuid.UUID) (*domain.Student, error) {
	f.called("GetStudentByID")
	for i, s := range f.students {
		if s.ID == studentID && s.TenantID == tenantID {
			return &f.students[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) GetParentProfileByID(ctx context.Context, tenantID, parentID uuid.UUID) (*domain.Parent, error) {
	f.called("GetParentProfileByID")
	for i, p := range f.parents {
		if p.ID == parentID && p.TenantID == tenantID {
			return &f.parents[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) GetTeacherUserByLink(ctx context.Context, tenantID, teacherID uuid.UUID) (*domain.User, error) {
	f.called("GetTeacherUserByLink")
	for i, u := range f.users {
		if u.Role == domain.RoleTeacher && u.TenantID == tenantID && u.LinkedTeacherID != nil && *u.LinkedTeacherID == teacherID {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) GetUserByID(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	f.called("GetUserByID")
	for i, u := range f.users {
		if u.ID == userID && u.TenantID == tenantID {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) HasRelationshipTable() bool {
	f.called("HasRelationshipTable")
	return f.relationshipTable
}

func (f *fakeGateway) GetPrimaryRelationship(ctx context.Context, tenantID, studentID uuid.UUID) (*domain.ParentStudentRelationship, error) {
	f.called("GetPrimaryRelationship")
	var best *domain.ParentStudentRelationship
	for i, rel := range f.relationships {
		if rel.StudentID != studentID || rel.TenantID != tenantID {
			continue
		}
		if best == nil || (rel.IsPrimaryContact && !best.IsPrimaryContact) {
			best = &f.relationships[i]
		}
	}
	return best, nil
}

func (f *fakeGateway) InsertNotification(ctx context.Context, n *domain.Notification) error {
	f.called("InsertNotification")
	if f.failNotificationInsert {
		return fmt.Errorf("notification insert refused")
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeGateway) InsertRecipients(ctx context.Context, recipients []domain.NotificationRecipient) error {
	f.called("InsertRecipients")
	if f.failRecipientInsert {
		return fmt.Errorf("recipient insert refused")
	}
	for i := range recipients {
		if recipients[i].ID == uuid.Nil {
			recipients[i].ID = uuid.New()
		}
	}
	f.recipients = append(f.recipients, recipients...)
	return nil
}

func (f *fakeGateway) InsertMessage(ctx context.Context, m *domain.Message) error {
	f.called("InsertMessage")
	if f.failMessageInsert {
		return fmt.Errorf("message insert refused")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeGateway) GetNotificationByID(ctx context.Context, tenantID, notificationID uuid.UUID) (*domain.Notification, error) {
	f.called("GetNotificationByID")
	for i, n := range f.notifications {
		if n.ID == notificationID && n.TenantID == tenantID {
			return &f.notifications[i], nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) GetRecipients(ctx context.Context, tenantID, notificationID uuid.UUID) ([]domain.NotificationRecipient, error) {
	f.called("GetRecipients")
	var out []domain.NotificationRecipient
	for _, r := range f.recipients {
		if r.NotificationID == notificationID && r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeGateway) UpdateRecipientStatus(ctx context.Context, tenantID, notificationID uuid.UUID, recipientID *uuid.UUID, status domain.DeliveryStatus, sentAt *time.Time) (int64, error) {
	f.called("UpdateRecipientStatus")
	var updated int64
	for i := range f.recipients {
		r := &f.recipients[i]
		if r.NotificationID != notificationID || r.TenantID != tenantID {
			continue
		}
		if recipientID != nil && r.RecipientID != *recipientID {
			continue
		}
		r.DeliveryStatus = status
		r.SentAt = sentAt
		updated++
	}
	return updated, nil
}

func (f *fakeGateway) CountRecipientsByStatus(ctx context.Context, tenantID, notificationID uuid.UUID) (map[domain.DeliveryStatus]int, error) {
	f.called("CountRecipientsByStatus")
	counts := make(map[domain.DeliveryStatus]int)
	for _, r := range f.recipients {
		if r.NotificationID == notificationID && r.TenantID == tenantID {
			counts[r.DeliveryStatus]++
		}
	}
	return counts, nil
}

func (f *fakeGateway) PromoteNotificationStatus(ctx context.Context, tenantID, notificationID uuid.UUID, sentAt time.Time) error {
	f.called("PromoteNotificationStatus")
	for _, r := range f.recipients {
		if r.NotificationID == notificationID && r.TenantID == tenantID && r.DeliveryStatus != domain.StatusSent {
			return nil
		}
	}
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.ID == notificationID && n.TenantID == tenantID {
			n.DeliveryStatus = domain.StatusSent
			n.SentAt = &sentAt
		}
	}
	return nil
}

func (f *fakeGateway) CountAbsenceNotifications(ctx context.Context, tenantID, parentUserID uuid.UUID, date time.Time) (int, error) {
	f.called("CountAbsenceNotifications")
	count := 0
	for _, n := range f.notifications {
		if n.Type != domain.NotificationAbsentee || n.TenantID != tenantID {
			continue
		}
		y1, m1, d1 := n.CreatedAt.Date()
		y2, m2, d2 := date.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			continue
		}
		for _, r := range f.recipients {
			if r.NotificationID == n.ID && r.RecipientID == parentUserID {
				count++
				break
			}
		}
	}
	return count, nil
}

func (f *fakeGateway) GetAllStudents(ctx context.Context, tenantID uuid.UUID) ([]domain.Student, error) {
	f.called("GetAllStudents")
	var out []domain.Student
	for _, s := range f.students {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeGateway) GetAllParentProfiles(ctx context.Context, tenantID uuid.UUID) ([]domain.Parent, error) {
	f.called("GetAllParentProfiles")
	var out []domain.Parent
	for _, p := range f.parents {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeGateway) GetParentUsers(ctx context.Context, tenantID uuid.UUID) ([]domain.User, error) {
	f.called("GetParentUsers")
	var out []domain.User
	for _, u := range f.users {
		if u.Role == domain.RoleParent && u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeGateway) LinkParentUserToStudent(ctx context.Context, tenantID, userID, studentID uuid.UUID) error {
	f.called("LinkParentUserToStudent")
	for i := range f.users {
		if f.users[i].ID == userID && f.users[i].TenantID == tenantID {
			linked := studentID
			f.users[i].LinkedParentOf = &linked
		}
	}
	return nil
}

func (f *fakeGateway) SetStudentParentID(ctx context.Context, tenantID, studentID, parentID uuid.UUID) error {
	f.called("SetStudentParentID")
	for i := range f.students {
		if f.students[i].ID == studentID && f.students[i].TenantID == tenantID {
			pid := parentID
			f.students[i].ParentID = &pid
		}
	}
	return nil
}

type fakeBroadcaster struct {
	pushes int
	fail   bool
}

func (b *fakeBroadcaster) Push(ctx context.Context, target domain.BroadcastTarget, subject, body string) error {
	b.pushes++
	if b.fail {
		return fmt.Errorf("push refused")
	}
	return nil
}

func strPtr(s string) *string { return &s }
