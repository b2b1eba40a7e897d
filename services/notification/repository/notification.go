package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
)

func (g *gatewayRepository) InsertNotification(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, type, message, delivery_mode, delivery_status, sent_by, sent_at, scheduled_at, tenant_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`

	now := time.Now()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = now

	_, err := g.db.Exec(ctx, query, n.ID, n.Type, n.Message, n.DeliveryMode, n.DeliveryStatus, n.SentBy, n.SentAt, n.ScheduledAt, n.TenantID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("could not insert notification: %v", err)
	}
	return nil
}

// InsertRecipients writes the whole fan-out in one round trip, so an
// interrupted loop can never leave a partial recipient set behind.
func (g *gatewayRepository) InsertRecipients(ctx context.Context, recipients []domain.NotificationRecipient) error {
	if len(recipients) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(recipients))
	for i := range recipients {
		r := &recipients[i]
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		rows = append(rows, []interface{}{r.ID, r.NotificationID, r.RecipientID, r.RecipientType, r.DeliveryStatus, r.SentAt, r.IsRead, r.TenantID})
	}

	_, err := g.db.CopyFrom(
		ctx,
		pgx.Identifier{"notification_recipients"},
		[]string{"id", "notification_id", "recipient_id", "recipient_type", "delivery_status", "sent_at", "is_read", "tenant_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("could not insert notification recipients: %v", err)
	}
	return nil
}

func (g *gatewayRepository) InsertMessage(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, student_id, message, message_type, sent_at, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	_, err := g.db.Exec(ctx, query, m.ID, m.SenderID, m.ReceiverID, m.StudentID, m.Message, m.MessageType, m.SentAt, m.TenantID)
	if err != nil {
		return fmt.Errorf("could not insert message: %v", err)
	}
	return nil
}

func (g *gatewayRepository) GetNotificationByID(ctx context.Context, tenantID, notificationID uuid.UUID) (*domain.Notification, error) {
	query := `
		SELECT id, type, message, delivery_mode, delivery_status, sent_by, sent_at, scheduled_at, tenant_id, created_at
		FROM notifications
		WHERE id = $1 AND tenant_id = $2;
	`

	var n domain.Notification
	err := g.db.QueryRow(ctx, query, notificationID, tenantID).Scan(
		&n.ID, &n.Type, &n.Message, &n.DeliveryMode, &n.DeliveryStatus, &n.SentBy, &n.SentAt, &n.ScheduledAt, &n.TenantID, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not get notification: %v", err)
	}
	return &n, nil
}

func (g *gatewayRepository) GetRecipients(ctx context.Context, tenantID, notificationID uuid.UUID) ([]domain.NotificationRecipient, error) {
	query := `
		SELECT id, notification_id, recipient_id, recipient_type, delivery_status, sent_at, is_read, tenant_id
		FROM notification_recipients
		WHERE notification_id = $1 AND tenant_id = $2;
	`

	rows, err := g.db.Query(ctx, query, notificationID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("could not get notification recipients: %v", err)
	}
	defer rows.Close()

	var recipients []domain.NotificationRecipient
	for rows.Next() {
		var r domain.NotificationRecipient
		err := rows.Scan(&r.ID, &r.NotificationID, &r.RecipientID, &r.RecipientType, &r.DeliveryStatus, &r.SentAt, &r.IsRead, &r.TenantID)
		if err != nil {
			return nil, fmt.Errorf("could not scan notification recipient: %v", err)
		}
		recipients = append(recipients, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %v", err)
	}

	return recipients, nil
}

func (g *gatewayRepository) UpdateRecipientStatus(ctx context.Context, tenantID, notificationID uuid.UUID, recipientID *uuid.UUID, status domain.DeliveryStatus, sentAt *time.Time) (int64, error) {
	if recipientID != nil {
		query := `
			UPDATE notification_recipients
			SET delivery_status = $1, sent_at = $2
			WHERE notification_id = $3 AND recipient_id = $4 AND tenant_id = $5;
		`
		tag, err := g.db.Exec(ctx, query, status, sentAt, notificationID, *recipientID, tenantID)
		if err != nil {
			return 0, fmt.Errorf("could not update recipient status: %v", err)
		}
		return tag.RowsAffected(), nil
	}

	query := `
		UPDATE notification_recipients
		SET delivery_status = $1, sent_at = $2
		WHERE notification_id = $3 AND tenant_id = $4;
	`
	tag, err := g.db.Exec(ctx, query, status, sentAt, notificationID, tenantID)
	if err != nil {
		return 0, fmt.Errorf("could not update recipient statuses: %v", err)
	}
	return tag.RowsAffected(), nil
}

func (g *gatewayRepository) CountRecipientsByStatus(ctx context.Context, tenantID, notificationID uuid.UUID) (map[domain.DeliveryStatus]int, error) {
	query := `
		SELECT delivery_status, COUNT(*)
		FROM notification_recipients
		WHERE notification_id = $1 AND tenant_id = $2
		GROUP BY delivery_status;
	`

	rows, err := g.db.Query(ctx, query, notificationID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("could not count recipients: %v", err)
	}
	defer rows.Close()

	counts := make(map[domain.DeliveryStatus]int)
	for rows.Next() {
		var status domain.DeliveryStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("could not scan recipient count: %v", err)
		}
		counts[status] = count
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %v", err)
	}

	return counts, nil
}

// PromoteNotificationStatus is guarded in SQL: the parent row flips to Sent
// only while no recipient is still Pending or Failed.
func (g *gatewayRepository) PromoteNotificationStatus(ctx context.Context, tenantID, notificationID uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE notifications
		SET delivery_status = 'Sent', sent_at = $1
		WHERE id = $2 AND tenant_id = $3
		AND NOT EXISTS (
			SELECT 1 FROM notification_recipients
			WHERE notification_id = $2 AND tenant_id = $3 AND delivery_status <> 'Sent'
		);
	`

	_, err := g.db.Exec(ctx, query, sentAt, notificationID, tenantID)
	if err != nil {
		return fmt.Errorf("could not promote notification status: %v", err)
	}
	return nil
}

// CountAbsenceNotifications keys on created_at, the day the notification was
// written. An absence for an earlier day notified today counts against today.
func (g *gatewayRepository) CountAbsenceNotifications(ctx context.Context, tenantID, parentUserID uuid.UUID, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications n
		JOIN notification_recipients r ON r.notification_id = n.id
		WHERE n.type = 'Absentee' AND r.recipient_id = $1 AND n.tenant_id = $2
		AND n.created_at::date = $3::date;
	`

	var count int
	err := g.db.QueryRow(ctx, query, parentUserID, tenantID, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("could not count absence notifications: %v", err)
	}
	return count, nil
}
