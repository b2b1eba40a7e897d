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

type coordinatorUC struct {
	gateway     domain.Gateway
	broadcaster domain.Broadcaster
	TimeOut     time.Duration
	log         *logrus.Logger
}

func NewCoordinatorUseCase(gateway domain.Gateway, broadcaster domain.Broadcaster, timeOut time.Duration) domain.CoordinatorUseCase {
	return &coordinatorUC{
		gateway:     gateway,
		broadcaster: broadcaster,
		TimeOut:     timeOut,
		log:         config.GetLogrusInstance(),
	}
}

// Deliver marks the targeted recipient rows Sent, then promotes the parent
// Notification iff every recipient is now Sent. The parent's status is an
// aggregate derivation, never set independently of the recipient rows.
func (dUC *coordinatorUC) Deliver(ctx context.Context, tenantID, notificationID uuid.UUID, recipientID *uuid.UUID) *domain.DeliveryResult {
	ctx, cancel := context.WithTimeout(ctx, dUC.TimeOut)
	defer cancel()

	if tenantID == uuid.Nil {
		return &domain.DeliveryResult{Success: false, Error: "tenant id is required"}
	}

	now := time.Now()
	updated, err := dUC.gateway.UpdateRecipientStatus(ctx, tenantID, notificationID, recipientID, domain.StatusSent, &now)
	if err != nil {
		return &domain.DeliveryResult{Success: false, Error: err.Error()}
	}
	// Zero rows matched: unknown notification or recipient id. Without this
	// guard an empty recipient set would promote vacuously.
	if updated == 0 {
		return &domain.DeliveryResult{Success: false, Error: fmt.Sprintf("no recipients matched notification %s", notificationID)}
	}

	counts, err := dUC.gateway.CountRecipientsByStatus(ctx, tenantID, notificationID)
	if err != nil {
		return &domain.DeliveryResult{Success: false, Updated: updated, Error: err.Error()}
	}

	promoted := false
	if counts[domain.StatusPending] == 0 && counts[domain.StatusFailed] == 0 {
		if err := dUC.gateway.PromoteNotificationStatus(ctx, tenantID, notificationID, now); err != nil {
			return &domain.DeliveryResult{Success: false, Updated: updated, Error: err.Error()}
		}
		promoted = true
	}

	// Fire-and-forget push to live clients. The outcome is discarded on
	// purpose: broadcast must never affect the caller's success path.
	dUC.broadcast(ctx, tenantID, notificationID, recipientID)

	return &domain.DeliveryResult{Success: true, Updated: updated, Promoted: promoted}
}

// MarkFailed flips a single recipient to Failed. Other recipients of the same
// notification keep their own status and can still be delivered.
func (dUC *coordinatorUC) MarkFailed(ctx context.Context, tenantID, notificationID, recipientID uuid.UUID, reason string) *domain.DeliveryResult {
	ctx, cancel := context.WithTimeout(ctx, dUC.TimeOut)
	defer cancel()

	if tenantID == uuid.Nil {
		return &domain.DeliveryResult{Success: false, Error: "tenant id is required"}
	}

	updated, err := dUC.gateway.UpdateRecipientStatus(ctx, tenantID, notificationID, &recipientID, domain.StatusFailed, nil)
	if err != nil {
		return &domain.DeliveryResult{Success: false, Error: err.Error()}
	}
	if updated == 0 {
		return &domain.DeliveryResult{Success: false, Error: fmt.Sprintf("recipient %s not found on notification %s", recipientID, notificationID)}
	}

	dUC.log.Warnf("recipient %s of notification %s marked failed: %s", recipientID, notificationID, reason)

	return &domain.DeliveryResult{Success: true, Updated: updated}
}

func (dUC *coordinatorUC) broadcast(ctx context.Context, tenantID, notificationID uuid.UUID, recipientID *uuid.UUID) {
	if dUC.broadcaster == nil {
		return
	}

	notification, err := dUC.gateway.GetNotificationByID(ctx, tenantID, notificationID)
	if err != nil || notification == nil {
		dUC.log.Warnf("broadcast skipped, could not load notification %s: %v", notificationID, err)
		return
	}

	recipients, err := dUC.gateway.GetRecipients(ctx, tenantID, notificationID)
	if err != nil {
		dUC.log.Warnf("broadcast skipped, could not load recipients of %s: %v", notificationID, err)
		return
	}

	for _, recipient := range recipients {
		if recipientID != nil && recipient.RecipientID != *recipientID {
			continue
		}

		user, err := dUC.gateway.GetUserByID(ctx, tenantID, recipient.RecipientID)
		if err != nil || user == nil {
			dUC.log.Warnf("broadcast skipped for recipient %s: %v", recipient.RecipientID, err)
			continue
		}

		target := domain.BroadcastTarget{
			Name:  user.Name,
			Email: user.Email,
		}
		if user.Phone != nil {
			target.Phone = *user.Phone
		}

		if err := dUC.broadcaster.Push(ctx, target, string(notification.Type), notification.Message); err != nil {
			metrics.BroadcastFailures.Inc()
			dUC.log.Warnf("broadcast to %s failed: %v", user.Email, err)
		}
	}
}
