package repository

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"

	"github.com/kennethjason07/schoolmangmentsystem-sub007/domain"
)

type broadcastRepository struct {
	meowClient  *whatsmeow.Client
	client      smtp.Auth
	smtpAddress string
	emailSender string
}

func NewBroadcastRepository(meow *whatsmeow.Client, client smtp.Auth, smtpAddress, emailSender string) domain.Broadcaster {
	return &broadcastRepository{
		meowClient:  meow,
		client:      client,
		smtpAddress: smtpAddress,
		emailSender: emailSender,
	}
}

// Push tries every channel the target is reachable on. Callers treat the
// returned error as log-only; delivery state is already persisted by the
// time this runs.
func (b *broadcastRepository) Push(ctx context.Context, target domain.BroadcastTarget, subject, body string) error {
	var pushed bool
	var finalErr error

	if target.Phone != "" {
		if err := b.sendWA(ctx, target.Phone, body); err != nil {
			finalErr = fmt.Errorf("failed to send WhatsApp text to %s: %w", target.Phone, err)
		} else {
			pushed = true
		}
	}

	if target.Email != "" {
		if err := b.sendEmail(target.Email, subject, body); err != nil {
			finalErr = fmt.Errorf("failed to send email to %s: %w", target.Email, err)
		} else {
			pushed = true
		}
	}

	if !pushed && finalErr == nil {
		return fmt.Errorf("recipient %s has no reachable channel", target.Name)
	}
	if pushed {
		return nil
	}
	return finalErr
}

func (b *broadcastRepository) sendWA(ctx context.Context, phone, body string) error {
	if b.meowClient == nil {
		return fmt.Errorf("whatsapp client not configured")
	}

	jid := types.NewJID(strings.TrimPrefix(phone, "+"), types.DefaultUserServer)

	conversationMessage := &waE2E.Message{
		Conversation: &body,
	}

	_, err := b.meowClient.SendMessage(ctx, jid, conversationMessage)
	if err != nil {
		return err
	}
	return nil
}

func (b *broadcastRepository) sendEmail(email, subject, body string) error {
	msg := "From: " + b.emailSender + "\n" +
		"To: " + email + "\n" +
		"Subject: " + subject + "\n\n" +
		body

	err := smtp.SendMail(b.smtpAddress, b.client, b.emailSender, []string{email}, []byte(msg))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
