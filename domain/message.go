package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is the direct-message channel that runs alongside the in-app
// notification for absences. The two channels are created independently;
// failure of one never rolls back the other.
type Message struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID    uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	ReceiverID  uuid.UUID `gorm:"type:uuid;not null;index" json:"receiver_id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	MessageType string    `gorm:"type:varchar(10);not null" json:"message_type"`
	SentAt      time.Time `json:"sent_at"`
	TenantID    uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
}
