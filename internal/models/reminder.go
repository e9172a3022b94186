package models

import "time"

// Reminder is one materialized reminder occurrence. Rows are written by the
// regenerator and never retimed in place: regeneration deletes unsent rows
// and recreates them, so there is no persisted link back to the rule or
// schedule that produced an instant.
type Reminder struct {
	ReminderID     int        `json:"reminder_id"`
	TaskID         int        `json:"task_id"`
	RemindAt       time.Time  `json:"remind_at"`
	Sent           bool       `json:"sent"`
	SentAt         *time.Time `json:"sent_at"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	MessageID      *int       `json:"message_id"` // Telegram message id of the last send
	CreatedAt      time.Time  `json:"created_at"`
}
