package models

import "time"

// NotificationResult is the gateway's outcome shape. Transport failures are
// reported through Success/Error, never raised.
type NotificationResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sync operations that trigger the downstream pipeline.
const (
	SyncOpCreated   = "created"
	SyncOpUpdated   = "updated"
	SyncOpCancelled = "cancelled"
)

// SyncPayload is the task payload for one post-booking sync unit.
type SyncPayload struct {
	BookingID   string    `json:"booking_id"`
	Op          string    `json:"op"`
	TriggeredAt time.Time `json:"triggered_at"`
}
