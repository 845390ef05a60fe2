package models

import "time"

// Booking lifecycle statuses. Transitions are monotonic: a booking never
// returns to PENDING once confirmed or cancelled.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// SyncState records the outcome of one downstream integration for a booking.
// It is written exclusively by the sync pipeline, never by the create path.
type SyncState struct {
	Done           bool       `bson:"done" json:"done"`
	CompletedAt    *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	ManualFollowUp bool       `bson:"manual_follow_up" json:"manual_follow_up"`
	LastError      string     `bson:"last_error,omitempty" json:"last_error,omitempty"`
}

// Booking represents an appointment record.
type Booking struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Company   string    `bson:"company,omitempty" json:"company,omitempty"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone" json:"phone"`
	Inquiry   string    `bson:"inquiry" json:"inquiry"`
	StartTime time.Time `bson:"start_time" json:"start_time"`
	Duration  int       `bson:"duration" json:"duration"` // minutes
	Status    string    `bson:"status" json:"status"`

	// Independent sync outcomes for the three downstream integrations.
	Notification SyncState `bson:"notification_sync" json:"notification_sync"`
	Calendar     SyncState `bson:"calendar_sync" json:"calendar_sync"`
	CRM          SyncState `bson:"crm_sync" json:"crm_sync"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BookingRequest carries the fields a caller supplies to create a booking.
type BookingRequest struct {
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Inquiry   string    `json:"inquiry"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"`
}

// BookingPatch is a partial update; nil fields are left untouched.
type BookingPatch struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	Duration  *int       `json:"duration,omitempty"`
	Inquiry   *string    `json:"inquiry,omitempty"`
	Status    *string    `json:"status,omitempty"`
}

// BookingFilter selects bookings for list queries.
type BookingFilter struct {
	Email     string
	StartFrom time.Time
	StartTo   time.Time
	Statuses  []string
}
