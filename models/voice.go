package models

import "time"

// TimeSlot is one open interval offered to a caller.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AppointmentSummary is the speakable projection of a booking.
type AppointmentSummary struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	Duration  int       `json:"duration"`
	Status    string    `json:"status"`
}

// VoiceResult is the uniform envelope returned by every voice function. The
// message is plain speakable text with no markup; payload fields are present
// only on success.
type VoiceResult struct {
	Success      bool                 `json:"success"`
	Message      string               `json:"message"`
	BookingID    string               `json:"booking_id,omitempty"`
	Slots        []TimeSlot           `json:"available_slots,omitempty"`
	Appointments []AppointmentSummary `json:"appointments,omitempty"`
}

// Flat argument records populated by the voice agent from collected slots.

type CheckAvailabilityArgs struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Duration int    `json:"duration"`
}

type BookAppointmentArgs struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company,omitempty"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM
	Duration int    `json:"duration"`
	Inquiry  string `json:"inquiry,omitempty"`
}

type UpcomingAppointmentsArgs struct {
	Email string `json:"email"`
}

type CancelAppointmentArgs struct {
	Email     string `json:"email"`
	BookingID string `json:"booking_id"`
}
