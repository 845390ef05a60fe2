package booking

import (
	"context"
	"time"

	"voicedesk/models"
)

// BookingService owns the booking lifecycle: validation, persistence, and
// scheduling of the downstream synchronization tasks.
type BookingService interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	UpdateBooking(ctx context.Context, bookingID string, patch models.BookingPatch) (*models.Booking, error)
	// CancelBooking is idempotent: cancelling a cancelled booking is a no-op.
	CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListUpcomingByEmail(ctx context.Context, email string, limit int64) ([]models.Booking, error)
}

// SyncScheduler submits the three post-write synchronization tasks for a
// booking. Implementations must not block on the tasks themselves.
type SyncScheduler interface {
	ScheduleSync(bookingID, op string, triggeredAt time.Time) error
}
