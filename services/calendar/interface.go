package calendar

import (
	"context"
	"time"

	"voicedesk/models"
)

// Gateway is the external calendar vendor surface: busy intervals plus
// create/delete of events keyed by booking id.
type Gateway interface {
	GetBusyIntervals(ctx context.Context, rangeStart, rangeEnd time.Time) ([]models.TimeSlot, error)
	CreateEvent(ctx context.Context, booking *models.Booking) error
	DeleteEvent(ctx context.Context, bookingID string) error
}
