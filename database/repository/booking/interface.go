package bookingRepo

import (
	"context"

	"voicedesk/models"
)

// Bson fields holding per-integration sync state. These are the only fields
// the sync pipeline is allowed to write.
const (
	SyncFieldNotification = "notification_sync"
	SyncFieldCalendar     = "calendar_sync"
	SyncFieldCRM          = "crm_sync"
)

// BookingRepository defines data access for booking records.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, bookingID string, patch models.BookingPatch) (*models.Booking, error)
	// FindByID returns (nil, nil) when no booking exists for the id.
	FindByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// FindMany returns bookings matching the filter ordered by start time ascending.
	FindMany(ctx context.Context, filter models.BookingFilter, page, limit int64) ([]models.Booking, error)
	Delete(ctx context.Context, bookingID string) error

	// UpdateSyncState overwrites a single integration's sync state without
	// touching the rest of the document.
	UpdateSyncState(ctx context.Context, bookingID, field string, state models.SyncState) error
}
