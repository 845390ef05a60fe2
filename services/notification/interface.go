package notification

import (
	"context"

	"voicedesk/models"
)

// NotificationService sends templated booking messages. Implementations
// report transport failures through the result shape and never return a
// raised error for them.
type NotificationService interface {
	SendBookingConfirmation(ctx context.Context, booking *models.Booking) models.NotificationResult
	SendBookingUpdate(ctx context.Context, booking *models.Booking) models.NotificationResult
	SendCancellationNotification(ctx context.Context, booking *models.Booking) models.NotificationResult
}
