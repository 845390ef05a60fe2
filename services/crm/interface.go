package crm

import (
	"context"

	"voicedesk/models"
)

// Deal stages pushed to the CRM as a booking moves through its lifecycle.
const (
	StageScheduled = "appointmentscheduled"
	StageCancelled = "closedlost"
)

// Gateway is the external CRM vendor surface.
type Gateway interface {
	UpsertContact(ctx context.Context, booking *models.Booking) error
	SyncDealStage(ctx context.Context, bookingID, stage string) error
}
