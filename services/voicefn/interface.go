package voicefn

import (
	"context"

	"voicedesk/models"
)

// VoiceFunctionsService is the fixed named-operation contract consumed by the
// external voice agent runtime. Every operation returns the uniform result
// envelope; errors from the layers beneath never propagate past this boundary.
type VoiceFunctionsService interface {
	CheckAvailability(ctx context.Context, args models.CheckAvailabilityArgs) models.VoiceResult
	BookAppointment(ctx context.Context, args models.BookAppointmentArgs) models.VoiceResult
	GetUpcomingAppointments(ctx context.Context, args models.UpcomingAppointmentsArgs) models.VoiceResult
	CancelAppointment(ctx context.Context, args models.CancelAppointmentArgs) models.VoiceResult
}
