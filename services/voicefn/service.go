package voicefn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voicedesk/models"
	"voicedesk/services/booking"
	"voicedesk/services/calendar"
	"voicedesk/utils"

	"go.uber.org/zap"
)

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04"
	speakLayout    = "Monday, January 2 at 3:04 PM"
	defaultMinutes = 30
	fallbackReply  = "I'm sorry, I ran into a problem with that. Could we try again in a moment?"
)

// DefaultVoiceFunctionsService is the production implementation of the bridge.
type DefaultVoiceFunctionsService struct {
	BookingSvc  booking.BookingService
	CalendarSvc *calendar.Service
}

// CheckAvailability returns the open slots for a date. An empty day is a
// success with an empty payload, not a failure.
func (s *DefaultVoiceFunctionsService) CheckAvailability(ctx context.Context, args models.CheckAvailabilityArgs) models.VoiceResult {
	day, err := time.Parse(dateLayout, args.Date)
	if err != nil {
		return failure("I didn't catch which date you meant. Could you give me the date again?")
	}
	duration := args.Duration
	if duration <= 0 {
		duration = defaultMinutes
	}

	slots, err := s.CalendarSvc.GetAvailableSlots(ctx, day, duration)
	if err != nil {
		utils.GetLogger().Error("availability lookup failed", zap.String("date", args.Date), zap.Error(err))
		return failure(fallbackReply)
	}

	if len(slots) == 0 {
		return models.VoiceResult{
			Success: true,
			Message: fmt.Sprintf("I'm sorry, there are no open times on %s. Would another day work?", day.Format("Monday, January 2")),
			Slots:   []models.TimeSlot{},
		}
	}

	return models.VoiceResult{
		Success: true,
		Message: fmt.Sprintf("There are %d open times on %s, starting at %s.",
			len(slots), day.Format("Monday, January 2"), slots[0].Start.Format("3:04 PM")),
		Slots: slots,
	}
}

// BookAppointment composes a booking request from the flat voice arguments
// and creates the booking. Validation problems come back as speakable
// failures rather than errors.
func (s *DefaultVoiceFunctionsService) BookAppointment(ctx context.Context, args models.BookAppointmentArgs) models.VoiceResult {
	start, err := parseStart(args.Date, args.Time)
	if err != nil {
		return failure("I couldn't make out the date and time. Could you repeat them?")
	}
	duration := args.Duration
	if duration <= 0 {
		duration = defaultMinutes
	}

	req := models.BookingRequest{
		Name:      args.Name,
		Company:   args.Company,
		Email:     args.Email,
		Phone:     args.Phone,
		Inquiry:   args.Inquiry,
		StartTime: start,
		Duration:  duration,
	}

	created, err := s.BookingSvc.CreateBooking(ctx, req)
	if err != nil {
		var vErr *booking.ValidationError
		if errors.As(err, &vErr) {
			return failure(fmt.Sprintf("I couldn't book that: %s.", vErr.Message))
		}
		utils.GetLogger().Error("voice booking failed", zap.String("email", args.Email), zap.Error(err))
		return failure(fallbackReply)
	}

	return models.VoiceResult{
		Success:   true,
		Message:   fmt.Sprintf("You're all set for %s. A confirmation is on its way to %s.", created.StartTime.Format(speakLayout), created.Email),
		BookingID: created.ID,
	}
}

// GetUpcomingAppointments lists future bookings for the email, earliest first.
func (s *DefaultVoiceFunctionsService) GetUpcomingAppointments(ctx context.Context, args models.UpcomingAppointmentsArgs) models.VoiceResult {
	if strings.TrimSpace(args.Email) == "" {
		return failure("I need the email address the appointments were booked under.")
	}

	bookings, err := s.BookingSvc.ListUpcomingByEmail(ctx, args.Email, 10)
	if err != nil {
		utils.GetLogger().Error("upcoming appointments lookup failed", zap.String("email", args.Email), zap.Error(err))
		return failure(fallbackReply)
	}

	summaries := make([]models.AppointmentSummary, 0, len(bookings))
	for _, b := range bookings {
		summaries = append(summaries, models.AppointmentSummary{
			ID:        b.ID,
			StartTime: b.StartTime,
			Duration:  b.Duration,
			Status:    b.Status,
		})
	}

	message := "You don't have any upcoming appointments."
	if len(summaries) > 0 {
		message = fmt.Sprintf("You have %d upcoming appointment%s. The next one is on %s.",
			len(summaries), plural(len(summaries)), summaries[0].StartTime.Format(speakLayout))
	}

	return models.VoiceResult{
		Success:      true,
		Message:      message,
		Appointments: summaries,
	}
}

// CancelAppointment verifies ownership by email before cancelling, so one
// caller can never cancel another's booking.
func (s *DefaultVoiceFunctionsService) CancelAppointment(ctx context.Context, args models.CancelAppointmentArgs) models.VoiceResult {
	existing, err := s.BookingSvc.GetBookingByID(ctx, args.BookingID)
	if err != nil {
		var nfErr *booking.NotFoundError
		if errors.As(err, &nfErr) {
			return failure("I couldn't find that appointment. Could you double-check the reference?")
		}
		utils.GetLogger().Error("cancel lookup failed", zap.String("bookingID", args.BookingID), zap.Error(err))
		return failure(fallbackReply)
	}

	if !strings.EqualFold(existing.Email, args.Email) {
		authErr := &booking.AuthorizationError{Message: "that appointment is booked under a different email address"}
		utils.GetLogger().Warn("cancel ownership check failed",
			zap.String("bookingID", args.BookingID),
			zap.Error(authErr),
		)
		return failure("That appointment doesn't appear to be booked under your email address, so I can't cancel it.")
	}

	cancelled, err := s.BookingSvc.CancelBooking(ctx, args.BookingID)
	if err != nil {
		utils.GetLogger().Error("voice cancellation failed", zap.String("bookingID", args.BookingID), zap.Error(err))
		return failure(fallbackReply)
	}

	return models.VoiceResult{
		Success:   true,
		Message:   fmt.Sprintf("Done. Your appointment on %s has been cancelled.", cancelled.StartTime.Format(speakLayout)),
		BookingID: cancelled.ID,
	}
}

func parseStart(date, clock string) (time.Time, error) {
	return time.Parse(dateLayout+" "+timeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock))
}

func failure(message string) models.VoiceResult {
	return models.VoiceResult{Success: false, Message: message}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
