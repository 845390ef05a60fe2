package conversation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"voicedesk/models"
	"voicedesk/services/voicefn"
	"voicedesk/utils"

	"go.uber.org/zap"
)

const (
	maxHistoryTurns = 20
	helpReply       = "I can book an appointment, check open times, list your upcoming appointments, or cancel one. What would you like to do?"
	declineReply    = "Okay, I won't go ahead. Is there anything else I can help you with?"
	reconfirmReply  = "Sorry, I want to be sure before I go ahead. Should I proceed? Please say yes or no."
)

// requiredSlots lists what must be collected before an intent can be
// confirmed. Everything else is optional and filled opportunistically.
var requiredSlots = map[string][]string{
	models.IntentBook:              {SlotDate, SlotTime, SlotEmail},
	models.IntentCheckAvailability: {SlotDate},
	models.IntentListAppointments:  {SlotEmail},
	models.IntentCancel:            {SlotEmail},
}

var slotQuestions = map[string]string{
	SlotDate:  "What date would you like?",
	SlotTime:  "What time works for you?",
	SlotEmail: "What email address should I use?",
}

// DefaultConversationService is the production conversation state machine.
type DefaultConversationService struct {
	Store     ContextStore
	Extractor IntentExtractor
	Voice     voicefn.VoiceFunctionsService
}

// ProcessMessage advances the session's dialogue by one turn and returns the
// reply to speak plus the updated context. Failure envelopes from the voice
// functions surface as graceful utterances, never as raw errors.
func (s *DefaultConversationService) ProcessMessage(ctx context.Context, sessionID, message string) (*models.ConversationReply, error) {
	convCtx, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation context: %w", err)
	}

	extraction, err := s.Extractor.Extract(ctx, message, convCtx)
	if err != nil {
		utils.GetLogger().Warn("intent extraction failed",
			zap.String("sessionID", sessionID),
			zap.Error(err),
		)
		extraction = &models.Extraction{Intent: models.IntentUnknown, Slots: map[string]string{}}
	}

	appendTurn(convCtx, "caller", message)
	response := s.advance(ctx, convCtx, extraction)
	appendTurn(convCtx, "agent", response)

	if err := s.Store.Set(ctx, sessionID, convCtx); err != nil {
		return nil, fmt.Errorf("failed to save conversation context: %w", err)
	}

	return &models.ConversationReply{Response: response, Context: convCtx}, nil
}

func (s *DefaultConversationService) advance(ctx context.Context, convCtx *models.ConversationContext, extraction *models.Extraction) string {
	switch convCtx.State {
	case models.StateCollectingSlots:
		return s.handleCollecting(convCtx, extraction)
	case models.StateConfirming:
		return s.handleConfirming(ctx, convCtx, extraction)
	default:
		// idle, fulfilled, or anything unexpected starts a fresh exchange.
		return s.handleIdle(convCtx, extraction)
	}
}

func (s *DefaultConversationService) handleIdle(convCtx *models.ConversationContext, extraction *models.Extraction) string {
	mergeSlots(convCtx.Slots, extraction.Slots)

	if extraction.Intent == models.IntentUnknown {
		convCtx.State = models.StateIdle
		convCtx.Intent = models.IntentUnknown
		return helpReply
	}

	convCtx.Intent = extraction.Intent
	convCtx.State = models.StateCollectingSlots
	return s.continueCollecting(convCtx)
}

func (s *DefaultConversationService) handleCollecting(convCtx *models.ConversationContext, extraction *models.Extraction) string {
	if extraction.Intent != models.IntentUnknown && extraction.Intent != convCtx.Intent {
		switchIntent(convCtx, extraction.Intent)
	}
	mergeSlots(convCtx.Slots, extraction.Slots)
	return s.continueCollecting(convCtx)
}

// continueCollecting either asks for the next missing required slot or moves
// to confirmation with a summary.
func (s *DefaultConversationService) continueCollecting(convCtx *models.ConversationContext) string {
	for _, slot := range requiredSlots[convCtx.Intent] {
		if convCtx.Slots[slot] == "" {
			convCtx.State = models.StateCollectingSlots
			return slotQuestions[slot]
		}
	}
	convCtx.State = models.StateConfirming
	return s.confirmationSummary(convCtx)
}

func (s *DefaultConversationService) handleConfirming(ctx context.Context, convCtx *models.ConversationContext, extraction *models.Extraction) string {
	if extraction.Negative {
		convCtx.State = models.StateIdle
		convCtx.Intent = models.IntentUnknown
		clearNonContactSlots(convCtx.Slots)
		return declineReply
	}

	// A correction: the caller supplied changed values. Fold them in and
	// re-confirm (or go back to collecting if the new intent needs more).
	if len(extraction.Slots) > 0 || (extraction.Intent != models.IntentUnknown && extraction.Intent != convCtx.Intent) {
		if extraction.Intent != models.IntentUnknown && extraction.Intent != convCtx.Intent {
			switchIntent(convCtx, extraction.Intent)
		}
		mergeSlots(convCtx.Slots, extraction.Slots)
		return s.continueCollecting(convCtx)
	}

	if extraction.Affirmative {
		return s.fulfill(ctx, convCtx)
	}
	return reconfirmReply
}

func (s *DefaultConversationService) fulfill(ctx context.Context, convCtx *models.ConversationContext) string {
	switch convCtx.Intent {
	case models.IntentBook:
		return s.fulfillBooking(ctx, convCtx)
	case models.IntentCheckAvailability:
		result := s.Voice.CheckAvailability(ctx, models.CheckAvailabilityArgs{
			Date:     convCtx.Slots[SlotDate],
			Duration: slotMinutes(convCtx.Slots),
		})
		convCtx.State = models.StateFulfilled
		return result.Message
	case models.IntentListAppointments:
		result := s.Voice.GetUpcomingAppointments(ctx, models.UpcomingAppointmentsArgs{
			Email: convCtx.Slots[SlotEmail],
		})
		convCtx.State = models.StateFulfilled
		return result.Message
	case models.IntentCancel:
		return s.fulfillCancellation(ctx, convCtx)
	default:
		convCtx.State = models.StateIdle
		return helpReply
	}
}

func (s *DefaultConversationService) fulfillBooking(ctx context.Context, convCtx *models.ConversationContext) string {
	result := s.Voice.BookAppointment(ctx, models.BookAppointmentArgs{
		Name:     convCtx.Slots[SlotName],
		Email:    convCtx.Slots[SlotEmail],
		Phone:    convCtx.Slots[SlotPhone],
		Company:  convCtx.Slots[SlotCompany],
		Date:     convCtx.Slots[SlotDate],
		Time:     convCtx.Slots[SlotTime],
		Duration: slotMinutes(convCtx.Slots),
		Inquiry:  convCtx.Slots[SlotInquiry],
	})

	if !result.Success {
		// Most booking failures are about the requested time; collect a new
		// one instead of replaying the same request.
		delete(convCtx.Slots, SlotDate)
		delete(convCtx.Slots, SlotTime)
		convCtx.State = models.StateCollectingSlots
		return result.Message
	}

	convCtx.State = models.StateFulfilled
	clearNonContactSlots(convCtx.Slots)
	return result.Message
}

func (s *DefaultConversationService) fulfillCancellation(ctx context.Context, convCtx *models.ConversationContext) string {
	email := convCtx.Slots[SlotEmail]

	bookingID := convCtx.Slots[SlotBookingID]
	if bookingID == "" {
		listing := s.Voice.GetUpcomingAppointments(ctx, models.UpcomingAppointmentsArgs{Email: email})
		if !listing.Success {
			convCtx.State = models.StateConfirming
			return listing.Message
		}

		candidates := listing.Appointments
		if date := convCtx.Slots[SlotDate]; date != "" {
			candidates = filterByDate(candidates, date)
		}
		switch len(candidates) {
		case 0:
			convCtx.State = models.StateFulfilled
			return "I couldn't find an upcoming appointment to cancel under that email address."
		case 1:
			bookingID = candidates[0].ID
		default:
			convCtx.State = models.StateCollectingSlots
			return fmt.Sprintf("You have %d upcoming appointments. What date is the one you'd like to cancel?", len(candidates))
		}
	}

	result := s.Voice.CancelAppointment(ctx, models.CancelAppointmentArgs{
		Email:     email,
		BookingID: bookingID,
	})
	if !result.Success {
		convCtx.State = models.StateIdle
		convCtx.Intent = models.IntentUnknown
		clearNonContactSlots(convCtx.Slots)
		return result.Message
	}

	convCtx.State = models.StateFulfilled
	clearNonContactSlots(convCtx.Slots)
	return result.Message
}

func (s *DefaultConversationService) confirmationSummary(convCtx *models.ConversationContext) string {
	slots := convCtx.Slots
	switch convCtx.Intent {
	case models.IntentBook:
		return fmt.Sprintf("I have you down for %s at %s for %d minutes, with confirmation going to %s. Shall I book it?",
			spokenDate(slots[SlotDate]), spokenTime(slots[SlotTime]), slotMinutes(slots), slots[SlotEmail])
	case models.IntentCheckAvailability:
		return fmt.Sprintf("You'd like to hear the open times on %s. Shall I check?", spokenDate(slots[SlotDate]))
	case models.IntentListAppointments:
		return fmt.Sprintf("You'd like your upcoming appointments for %s. Shall I look those up?", slots[SlotEmail])
	case models.IntentCancel:
		return fmt.Sprintf("You'd like to cancel your appointment booked under %s. Shall I go ahead?", slots[SlotEmail])
	default:
		return reconfirmReply
	}
}

// switchIntent changes the active intent mid-conversation. Contact details
// always survive the switch; date, time, and duration are dropped when either
// side of the switch is a cancellation, where they would refer to the wrong
// appointment.
func switchIntent(convCtx *models.ConversationContext, newIntent string) {
	if convCtx.Intent == models.IntentCancel || newIntent == models.IntentCancel {
		delete(convCtx.Slots, SlotDate)
		delete(convCtx.Slots, SlotTime)
		delete(convCtx.Slots, SlotDuration)
		delete(convCtx.Slots, SlotBookingID)
	}
	convCtx.Intent = newIntent
	convCtx.State = models.StateCollectingSlots
}

func mergeSlots(dst, src map[string]string) {
	for key, value := range src {
		if value != "" {
			dst[key] = value
		}
	}
}

func clearNonContactSlots(slots map[string]string) {
	for _, key := range []string{SlotDate, SlotTime, SlotDuration, SlotInquiry, SlotBookingID} {
		delete(slots, key)
	}
}

func slotMinutes(slots map[string]string) int {
	if mins, err := strconv.Atoi(slots[SlotDuration]); err == nil && mins > 0 {
		return mins
	}
	return 30
}

func filterByDate(appointments []models.AppointmentSummary, date string) []models.AppointmentSummary {
	var matched []models.AppointmentSummary
	for _, a := range appointments {
		if a.StartTime.Format("2006-01-02") == date {
			matched = append(matched, a)
		}
	}
	return matched
}

func spokenDate(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("Monday, January 2")
	}
	return date
}

func spokenTime(clock string) string {
	if t, err := time.Parse("15:04", clock); err == nil {
		return t.Format("3:04 PM")
	}
	return clock
}

func appendTurn(convCtx *models.ConversationContext, role, text string) {
	convCtx.History = append(convCtx.History, models.ConversationTurn{
		Role: role,
		Text: text,
		At:   time.Now().UTC(),
	})
	if len(convCtx.History) > maxHistoryTurns {
		convCtx.History = convCtx.History[len(convCtx.History)-maxHistoryTurns:]
	}
}
