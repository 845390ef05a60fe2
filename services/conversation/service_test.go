package conversation

import (
	"context"
	"testing"
	"time"

	"voicedesk/models"

	"github.com/stretchr/testify/assert"
)

// memStore keeps contexts in memory for tests.
type memStore struct {
	contexts map[string]*models.ConversationContext
}

func newMemStore() *memStore {
	return &memStore{contexts: make(map[string]*models.ConversationContext)}
}

func (s *memStore) Get(ctx context.Context, sessionID string) (*models.ConversationContext, error) {
	if c, ok := s.contexts[sessionID]; ok {
		return c, nil
	}
	return newContext(sessionID), nil
}

func (s *memStore) Set(ctx context.Context, sessionID string, convCtx *models.ConversationContext) error {
	s.contexts[sessionID] = convCtx
	return nil
}

func (s *memStore) Clear(ctx context.Context, sessionID string) error {
	delete(s.contexts, sessionID)
	return nil
}

// fakeVoice scripts bridge results and records the arguments it was called with.
type fakeVoice struct {
	bookArgs     *models.BookAppointmentArgs
	bookResult   models.VoiceResult
	availArgs    *models.CheckAvailabilityArgs
	availResult  models.VoiceResult
	listArgs     *models.UpcomingAppointmentsArgs
	listResult   models.VoiceResult
	cancelArgs   *models.CancelAppointmentArgs
	cancelResult models.VoiceResult
}

func (f *fakeVoice) CheckAvailability(ctx context.Context, args models.CheckAvailabilityArgs) models.VoiceResult {
	f.availArgs = &args
	return f.availResult
}

func (f *fakeVoice) BookAppointment(ctx context.Context, args models.BookAppointmentArgs) models.VoiceResult {
	f.bookArgs = &args
	return f.bookResult
}

func (f *fakeVoice) GetUpcomingAppointments(ctx context.Context, args models.UpcomingAppointmentsArgs) models.VoiceResult {
	f.listArgs = &args
	return f.listResult
}

func (f *fakeVoice) CancelAppointment(ctx context.Context, args models.CancelAppointmentArgs) models.VoiceResult {
	f.cancelArgs = &args
	return f.cancelResult
}

// fixedNow is a Monday so relative dates resolve deterministically.
var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestService(voice *fakeVoice) (*DefaultConversationService, *memStore) {
	store := newMemStore()
	svc := &DefaultConversationService{
		Store:     store,
		Extractor: &RuleExtractor{Clock: func() time.Time { return fixedNow }},
		Voice:     voice,
	}
	return svc, store
}

func TestConversationBooksAcrossThreeTurns(t *testing.T) {
	voice := &fakeVoice{bookResult: models.VoiceResult{
		Success:   true,
		Message:   "You're all set for Tuesday, March 3 at 2:00 PM.",
		BookingID: "bk-1",
	}}
	svc, _ := newTestService(voice)
	ctx := context.Background()

	reply, err := svc.ProcessMessage(ctx, "s1", "I'd like to book an appointment tomorrow at 2pm")
	assert.NoError(t, err)
	assert.Equal(t, models.StateCollectingSlots, reply.Context.State)
	assert.Equal(t, models.IntentBook, reply.Context.Intent)
	assert.Contains(t, reply.Response, "email")

	reply, err = svc.ProcessMessage(ctx, "s1", "it's jane@acme.com")
	assert.NoError(t, err)
	assert.Equal(t, models.StateConfirming, reply.Context.State)
	assert.Contains(t, reply.Response, "jane@acme.com")
	assert.Contains(t, reply.Response, "2:00 PM")

	reply, err = svc.ProcessMessage(ctx, "s1", "yes")
	assert.NoError(t, err)
	assert.Equal(t, models.StateFulfilled, reply.Context.State)
	assert.Equal(t, voice.bookResult.Message, reply.Response)

	assert.NotNil(t, voice.bookArgs)
	assert.Equal(t, "2026-03-03", voice.bookArgs.Date)
	assert.Equal(t, "14:00", voice.bookArgs.Time)
	assert.Equal(t, "jane@acme.com", voice.bookArgs.Email)
	assert.Equal(t, 30, voice.bookArgs.Duration)
}

func TestConversationUnknownIntentOffersHelp(t *testing.T) {
	svc, _ := newTestService(&fakeVoice{})

	reply, err := svc.ProcessMessage(context.Background(), "s1", "hello there")

	assert.NoError(t, err)
	assert.Equal(t, models.StateIdle, reply.Context.State)
	assert.Equal(t, models.IntentUnknown, reply.Context.Intent)
	assert.Contains(t, reply.Response, "book an appointment")
}

func TestConversationDeclineAtConfirmationResets(t *testing.T) {
	svc, store := newTestService(&fakeVoice{})
	ctx := context.Background()

	svc.ProcessMessage(ctx, "s1", "book an appointment tomorrow at 2pm")
	svc.ProcessMessage(ctx, "s1", "jane@acme.com")
	reply, err := svc.ProcessMessage(ctx, "s1", "no, forget it")

	assert.NoError(t, err)
	assert.Equal(t, models.StateIdle, reply.Context.State)
	assert.Equal(t, models.IntentUnknown, reply.Context.Intent)

	// Contact details survive the decline; the appointment details do not.
	saved := store.contexts["s1"]
	assert.Equal(t, "jane@acme.com", saved.Slots[SlotEmail])
	assert.Empty(t, saved.Slots[SlotDate])
	assert.Empty(t, saved.Slots[SlotTime])
}

func TestConversationCorrectionAtConfirmationReconfirms(t *testing.T) {
	voice := &fakeVoice{}
	svc, _ := newTestService(voice)
	ctx := context.Background()

	svc.ProcessMessage(ctx, "s1", "book an appointment tomorrow at 2pm")
	svc.ProcessMessage(ctx, "s1", "jane@acme.com")
	reply, err := svc.ProcessMessage(ctx, "s1", "make it 3pm instead")

	assert.NoError(t, err)
	assert.Equal(t, models.StateConfirming, reply.Context.State)
	assert.Contains(t, reply.Response, "3:00 PM")
	assert.Nil(t, voice.bookArgs)
}

func TestConversationAmbiguousConfirmationAsksAgain(t *testing.T) {
	voice := &fakeVoice{}
	svc, _ := newTestService(voice)
	ctx := context.Background()

	svc.ProcessMessage(ctx, "s1", "book an appointment tomorrow at 2pm")
	svc.ProcessMessage(ctx, "s1", "jane@acme.com")
	reply, err := svc.ProcessMessage(ctx, "s1", "hmm")

	assert.NoError(t, err)
	assert.Equal(t, models.StateConfirming, reply.Context.State)
	assert.Nil(t, voice.bookArgs)
}

func TestConversationBookingFailureRecollectsTime(t *testing.T) {
	voice := &fakeVoice{bookResult: models.VoiceResult{
		Success: false,
		Message: "I couldn't book that: the requested time is in the past.",
	}}
	svc, store := newTestService(voice)
	ctx := context.Background()

	svc.ProcessMessage(ctx, "s1", "book an appointment tomorrow at 2pm")
	svc.ProcessMessage(ctx, "s1", "jane@acme.com")
	reply, err := svc.ProcessMessage(ctx, "s1", "yes")

	assert.NoError(t, err)
	assert.Equal(t, models.StateCollectingSlots, reply.Context.State)
	assert.Equal(t, voice.bookResult.Message, reply.Response)

	saved := store.contexts["s1"]
	assert.Empty(t, saved.Slots[SlotDate])
	assert.Empty(t, saved.Slots[SlotTime])
	assert.Equal(t, "jane@acme.com", saved.Slots[SlotEmail])
}

func TestConversationAvailabilityFlow(t *testing.T) {
	voice := &fakeVoice{availResult: models.VoiceResult{
		Success: true,
		Message: "There are 16 open times on Tuesday, March 3, starting at 9:00 AM.",
	}}
	svc, _ := newTestService(voice)
	ctx := context.Background()

	reply, err := svc.ProcessMessage(ctx, "s1", "what times are available tomorrow?")
	assert.NoError(t, err)
	assert.Equal(t, models.StateConfirming, reply.Context.State)

	reply, err = svc.ProcessMessage(ctx, "s1", "yes please")
	assert.NoError(t, err)
	assert.Equal(t, models.StateFulfilled, reply.Context.State)
	assert.Equal(t, voice.availResult.Message, reply.Response)
	assert.Equal(t, "2026-03-03", voice.availArgs.Date)
}

func TestConversationCancelDisambiguatesByDate(t *testing.T) {
	first := time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	voice := &fakeVoice{
		listResult: models.VoiceResult{
			Success: true,
			Appointments: []models.AppointmentSummary{
				{ID: "bk-1", StartTime: first, Duration: 30},
				{ID: "bk-2", StartTime: second, Duration: 30},
			},
		},
		cancelResult: models.VoiceResult{
			Success:   true,
			Message:   "Done. Your appointment on Thursday, March 5 at 9:00 AM has been cancelled.",
			BookingID: "bk-2",
		},
	}
	svc, _ := newTestService(voice)
	ctx := context.Background()

	svc.ProcessMessage(ctx, "s1", "I need to cancel my appointment")
	svc.ProcessMessage(ctx, "s1", "jane@acme.com")
	reply, err := svc.ProcessMessage(ctx, "s1", "yes")
	assert.NoError(t, err)
	assert.Equal(t, models.StateCollectingSlots, reply.Context.State)
	assert.Contains(t, reply.Response, "2 upcoming appointments")

	reply, err = svc.ProcessMessage(ctx, "s1", "the one on 2026-03-05")
	assert.NoError(t, err)
	assert.Equal(t, models.StateConfirming, reply.Context.State)

	reply, err = svc.ProcessMessage(ctx, "s1", "yes")
	assert.NoError(t, err)
	assert.Equal(t, models.StateFulfilled, reply.Context.State)
	assert.Equal(t, "bk-2", voice.cancelArgs.BookingID)
	assert.Equal(t, "jane@acme.com", voice.cancelArgs.Email)
}

func TestConversationCancelSingleUpcomingNeedsNoDisambiguation(t *testing.T) {
	voice := &fakeVoice{
		listResult: models.VoiceResult{
			Success: true,
			Appointments: []models.AppointmentSummary{
				{ID: "bk-1", StartTime: time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC), Duration: 30},
			},
		},
		cancelResult: models.VoiceResult{Success: true, Message: "Done."},
	}
	svc, _ := newTestService(voice)
	ctx := context.Background()

	svc.ProcessMessage(ctx, "s1", "cancel my appointment")
	svc.ProcessMessage(ctx, "s1", "jane@acme.com")
	reply, err := svc.ProcessMessage(ctx, "s1", "yes")

	assert.NoError(t, err)
	assert.Equal(t, models.StateFulfilled, reply.Context.State)
	assert.Equal(t, "bk-1", voice.cancelArgs.BookingID)
}

func TestConversationFulfilledSessionStartsOver(t *testing.T) {
	voice := &fakeVoice{bookResult: models.VoiceResult{Success: true, Message: "You're all set."}}
	svc, _ := newTestService(voice)
	ctx := context.Background()

	svc.ProcessMessage(ctx, "s1", "book an appointment tomorrow at 2pm for jane@acme.com")
	svc.ProcessMessage(ctx, "s1", "yes")

	reply, err := svc.ProcessMessage(ctx, "s1", "what times are available tomorrow?")
	assert.NoError(t, err)
	assert.Equal(t, models.IntentCheckAvailability, reply.Context.Intent)
	assert.Equal(t, models.StateConfirming, reply.Context.State)
}

func TestConversationRecordsHistory(t *testing.T) {
	svc, store := newTestService(&fakeVoice{})
	ctx := context.Background()

	svc.ProcessMessage(ctx, "s1", "book an appointment tomorrow at 2pm")

	saved := store.contexts["s1"]
	assert.Len(t, saved.History, 2)
	assert.Equal(t, "caller", saved.History[0].Role)
	assert.Equal(t, "agent", saved.History[1].Role)
}
