package voicefn

import (
	"context"
	"testing"
	"time"

	"voicedesk/models"
	"voicedesk/services/booking"
	"voicedesk/services/calendar"

	"github.com/stretchr/testify/assert"
)

// fakeBookingService is a scripted stand-in for the orchestrator.
type fakeBookingService struct {
	createErr   error
	created     *models.BookingRequest
	upcoming    []models.Booking
	upcomingErr error
	byID        map[string]*models.Booking
	cancelled   []string
	cancelErr   error
}

func (f *fakeBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &req
	return &models.Booking{
		ID:        "bk-1",
		Name:      req.Name,
		Email:     req.Email,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Status:    models.StatusPending,
	}, nil
}

func (f *fakeBookingService) UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingService) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	b := f.byID[id]
	cancelled := *b
	cancelled.Status = models.StatusCancelled
	return &cancelled, nil
}

func (f *fakeBookingService) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := f.byID[id]; ok {
		return b, nil
	}
	return nil, &booking.NotFoundError{BookingID: id}
}

func (f *fakeBookingService) ListUpcomingByEmail(ctx context.Context, email string, limit int64) ([]models.Booking, error) {
	if f.upcomingErr != nil {
		return nil, f.upcomingErr
	}
	return f.upcoming, nil
}

// repo-less calendar service: all slots come from business hours.
type emptyRepo struct{}

func (emptyRepo) Create(ctx context.Context, b *models.Booking) error { return nil }
func (emptyRepo) Update(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	return nil, nil
}
func (emptyRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) { return nil, nil }
func (emptyRepo) FindMany(ctx context.Context, filter models.BookingFilter, page, limit int64) ([]models.Booking, error) {
	return nil, nil
}
func (emptyRepo) Delete(ctx context.Context, id string) error { return nil }
func (emptyRepo) UpdateSyncState(ctx context.Context, id, field string, state models.SyncState) error {
	return nil
}

func newBridge(bookingSvc booking.BookingService) *DefaultVoiceFunctionsService {
	return &DefaultVoiceFunctionsService{
		BookingSvc: bookingSvc,
		CalendarSvc: &calendar.Service{
			Repo:       emptyRepo{},
			HoursStart: "09:00",
			HoursEnd:   "17:00",
		},
	}
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestCheckAvailabilityReturnsSlots(t *testing.T) {
	bridge := newBridge(&fakeBookingService{})

	result := bridge.CheckAvailability(context.Background(), models.CheckAvailabilityArgs{Date: futureDate()})

	assert.True(t, result.Success)
	assert.Len(t, result.Slots, 16)
	assert.NotEmpty(t, result.Message)
}

func TestCheckAvailabilityRejectsUnparseableDate(t *testing.T) {
	bridge := newBridge(&fakeBookingService{})

	result := bridge.CheckAvailability(context.Background(), models.CheckAvailabilityArgs{Date: "next thursday-ish"})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Message)
}

func TestBookAppointmentReturnsConfirmation(t *testing.T) {
	svc := &fakeBookingService{}
	bridge := newBridge(svc)

	result := bridge.BookAppointment(context.Background(), models.BookAppointmentArgs{
		Name:  "Jane Miller",
		Email: "jane@acme.com",
		Date:  futureDate(),
		Time:  "14:00",
	})

	assert.True(t, result.Success)
	assert.Equal(t, "bk-1", result.BookingID)
	assert.Contains(t, result.Message, "jane@acme.com")
	// Duration defaults when the caller does not state one.
	assert.Equal(t, 30, svc.created.Duration)
	assert.Equal(t, 14, svc.created.StartTime.Hour())
}

func TestBookAppointmentSpeaksValidationFailures(t *testing.T) {
	svc := &fakeBookingService{createErr: booking.NewValidationError("the requested time is in the past")}
	bridge := newBridge(svc)

	result := bridge.BookAppointment(context.Background(), models.BookAppointmentArgs{
		Email: "jane@acme.com",
		Date:  futureDate(),
		Time:  "14:00",
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "the requested time is in the past")
}

func TestBookAppointmentRejectsGarbledDateTime(t *testing.T) {
	bridge := newBridge(&fakeBookingService{})

	result := bridge.BookAppointment(context.Background(), models.BookAppointmentArgs{
		Email: "jane@acme.com",
		Date:  "someday",
		Time:  "soon",
	})

	assert.False(t, result.Success)
}

func TestGetUpcomingAppointmentsListsSummaries(t *testing.T) {
	start := time.Now().UTC().Add(24 * time.Hour)
	svc := &fakeBookingService{upcoming: []models.Booking{
		{ID: "bk-1", Email: "jane@acme.com", StartTime: start, Duration: 30, Status: models.StatusPending},
		{ID: "bk-2", Email: "jane@acme.com", StartTime: start.Add(48 * time.Hour), Duration: 60, Status: models.StatusConfirmed},
	}}
	bridge := newBridge(svc)

	result := bridge.GetUpcomingAppointments(context.Background(), models.UpcomingAppointmentsArgs{Email: "jane@acme.com"})

	assert.True(t, result.Success)
	assert.Len(t, result.Appointments, 2)
	assert.Equal(t, "bk-1", result.Appointments[0].ID)
	assert.Contains(t, result.Message, "2 upcoming appointments")
}

func TestGetUpcomingAppointmentsEmptyIsSuccess(t *testing.T) {
	bridge := newBridge(&fakeBookingService{})

	result := bridge.GetUpcomingAppointments(context.Background(), models.UpcomingAppointmentsArgs{Email: "jane@acme.com"})

	assert.True(t, result.Success)
	assert.Empty(t, result.Appointments)
	assert.Contains(t, result.Message, "don't have any upcoming appointments")
}

func TestGetUpcomingAppointmentsRequiresEmail(t *testing.T) {
	bridge := newBridge(&fakeBookingService{})

	result := bridge.GetUpcomingAppointments(context.Background(), models.UpcomingAppointmentsArgs{})

	assert.False(t, result.Success)
}

func TestCancelAppointmentChecksOwnership(t *testing.T) {
	svc := &fakeBookingService{byID: map[string]*models.Booking{
		"bk-1": {ID: "bk-1", Email: "jane@acme.com", StartTime: time.Now().UTC().Add(24 * time.Hour)},
	}}
	bridge := newBridge(svc)

	result := bridge.CancelAppointment(context.Background(), models.CancelAppointmentArgs{
		Email:     "intruder@other.com",
		BookingID: "bk-1",
	})

	assert.False(t, result.Success)
	assert.Empty(t, svc.cancelled)
}

func TestCancelAppointmentCancelsOwnBooking(t *testing.T) {
	svc := &fakeBookingService{byID: map[string]*models.Booking{
		"bk-1": {ID: "bk-1", Email: "jane@acme.com", StartTime: time.Now().UTC().Add(24 * time.Hour)},
	}}
	bridge := newBridge(svc)

	result := bridge.CancelAppointment(context.Background(), models.CancelAppointmentArgs{
		Email:     "Jane@Acme.com",
		BookingID: "bk-1",
	})

	assert.True(t, result.Success)
	assert.Equal(t, []string{"bk-1"}, svc.cancelled)
}

func TestCancelAppointmentUnknownBooking(t *testing.T) {
	bridge := newBridge(&fakeBookingService{byID: map[string]*models.Booking{}})

	result := bridge.CancelAppointment(context.Background(), models.CancelAppointmentArgs{
		Email:     "jane@acme.com",
		BookingID: "missing",
	})

	assert.False(t, result.Success)
}
