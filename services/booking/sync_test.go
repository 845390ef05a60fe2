package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingRepo "voicedesk/database/repository/booking"
	"voicedesk/models"

	"github.com/stretchr/testify/assert"
)

// fakeNotifier fails a configured number of times before succeeding.
type fakeNotifier struct {
	mu       sync.Mutex
	failures int
	calls    int
	lastOp   string
}

func (n *fakeNotifier) send(op string) models.NotificationResult {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.lastOp = op
	if n.calls <= n.failures {
		return models.NotificationResult{Success: false, Error: "smtp connection refused"}
	}
	return models.NotificationResult{Success: true, MessageID: "msg-1"}
}

func (n *fakeNotifier) SendBookingConfirmation(ctx context.Context, b *models.Booking) models.NotificationResult {
	return n.send(models.SyncOpCreated)
}

func (n *fakeNotifier) SendBookingUpdate(ctx context.Context, b *models.Booking) models.NotificationResult {
	return n.send(models.SyncOpUpdated)
}

func (n *fakeNotifier) SendCancellationNotification(ctx context.Context, b *models.Booking) models.NotificationResult {
	return n.send(models.SyncOpCancelled)
}

// fakeCalendarGateway records event writes.
type fakeCalendarGateway struct {
	mu      sync.Mutex
	created []string
	deleted []string
	err     error
}

func (g *fakeCalendarGateway) GetBusyIntervals(ctx context.Context, from, to time.Time) ([]models.TimeSlot, error) {
	return nil, nil
}

func (g *fakeCalendarGateway) CreateEvent(ctx context.Context, b *models.Booking) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.created = append(g.created, b.ID)
	return nil
}

func (g *fakeCalendarGateway) DeleteEvent(ctx context.Context, bookingID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.deleted = append(g.deleted, bookingID)
	return nil
}

// fakeCRMGateway records contact and deal-stage writes.
type fakeCRMGateway struct {
	mu       sync.Mutex
	upserted []string
	stages   map[string]string
}

func (g *fakeCRMGateway) UpsertContact(ctx context.Context, b *models.Booking) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.upserted = append(g.upserted, b.Email)
	return nil
}

func (g *fakeCRMGateway) SyncDealStage(ctx context.Context, bookingID, stage string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stages == nil {
		g.stages = make(map[string]string)
	}
	g.stages[bookingID] = stage
	return nil
}

func seedBooking(repo *fakeBookingRepo, id string) *models.Booking {
	b := &models.Booking{
		ID:        id,
		Name:      "Jane Miller",
		Email:     "jane@acme.com",
		StartTime: time.Now().UTC().Add(24 * time.Hour),
		Duration:  30,
		Status:    models.StatusPending,
		UpdatedAt: time.Now().UTC(),
	}
	repo.bookings[id] = b
	return b
}

func payloadFor(b *models.Booking, op string) models.SyncPayload {
	return models.SyncPayload{BookingID: b.ID, Op: op, TriggeredAt: b.UpdatedAt}
}

func TestSyncRunnerRecordsNotificationSuccess(t *testing.T) {
	repo := newFakeBookingRepo()
	b := seedBooking(repo, "b1")
	notifier := &fakeNotifier{}
	runner := &SyncRunner{Repo: repo, Notifier: notifier, MaxAttempts: 3}

	err := runner.RunNotificationSync(context.Background(), payloadFor(b, models.SyncOpCreated))

	assert.NoError(t, err)
	assert.Equal(t, 1, notifier.calls)
	assert.Len(t, repo.syncWrites, 1)
	write := repo.syncWrites[0]
	assert.Equal(t, bookingRepo.SyncFieldNotification, write.field)
	assert.True(t, write.state.Done)
	assert.NotNil(t, write.state.CompletedAt)
	assert.False(t, write.state.ManualFollowUp)
}

func TestSyncRunnerRetriesThenSucceeds(t *testing.T) {
	repo := newFakeBookingRepo()
	b := seedBooking(repo, "b1")
	notifier := &fakeNotifier{failures: 2}
	runner := &SyncRunner{Repo: repo, Notifier: notifier, MaxAttempts: 3, RetryDelay: time.Millisecond}

	err := runner.RunNotificationSync(context.Background(), payloadFor(b, models.SyncOpCreated))

	assert.NoError(t, err)
	assert.Equal(t, 3, notifier.calls)
	assert.True(t, repo.syncWrites[0].state.Done)
}

func TestSyncRunnerExhaustsRetriesAndFlagsManualFollowUp(t *testing.T) {
	repo := newFakeBookingRepo()
	b := seedBooking(repo, "b1")
	notifier := &fakeNotifier{failures: 10}
	runner := &SyncRunner{Repo: repo, Notifier: notifier, MaxAttempts: 3, RetryDelay: time.Millisecond}

	err := runner.RunNotificationSync(context.Background(), payloadFor(b, models.SyncOpCreated))

	assert.NoError(t, err)
	assert.Equal(t, 3, notifier.calls)
	assert.Len(t, repo.syncWrites, 1)
	write := repo.syncWrites[0]
	assert.False(t, write.state.Done)
	assert.True(t, write.state.ManualFollowUp)
	assert.Contains(t, write.state.LastError, "smtp connection refused")
}

func TestSyncRunnerDropsStaleTrigger(t *testing.T) {
	repo := newFakeBookingRepo()
	b := seedBooking(repo, "b1")
	notifier := &fakeNotifier{}
	runner := &SyncRunner{Repo: repo, Notifier: notifier, MaxAttempts: 3}

	stale := models.SyncPayload{
		BookingID:   b.ID,
		Op:          models.SyncOpCreated,
		TriggeredAt: b.UpdatedAt.Add(-5 * time.Second),
	}
	err := runner.RunNotificationSync(context.Background(), stale)

	assert.NoError(t, err)
	assert.Equal(t, 0, notifier.calls)
	assert.Empty(t, repo.syncWrites)
}

func TestSyncRunnerDropsMissingBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	notifier := &fakeNotifier{}
	runner := &SyncRunner{Repo: repo, Notifier: notifier, MaxAttempts: 3}

	err := runner.RunNotificationSync(context.Background(), models.SyncPayload{
		BookingID:   "gone",
		Op:          models.SyncOpCreated,
		TriggeredAt: time.Now().UTC(),
	})

	assert.NoError(t, err)
	assert.Equal(t, 0, notifier.calls)
	assert.Empty(t, repo.syncWrites)
}

func TestSyncRunnerDisabledIntegrationFlagsWithoutRetry(t *testing.T) {
	repo := newFakeBookingRepo()
	b := seedBooking(repo, "b1")
	runner := &SyncRunner{Repo: repo, Notifier: nil, MaxAttempts: 3, RetryDelay: time.Hour}

	start := time.Now()
	err := runner.RunNotificationSync(context.Background(), payloadFor(b, models.SyncOpCreated))

	assert.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, repo.syncWrites, 1)
	assert.True(t, repo.syncWrites[0].state.ManualFollowUp)
}

func TestSyncRunnerCalendarCancellationDeletesEvent(t *testing.T) {
	repo := newFakeBookingRepo()
	b := seedBooking(repo, "b1")
	gw := &fakeCalendarGateway{}
	runner := &SyncRunner{Repo: repo, Calendar: gw, MaxAttempts: 1}

	err := runner.RunCalendarSync(context.Background(), payloadFor(b, models.SyncOpCancelled))

	assert.NoError(t, err)
	assert.Equal(t, []string{"b1"}, gw.deleted)
	assert.Empty(t, gw.created)
	assert.Equal(t, bookingRepo.SyncFieldCalendar, repo.syncWrites[0].field)
	assert.True(t, repo.syncWrites[0].state.Done)
}

func TestSyncRunnerCalendarFailureDoesNotTouchBooking(t *testing.T) {
	repo := newFakeBookingRepo()
	b := seedBooking(repo, "b1")
	gw := &fakeCalendarGateway{err: errors.New("vendor 500")}
	runner := &SyncRunner{Repo: repo, Calendar: gw, MaxAttempts: 2, RetryDelay: time.Millisecond}

	err := runner.RunCalendarSync(context.Background(), payloadFor(b, models.SyncOpCreated))

	assert.NoError(t, err)
	stored, _ := repo.FindByID(context.Background(), b.ID)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.True(t, repo.syncWrites[0].state.ManualFollowUp)
}

func TestSyncRunnerCRMCreationUpsertsContactAndStagesDeal(t *testing.T) {
	repo := newFakeBookingRepo()
	b := seedBooking(repo, "b1")
	gw := &fakeCRMGateway{}
	runner := &SyncRunner{Repo: repo, CRM: gw, MaxAttempts: 1}

	err := runner.RunCRMSync(context.Background(), payloadFor(b, models.SyncOpCreated))

	assert.NoError(t, err)
	assert.Equal(t, []string{"jane@acme.com"}, gw.upserted)
	assert.Equal(t, "appointmentscheduled", gw.stages["b1"])
	assert.True(t, repo.syncWrites[0].state.Done)
}
