package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	bookingRepo "voicedesk/database/repository/booking"
	"voicedesk/models"
	"voicedesk/services/calendar"
	"voicedesk/services/crm"
	"voicedesk/services/notification"
	"voicedesk/utils"

	"go.uber.org/zap"
)

// SyncRunner executes the three post-booking synchronization units. Each unit
// retries its gateway call up to MaxAttempts with RetryDelay between attempts,
// then marks the booking for manual follow-up. A failure in one unit never
// affects the others and never touches the booking itself.
//
// Units for the same booking id are serialized through a keyed mutex; units
// for different bookings run fully in parallel. A unit whose trigger predates
// the booking's last write is dropped so a stale "confirmation sent" can never
// land after a cancellation has been recorded.
type SyncRunner struct {
	Repo     bookingRepo.BookingRepository
	Notifier notification.NotificationService // nil when the integration is disabled
	Calendar calendar.Gateway                 // nil when the integration is disabled
	CRM      crm.Gateway                      // nil when the integration is disabled

	MaxAttempts    int
	RetryDelay     time.Duration
	GatewayTimeout time.Duration

	locks keyedMutex
}

// RunNotificationSync sends the notification matching the triggering op and
// records the outcome on the booking's notification sync state.
func (r *SyncRunner) RunNotificationSync(ctx context.Context, p models.SyncPayload) error {
	return r.run(ctx, p, bookingRepo.SyncFieldNotification, func(ctx context.Context, b *models.Booking) error {
		if r.Notifier == nil {
			return errIntegrationDisabled
		}
		var result models.NotificationResult
		switch p.Op {
		case models.SyncOpUpdated:
			result = r.Notifier.SendBookingUpdate(ctx, b)
		case models.SyncOpCancelled:
			result = r.Notifier.SendCancellationNotification(ctx, b)
		default:
			result = r.Notifier.SendBookingConfirmation(ctx, b)
		}
		if !result.Success {
			return fmt.Errorf("notification delivery failed: %s", result.Error)
		}
		return nil
	})
}

// RunCalendarSync mirrors the booking into the calendar: create on creation,
// recreate on update, best-effort delete on cancellation.
func (r *SyncRunner) RunCalendarSync(ctx context.Context, p models.SyncPayload) error {
	return r.run(ctx, p, bookingRepo.SyncFieldCalendar, func(ctx context.Context, b *models.Booking) error {
		if r.Calendar == nil {
			return errIntegrationDisabled
		}
		switch p.Op {
		case models.SyncOpCancelled:
			return r.Calendar.DeleteEvent(ctx, b.ID)
		case models.SyncOpUpdated:
			if err := r.Calendar.DeleteEvent(ctx, b.ID); err != nil {
				return err
			}
			return r.Calendar.CreateEvent(ctx, b)
		default:
			return r.Calendar.CreateEvent(ctx, b)
		}
	})
}

// RunCRMSync upserts the contact and pushes the deal stage for the op.
func (r *SyncRunner) RunCRMSync(ctx context.Context, p models.SyncPayload) error {
	return r.run(ctx, p, bookingRepo.SyncFieldCRM, func(ctx context.Context, b *models.Booking) error {
		if r.CRM == nil {
			return errIntegrationDisabled
		}
		switch p.Op {
		case models.SyncOpCancelled:
			return r.CRM.SyncDealStage(ctx, b.ID, crm.StageCancelled)
		case models.SyncOpUpdated:
			return r.CRM.UpsertContact(ctx, b)
		default:
			if err := r.CRM.UpsertContact(ctx, b); err != nil {
				return err
			}
			return r.CRM.SyncDealStage(ctx, b.ID, crm.StageScheduled)
		}
	})
}

var errIntegrationDisabled = fmt.Errorf("integration not configured")

func (r *SyncRunner) run(ctx context.Context, p models.SyncPayload, field string, do func(context.Context, *models.Booking) error) error {
	unlock := r.locks.lock(p.BookingID)
	defer unlock()

	logger := utils.GetLogger().With(
		zap.String("bookingID", p.BookingID),
		zap.String("op", p.Op),
		zap.String("sync", field),
	)

	booking, err := r.Repo.FindByID(ctx, p.BookingID)
	if err != nil {
		return fmt.Errorf("failed to load booking for sync: %w", err)
	}
	if booking == nil {
		logger.Warn("booking vanished before sync, dropping task")
		return nil
	}
	// A later operation has already rewritten the booking; its own sync tasks
	// supersede this one.
	if booking.UpdatedAt.Sub(p.TriggeredAt) > time.Second {
		logger.Info("dropping stale sync task")
		return nil
	}

	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, r.gatewayTimeout())
		lastErr = do(callCtx, booking)
		cancel()

		if lastErr == nil {
			now := time.Now().UTC()
			state := models.SyncState{Done: true, CompletedAt: &now}
			if err := r.Repo.UpdateSyncState(ctx, p.BookingID, field, state); err != nil {
				return fmt.Errorf("failed to record sync success: %w", err)
			}
			logger.Info("sync completed", zap.Int("attempt", attempt))
			return nil
		}
		if lastErr == errIntegrationDisabled {
			break
		}

		logger.Warn("sync attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt < attempts {
			select {
			case <-time.After(r.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Retries exhausted (or the integration is off): flag for an operator.
	state := models.SyncState{ManualFollowUp: true, LastError: lastErr.Error()}
	if err := r.Repo.UpdateSyncState(ctx, p.BookingID, field, state); err != nil {
		return fmt.Errorf("failed to record sync failure: %w", err)
	}
	logger.Error("sync requires manual follow-up", zap.Error(lastErr))
	return nil
}

func (r *SyncRunner) gatewayTimeout() time.Duration {
	if r.GatewayTimeout <= 0 {
		return 10 * time.Second
	}
	return r.GatewayTimeout
}

// keyedMutex serializes work per key while leaving different keys concurrent.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*entry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
