package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	bookingRepo "voicedesk/database/repository/booking"
	"voicedesk/models"
	"voicedesk/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService is the production implementation of BookingService.
type DefaultBookingService struct {
	Repo             bookingRepo.BookingRepository
	Scheduler        SyncScheduler
	AllowedDurations map[int]bool
}

// CreateBooking validates the request, persists a PENDING booking with all
// sync flags unset, then schedules the asynchronous synchronization tasks.
// The caller's return never waits on synchronization.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	now := time.Now().UTC()
	req.Email = normalizeEmail(req.Email)
	if err := validateBookingRequest(req, s.AllowedDurations, now); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Inquiry:   req.Inquiry,
		StartTime: req.StartTime.UTC(),
		Duration:  req.Duration,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	s.scheduleSync(booking.ID, models.SyncOpCreated, now)
	return booking, nil
}

// UpdateBooking applies a partial update. Changes to user-facing details
// trigger an update notification cycle. Status moves forward only; a
// cancelled booking cannot be modified at all.
func (s *DefaultBookingService) UpdateBooking(ctx context.Context, bookingID string, patch models.BookingPatch) (*models.Booking, error) {
	now := time.Now().UTC()
	if err := validateBookingPatch(patch, s.AllowedDurations, now); err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if existing == nil {
		return nil, &NotFoundError{BookingID: bookingID}
	}
	if err := validateStatusTransition(existing.Status, patch); err != nil {
		return nil, err
	}

	updated, err := s.Repo.Update(ctx, bookingID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	if updated == nil {
		return nil, &NotFoundError{BookingID: bookingID}
	}

	if patch.StartTime != nil || patch.Inquiry != nil || patch.Duration != nil {
		s.scheduleSync(bookingID, models.SyncOpUpdated, updated.UpdatedAt)
	}
	return updated, nil
}

// CancelBooking transitions the booking to CANCELLED and schedules the
// cancellation notification plus best-effort calendar/CRM cleanup. Cancelling
// an already-cancelled booking returns it unchanged.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	existing, err := s.Repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if existing == nil {
		return nil, &NotFoundError{BookingID: bookingID}
	}
	if existing.Status == models.StatusCancelled {
		return existing, nil
	}

	cancelled := models.StatusCancelled
	updated, err := s.Repo.Update(ctx, bookingID, models.BookingPatch{Status: &cancelled})
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if updated == nil {
		return nil, &NotFoundError{BookingID: bookingID}
	}

	s.scheduleSync(bookingID, models.SyncOpCancelled, updated.UpdatedAt)
	return updated, nil
}

// GetBookingByID is a read-through to the booking store.
func (s *DefaultBookingService) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.Repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	if booking == nil {
		return nil, &NotFoundError{BookingID: bookingID}
	}
	return booking, nil
}

// ListUpcomingByEmail returns non-cancelled future bookings for the email,
// ordered by start time ascending.
func (s *DefaultBookingService) ListUpcomingByEmail(ctx context.Context, email string, limit int64) ([]models.Booking, error) {
	filter := models.BookingFilter{
		Email:     normalizeEmail(email),
		StartFrom: time.Now().UTC(),
		Statuses:  []string{models.StatusPending, models.StatusConfirmed},
	}
	return s.Repo.FindMany(ctx, filter, 1, limit)
}

// normalizeEmail keeps the stored and queried forms identical regardless of
// how the caller spelled the address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// scheduleSync submits the three sync tasks. A scheduling failure is logged
// and never rolls back or fails the booking write that triggered it.
func (s *DefaultBookingService) scheduleSync(bookingID, op string, triggeredAt time.Time) {
	if s.Scheduler == nil {
		return
	}
	if err := s.Scheduler.ScheduleSync(bookingID, op, triggeredAt); err != nil {
		utils.GetLogger().Error("failed to schedule booking sync",
			zap.String("bookingID", bookingID),
			zap.String("op", op),
			zap.Error(err),
		)
	}
}
