package calendar

import (
	"context"
	"fmt"
	"time"

	bookingRepo "voicedesk/database/repository/booking"
	"voicedesk/models"
	"voicedesk/utils"

	"go.uber.org/zap"
)

// Service computes open appointment slots: the configured business-hours
// window walked in duration-sized steps, minus stored bookings and the
// vendor's busy intervals.
type Service struct {
	Gateway    Gateway // nil when the calendar integration is disabled
	Repo       bookingRepo.BookingRepository
	HoursStart string // "HH:MM"
	HoursEnd   string // "HH:MM"
}

// GetAvailableSlots returns the ordered open slots on the given day honoring
// the requested duration. An empty day yields slots covering the full
// business-hours window.
func (s *Service) GetAvailableSlots(ctx context.Context, day time.Time, durationMinutes int) ([]models.TimeSlot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("invalid slot duration: %d", durationMinutes)
	}

	dayStart, err := atClock(day, s.HoursStart)
	if err != nil {
		return nil, fmt.Errorf("invalid business hours start: %w", err)
	}
	dayEnd, err := atClock(day, s.HoursEnd)
	if err != nil {
		return nil, fmt.Errorf("invalid business hours end: %w", err)
	}

	busy, err := s.busyIntervals(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	step := time.Duration(durationMinutes) * time.Minute
	now := time.Now().UTC()

	var slots []models.TimeSlot
	for start := dayStart; !start.Add(step).After(dayEnd); start = start.Add(step) {
		end := start.Add(step)
		if !start.After(now) {
			continue
		}
		if overlapsAny(start, end, busy) {
			continue
		}
		slots = append(slots, models.TimeSlot{Start: start, End: end})
	}
	return slots, nil
}

// busyIntervals merges stored non-cancelled bookings with the vendor's busy
// ranges. A vendor failure degrades to store-only availability rather than
// failing the lookup.
func (s *Service) busyIntervals(ctx context.Context, rangeStart, rangeEnd time.Time) ([]models.TimeSlot, error) {
	filter := models.BookingFilter{
		StartFrom: rangeStart,
		StartTo:   rangeEnd,
		Statuses:  []string{models.StatusPending, models.StatusConfirmed},
	}
	bookings, err := s.Repo.FindMany(ctx, filter, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for availability: %w", err)
	}

	busy := make([]models.TimeSlot, 0, len(bookings))
	for _, b := range bookings {
		busy = append(busy, models.TimeSlot{
			Start: b.StartTime,
			End:   b.StartTime.Add(time.Duration(b.Duration) * time.Minute),
		})
	}

	if s.Gateway != nil {
		vendorBusy, err := s.Gateway.GetBusyIntervals(ctx, rangeStart, rangeEnd)
		if err != nil {
			utils.GetLogger().Warn("calendar gateway busy lookup failed, using store only",
				zap.Error(err),
			)
		} else {
			busy = append(busy, vendorBusy...)
		}
	}
	return busy, nil
}

func overlapsAny(start, end time.Time, busy []models.TimeSlot) bool {
	for _, b := range busy {
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// atClock pins a "HH:MM" clock value onto the given day in UTC.
func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
