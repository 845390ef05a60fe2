package booking

import (
	"strings"
	"time"

	"voicedesk/models"
)

func validateBookingRequest(req models.BookingRequest, allowedDurations map[int]bool, now time.Time) error {
	if strings.TrimSpace(req.Email) == "" {
		return NewValidationError("an email address is required")
	}
	if !strings.Contains(req.Email, "@") {
		return NewValidationError("the email address does not look valid")
	}
	if req.StartTime.IsZero() {
		return NewValidationError("a start time is required")
	}
	if !req.StartTime.After(now) {
		return NewValidationError("the requested time is in the past")
	}
	if !allowedDurations[req.Duration] {
		return NewValidationError("that appointment length is not offered")
	}
	return nil
}

func validateBookingPatch(patch models.BookingPatch, allowedDurations map[int]bool, now time.Time) error {
	if patch.StartTime != nil && !patch.StartTime.After(now) {
		return NewValidationError("the requested time is in the past")
	}
	if patch.Duration != nil && !allowedDurations[*patch.Duration] {
		return NewValidationError("that appointment length is not offered")
	}
	if patch.Status != nil {
		switch *patch.Status {
		case models.StatusPending, models.StatusConfirmed, models.StatusCancelled:
		default:
			return NewValidationError("unknown booking status")
		}
	}
	return nil
}

// Status moves forward only: PENDING to CONFIRMED or CANCELLED, CONFIRMED to
// CANCELLED. CANCELLED is terminal.
var statusRank = map[string]int{
	models.StatusPending:   0,
	models.StatusConfirmed: 1,
	models.StatusCancelled: 2,
}

func validateStatusTransition(current string, patch models.BookingPatch) error {
	if current == models.StatusCancelled {
		return NewValidationError("a cancelled booking cannot be modified")
	}
	if patch.Status != nil && statusRank[*patch.Status] < statusRank[current] {
		return NewValidationError("a booking status can only move forward")
	}
	return nil
}
