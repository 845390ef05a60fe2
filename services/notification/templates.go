package notification

import (
	"fmt"

	"voicedesk/models"
)

const timeLayout = "Monday, January 2, 2006 at 3:04 PM"

func confirmationMessage(b *models.Booking) (string, string) {
	subject := "Your appointment is booked"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment is confirmed for %s (%d minutes).\n\nInquiry: %s\n\nReference: %s\n\nReply to this email if you need to make changes.\n",
		displayName(b), b.StartTime.Format(timeLayout), b.Duration, b.Inquiry, b.ID,
	)
	return subject, body
}

func updateMessage(b *models.Booking) (string, string) {
	subject := "Your appointment was updated"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment details have changed. It is now scheduled for %s (%d minutes).\n\nReference: %s\n",
		displayName(b), b.StartTime.Format(timeLayout), b.Duration, b.ID,
	)
	return subject, body
}

func cancellationMessage(b *models.Booking) (string, string) {
	subject := "Your appointment was cancelled"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment on %s has been cancelled.\n\nReference: %s\n\nYou are welcome to book a new time whenever suits you.\n",
		displayName(b), b.StartTime.Format(timeLayout), b.ID,
	)
	return subject, body
}

func displayName(b *models.Booking) string {
	if b.Name != "" {
		return b.Name
	}
	return "there"
}
