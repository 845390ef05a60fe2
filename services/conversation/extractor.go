package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"voicedesk/models"
)

// Slot names used across the conversation layer.
const (
	SlotDate      = "date"
	SlotTime      = "time"
	SlotDuration  = "duration"
	SlotEmail     = "email"
	SlotName      = "name"
	SlotPhone     = "phone"
	SlotCompany   = "company"
	SlotInquiry   = "inquiry"
	SlotBookingID = "booking_id"
)

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern    = regexp.MustCompile(`\+?\d[\d\s().\-]{6,}\d`)
	isoDatePattern  = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	clockPattern    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	meridiemPattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	durationPattern = regexp.MustCompile(`\b(\d+)\s*(minutes?|mins?|hours?)\b`)
	namePattern     = regexp.MustCompile(`(?i)\b(?:my name is|this is|i am|i'm)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// RuleExtractor detects intent through keyword matching and pulls slots out
// with pattern matching. It is the default extractor and the fallback when a
// language-model extractor is unavailable.
type RuleExtractor struct {
	// Clock supplies "now" for resolving relative dates; defaults to time.Now.
	Clock func() time.Time
}

func (e *RuleExtractor) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func (e *RuleExtractor) Extract(ctx context.Context, message string, convCtx *models.ConversationContext) (*models.Extraction, error) {
	lower := strings.ToLower(strings.TrimSpace(message))

	extraction := &models.Extraction{
		Intent:      detectIntent(lower),
		Slots:       e.extractSlots(message, lower),
		Affirmative: isAffirmative(lower),
		Negative:    isNegative(lower),
	}
	return extraction, nil
}

func detectIntent(lower string) string {
	switch {
	case strings.Contains(lower, "cancel"):
		return models.IntentCancel
	case strings.Contains(lower, "available") || strings.Contains(lower, "availability") ||
		strings.Contains(lower, "what times") || strings.Contains(lower, "openings") ||
		strings.Contains(lower, "open slots"):
		return models.IntentCheckAvailability
	case strings.Contains(lower, "upcoming") || strings.Contains(lower, "my appointments") ||
		strings.Contains(lower, "appointments do i have") || strings.Contains(lower, "list my"):
		return models.IntentListAppointments
	case strings.Contains(lower, "book") || strings.Contains(lower, "schedule") ||
		strings.Contains(lower, "reserve") || strings.Contains(lower, "appointment") ||
		strings.Contains(lower, "meeting"):
		return models.IntentBook
	default:
		return models.IntentUnknown
	}
}

func (e *RuleExtractor) extractSlots(message, lower string) map[string]string {
	slots := make(map[string]string)

	if email := emailPattern.FindString(message); email != "" {
		slots[SlotEmail] = strings.ToLower(email)
	}
	if m := namePattern.FindStringSubmatch(message); m != nil {
		slots[SlotName] = m[1]
	}
	if date := e.extractDate(lower); date != "" {
		slots[SlotDate] = date
	}
	if clock := extractClock(lower); clock != "" {
		slots[SlotTime] = clock
	}
	if mins := extractDuration(lower); mins != "" {
		slots[SlotDuration] = mins
	}
	// Phone last: the pattern is greedy enough to swallow parts of dates.
	if phone := phonePattern.FindString(stripMatches(message, isoDatePattern, clockPattern)); phone != "" {
		slots[SlotPhone] = strings.TrimSpace(phone)
	}
	return slots
}

func (e *RuleExtractor) extractDate(lower string) string {
	if m := isoDatePattern.FindString(lower); m != "" {
		return m
	}
	today := e.now()
	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return today.AddDate(0, 0, 2).Format("2006-01-02")
	case strings.Contains(lower, "tomorrow"):
		return today.AddDate(0, 0, 1).Format("2006-01-02")
	case strings.Contains(lower, "today"):
		return today.Format("2006-01-02")
	}
	for name, weekday := range weekdays {
		if strings.Contains(lower, name) {
			days := (int(weekday) - int(today.Weekday()) + 7) % 7
			if days == 0 {
				days = 7
			}
			return today.AddDate(0, 0, days).Format("2006-01-02")
		}
	}
	return ""
}

func extractClock(lower string) string {
	if m := meridiemPattern.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && hour < 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}
	if m := clockPattern.FindStringSubmatch(lower); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}
	return ""
}

func extractDuration(lower string) string {
	m := durationPattern.FindStringSubmatch(lower)
	if m == nil {
		return ""
	}
	n, _ := strconv.Atoi(m[1])
	if strings.HasPrefix(m[2], "hour") {
		n *= 60
	}
	return strconv.Itoa(n)
}

func isAffirmative(lower string) bool {
	for _, word := range []string{"yes", "yeah", "yep", "correct", "confirm", "sure", "go ahead", "sounds good", "that's right", "please do"} {
		if lower == word || strings.HasPrefix(lower, word+" ") || strings.HasPrefix(lower, word+",") {
			return true
		}
	}
	return false
}

func isNegative(lower string) bool {
	for _, word := range []string{"no", "nope", "never mind", "nevermind", "don't", "stop", "forget it"} {
		if lower == word || strings.HasPrefix(lower, word+" ") || strings.HasPrefix(lower, word+",") {
			return true
		}
	}
	return false
}

func stripMatches(s string, patterns ...*regexp.Regexp) string {
	for _, p := range patterns {
		s = p.ReplaceAllString(s, " ")
	}
	return s
}
