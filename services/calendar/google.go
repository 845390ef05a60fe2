package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voicedesk/config"
	"voicedesk/models"
)

const googleCalendarBaseURL = "https://www.googleapis.com/calendar/v3"

// Package-level HTTP client for calendar API calls.
var calendarHTTPClient = &http.Client{Timeout: 10 * time.Second}

// GoogleCalendarGateway talks to the Google Calendar REST API.
type GoogleCalendarGateway struct {
	apiKey     string
	calendarID string
}

// NewGoogleCalendarGateway builds the gateway from AppConfig. It returns an
// error when the integration is not configured; callers should disable
// calendar sync and leave the rest of the system running.
func NewGoogleCalendarGateway() (*GoogleCalendarGateway, error) {
	cfg := config.AppConfig
	if cfg.GoogleCalendarAPIKey == "" || cfg.GoogleCalendarID == "" {
		return nil, fmt.Errorf("calendar integration not configured: GOOGLE_CALENDAR_API_KEY and GOOGLE_CALENDAR_ID are required")
	}
	return &GoogleCalendarGateway{
		apiKey:     cfg.GoogleCalendarAPIKey,
		calendarID: cfg.GoogleCalendarID,
	}, nil
}

type freeBusyRequest struct {
	TimeMin string              `json:"timeMin"`
	TimeMax string              `json:"timeMax"`
	Items   []map[string]string `json:"items"`
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"busy"`
	} `json:"calendars"`
}

// GetBusyIntervals queries the freebusy endpoint for the range.
func (g *GoogleCalendarGateway) GetBusyIntervals(ctx context.Context, rangeStart, rangeEnd time.Time) ([]models.TimeSlot, error) {
	reqBody, err := json.Marshal(freeBusyRequest{
		TimeMin: rangeStart.Format(time.RFC3339),
		TimeMax: rangeEnd.Format(time.RFC3339),
		Items:   []map[string]string{{"id": g.calendarID}},
	})
	if err != nil {
		return nil, err
	}

	var out freeBusyResponse
	if err := g.do(ctx, http.MethodPost, "/freeBusy", reqBody, &out); err != nil {
		return nil, fmt.Errorf("freebusy query failed: %w", err)
	}

	var busy []models.TimeSlot
	for _, cal := range out.Calendars {
		for _, interval := range cal.Busy {
			busy = append(busy, models.TimeSlot{Start: interval.Start, End: interval.End})
		}
	}
	return busy, nil
}

type calendarEvent struct {
	ID          string            `json:"id,omitempty"`
	Summary     string            `json:"summary"`
	Description string            `json:"description,omitempty"`
	Start       calendarEventTime `json:"start"`
	End         calendarEventTime `json:"end"`
	Extended    *extendedProps    `json:"extendedProperties,omitempty"`
}

type calendarEventTime struct {
	DateTime string `json:"dateTime"`
}

type extendedProps struct {
	Private map[string]string `json:"private"`
}

// CreateEvent inserts an event tagged with the booking id so it can be found
// for deletion later.
func (g *GoogleCalendarGateway) CreateEvent(ctx context.Context, booking *models.Booking) error {
	event := calendarEvent{
		Summary:     fmt.Sprintf("Appointment: %s", booking.Name),
		Description: booking.Inquiry,
		Start:       calendarEventTime{DateTime: booking.StartTime.Format(time.RFC3339)},
		End:         calendarEventTime{DateTime: booking.StartTime.Add(time.Duration(booking.Duration) * time.Minute).Format(time.RFC3339)},
		Extended:    &extendedProps{Private: map[string]string{"bookingId": booking.ID}},
	}
	reqBody, err := json.Marshal(event)
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/calendars/%s/events", url.PathEscape(g.calendarID))
	if err := g.do(ctx, http.MethodPost, path, reqBody, nil); err != nil {
		return fmt.Errorf("event insert failed: %w", err)
	}
	return nil
}

type eventListResponse struct {
	Items []calendarEvent `json:"items"`
}

// DeleteEvent removes the event tagged with the booking id, if any.
func (g *GoogleCalendarGateway) DeleteEvent(ctx context.Context, bookingID string) error {
	listPath := fmt.Sprintf("/calendars/%s/events?privateExtendedProperty=%s",
		url.PathEscape(g.calendarID),
		url.QueryEscape("bookingId="+bookingID),
	)
	var list eventListResponse
	if err := g.do(ctx, http.MethodGet, listPath, nil, &list); err != nil {
		return fmt.Errorf("event lookup failed: %w", err)
	}

	for _, event := range list.Items {
		deletePath := fmt.Sprintf("/calendars/%s/events/%s", url.PathEscape(g.calendarID), url.PathEscape(event.ID))
		if err := g.do(ctx, http.MethodDelete, deletePath, nil, nil); err != nil {
			return fmt.Errorf("event delete failed: %w", err)
		}
	}
	return nil
}

func (g *GoogleCalendarGateway) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	endpoint := googleCalendarBaseURL + path
	if strings.Contains(path, "?") {
		endpoint += "&key=" + url.QueryEscape(g.apiKey)
	} else {
		endpoint += "?key=" + url.QueryEscape(g.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := calendarHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("calendar API returned status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode calendar response: %w", err)
		}
	}
	return nil
}
