package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"voicedesk/config"
	"voicedesk/models"
)

const hubspotBaseURL = "https://api.hubapi.com"

// Package-level HTTP client for CRM API calls.
var crmHTTPClient = &http.Client{Timeout: 10 * time.Second}

// HubSpotGateway talks to the HubSpot CRM REST API.
type HubSpotGateway struct {
	apiKey string
}

// NewHubSpotGateway builds the gateway from AppConfig. It returns an error
// when the integration is not configured; callers should disable CRM sync and
// leave the rest of the system running.
func NewHubSpotGateway() (*HubSpotGateway, error) {
	if config.AppConfig.HubSpotAPIKey == "" {
		return nil, fmt.Errorf("CRM integration not configured: HUBSPOT_API_KEY is required")
	}
	return &HubSpotGateway{apiKey: config.AppConfig.HubSpotAPIKey}, nil
}

type contactPayload struct {
	Properties map[string]string `json:"properties"`
}

// UpsertContact creates or updates the contact keyed by the booking email.
func (g *HubSpotGateway) UpsertContact(ctx context.Context, booking *models.Booking) error {
	payload := contactPayload{Properties: map[string]string{
		"email":   booking.Email,
		"phone":   booking.Phone,
		"company": booking.Company,
	}}
	if booking.Name != "" {
		payload.Properties["firstname"] = booking.Name
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// HubSpot answers 409 for an existing contact; fall through to a patch
	// keyed by email in that case.
	status, err := g.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", body)
	if err != nil {
		return fmt.Errorf("contact create failed: %w", err)
	}
	if status == http.StatusConflict {
		path := fmt.Sprintf("/crm/v3/objects/contacts/%s?idProperty=email", booking.Email)
		if _, err := g.do(ctx, http.MethodPatch, path, body); err != nil {
			return fmt.Errorf("contact update failed: %w", err)
		}
	}
	return nil
}

type dealPayload struct {
	Properties map[string]string `json:"properties"`
}

// SyncDealStage records the lifecycle stage for the booking's deal.
func (g *HubSpotGateway) SyncDealStage(ctx context.Context, bookingID, stage string) error {
	payload := dealPayload{Properties: map[string]string{
		"dealname":  fmt.Sprintf("Appointment %s", bookingID),
		"dealstage": stage,
	}}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := g.do(ctx, http.MethodPost, "/crm/v3/objects/deals", body); err != nil {
		return fmt.Errorf("deal stage sync failed: %w", err)
	}
	return nil
}

func (g *HubSpotGateway) do(ctx context.Context, method, path string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, hubspotBaseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := crmHTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("CRM API returned status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
