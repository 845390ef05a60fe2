package handlers

import (
	"encoding/json"
	"net/http"

	"voicedesk/models"
	"voicedesk/services/voicefn"

	"github.com/gin-gonic/gin"
)

// VoiceFunctionsHandler receives function-call webhooks from the voice agent
// and dispatches them to the bridge. The wire contract is {name, args}; the
// reply is always a result envelope, never an error status for domain
// failures, so the agent can speak the message as-is.
type VoiceFunctionsHandler struct {
	Svc voicefn.VoiceFunctionsService
}

func NewVoiceFunctionsHandler(svc voicefn.VoiceFunctionsService) *VoiceFunctionsHandler {
	return &VoiceFunctionsHandler{Svc: svc}
}

func (h *VoiceFunctionsHandler) DispatchHandler(c *gin.Context) {
	var call struct {
		Name string          `json:"name"`
		Args json.RawMessage `json:"args"`
	}
	if err := c.ShouldBindJSON(&call); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var result models.VoiceResult

	switch call.Name {
	case "checkAvailability":
		var args models.CheckAvailabilityArgs
		if !bindArgs(c, call.Args, &args) {
			return
		}
		result = h.Svc.CheckAvailability(ctx, args)
	case "bookAppointment":
		var args models.BookAppointmentArgs
		if !bindArgs(c, call.Args, &args) {
			return
		}
		result = h.Svc.BookAppointment(ctx, args)
	case "getUpcomingAppointments":
		var args models.UpcomingAppointmentsArgs
		if !bindArgs(c, call.Args, &args) {
			return
		}
		result = h.Svc.GetUpcomingAppointments(ctx, args)
	case "cancelAppointment":
		var args models.CancelAppointmentArgs
		if !bindArgs(c, call.Args, &args) {
			return
		}
		result = h.Svc.CancelAppointment(ctx, args)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown function", "name": call.Name})
		return
	}

	c.JSON(http.StatusOK, result)
}

func bindArgs(c *gin.Context, raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return true
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid function arguments", "details": err.Error()})
		return false
	}
	return true
}
