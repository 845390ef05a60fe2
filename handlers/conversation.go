package handlers

import (
	"net/http"
	"strings"

	"voicedesk/services/conversation"
	"voicedesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversationHandler exposes the conversation state machine over HTTP.
type ConversationHandler struct {
	Svc conversation.ConversationService
}

func NewConversationHandler(svc conversation.ConversationService) *ConversationHandler {
	return &ConversationHandler{Svc: svc}
}

// ProcessMessageHandler advances a session by one caller utterance. A missing
// session_id starts a new session.
func (h *ConversationHandler) ProcessMessageHandler(c *gin.Context) {
	var input struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if strings.TrimSpace(input.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	reply, err := h.Svc.ProcessMessage(c.Request.Context(), sessionID, input.Message)
	if err != nil {
		utils.GetLogger().Error("conversation turn failed",
			zap.String("sessionID", sessionID),
			zap.Error(err),
		)
		utils.JSONError(c, http.StatusInternalServerError, "failed to process message", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"response":   reply.Response,
		"state":      reply.Context.State,
		"intent":     reply.Context.Intent,
	})
}
