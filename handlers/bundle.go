package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Conversation endpoints.
	ConversationMessageHandler gin.HandlerFunc
	TranscribeHandler          gin.HandlerFunc

	// Voice-agent function-call webhook.
	VoiceFunctionsHandler gin.HandlerFunc

	// Booking endpoints.
	CreateBookingHandler gin.HandlerFunc
	GetBookingHandler    gin.HandlerFunc
	UpdateBookingHandler gin.HandlerFunc
	CancelBookingHandler gin.HandlerFunc
	ListBookingsHandler  gin.HandlerFunc
}
