package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"voicedesk/models"
	"voicedesk/services/booking"
	"voicedesk/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes booking CRUD over HTTP.
type BookingHandler struct {
	Svc booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Svc: svc}
}

// CreateBookingHandler creates a booking from a JSON request body.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	created, err := h.Svc.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": created})
}

// GetBookingHandler fetches a booking by id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	found, err := h.Svc.GetBookingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": found})
}

// UpdateBookingHandler applies a partial update to a booking.
func (h *BookingHandler) UpdateBookingHandler(c *gin.Context) {
	var patch models.BookingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	updated, err := h.Svc.UpdateBooking(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": updated})
}

// CancelBookingHandler cancels a booking. Cancelling twice is a no-op.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	cancelled, err := h.Svc.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": cancelled})
}

// ListBookingsHandler lists upcoming bookings for an email, earliest first.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	limit := int64(20)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	bookings, err := h.Svc.ListUpcomingByEmail(c.Request.Context(), email, limit)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings":    bookings,
		"count":       len(bookings),
		"generatedAt": time.Now().UTC(),
	})
}

// respondBookingError maps the orchestrator's typed errors onto HTTP statuses.
func respondBookingError(c *gin.Context, err error) {
	var vErr *booking.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "code": vErr.Code})
		return
	}
	var nfErr *booking.NotFoundError
	if errors.As(err, &nfErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": nfErr.Error()})
		return
	}
	utils.GetLogger().Error("booking request failed", zap.String("path", c.FullPath()), zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "internal error", "please try again later")
}
