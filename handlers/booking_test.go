package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"voicedesk/models"
	"voicedesk/services/booking"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// stubBookingService records the arguments the handler forwards.
type stubBookingService struct {
	listEmail string
	listLimit int64
	listOut   []models.Booking
	listErr   error
	getOut    *models.Booking
	getErr    error
}

func (s *stubBookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	return nil, nil
}

func (s *stubBookingService) UpdateBooking(ctx context.Context, bookingID string, patch models.BookingPatch) (*models.Booking, error) {
	return nil, nil
}

func (s *stubBookingService) CancelBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return nil, nil
}

func (s *stubBookingService) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.getOut, s.getErr
}

func (s *stubBookingService) ListUpcomingByEmail(ctx context.Context, email string, limit int64) ([]models.Booking, error) {
	s.listEmail = email
	s.listLimit = limit
	return s.listOut, s.listErr
}

var _ booking.BookingService = (*stubBookingService)(nil)

func newBookingRouter(svc booking.BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBookingHandler(svc)
	r := gin.New()
	r.GET("/api/bookings", h.ListBookingsHandler)
	r.GET("/api/bookings/:id", h.GetBookingHandler)
	return r
}

func TestListBookingsHandlerForwardsLimit(t *testing.T) {
	svc := &stubBookingService{}
	r := newBookingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings?email=jane@acme.com&limit=5", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@acme.com", svc.listEmail)
	assert.Equal(t, int64(5), svc.listLimit)
}

func TestListBookingsHandlerDefaultsLimit(t *testing.T) {
	svc := &stubBookingService{}
	r := newBookingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings?email=jane@acme.com", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(20), svc.listLimit)
}

func TestListBookingsHandlerRejectsBadLimit(t *testing.T) {
	svc := &stubBookingService{}
	r := newBookingRouter(svc)

	for _, raw := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/bookings?email=jane@acme.com&limit="+raw, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", raw)
	}
	assert.Zero(t, svc.listLimit)
}

func TestListBookingsHandlerRequiresEmail(t *testing.T) {
	r := newBookingRouter(&stubBookingService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBookingHandlerMapsNotFound(t *testing.T) {
	svc := &stubBookingService{getErr: &booking.NotFoundError{BookingID: "missing"}}
	r := newBookingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
