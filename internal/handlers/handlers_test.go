package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"beautybook/internal/api"
	"beautybook/internal/cache"
	"beautybook/internal/calendar"
	"beautybook/internal/config"
	apperrors "beautybook/internal/errors"
	"beautybook/internal/handlers"
	"beautybook/internal/models"
	"beautybook/internal/service"
	"beautybook/internal/service/servicetest"
	"beautybook/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const password = "correct horse"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type published struct {
	subject string
	event   interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject: subject, event: data})
	return nil
}

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.subject
	}
	return out
}

type testServer struct {
	router    *gin.Engine
	store     *servicetest.Store
	publisher *recordingPublisher
	pkgID     int64
	locID     int64
}

// 2025-06-01 10:00, naive.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newCachedTestServer(t, nil)
}

func newCachedTestServer(t *testing.T, availabilityCache *cache.AvailabilityCache) *testServer {
	t.Helper()

	store := servicetest.NewStore()
	pkgID := store.AddPackage(models.ServicePackage{
		Name:       "Bridal Full",
		BridePrice: decimal.NewNullDecimal(decimal.NewFromInt(15000)),
		MaidPrice:  decimal.NewNullDecimal(decimal.NewFromInt(5000)),
		IsActive:   true,
	})
	locID := store.AddLocation(models.Location{
		Name:          "City Centre",
		TransportCost: decimal.NewFromInt(800),
		IsActive:      true,
	})

	services := service.NewServices(service.Stores{
		Catalog:      store.Catalog(),
		Blocks:       store.Blocks(),
		Bookings:     store.Bookings(),
		GuestRecords: store.GuestRecords(),
		Users:        store.Users(),
	}, calendar.FixedClock{T: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}, config.BookingPolicy{
		HorizonDays:       90,
		CancelWindow:      24 * time.Hour,
		MaxReferenceTries: 5,
	})

	publisher := &recordingPublisher{}
	router := gin.New()
	api.RegisterRoutes(router, handlers.NewHandlers(services, publisher, availabilityCache), services.Users)

	return &testServer{router: router, store: store, publisher: publisher, pkgID: pkgID, locID: locID}
}

func (s *testServer) addUser(t *testing.T, email string, operator bool) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return s.store.AddUser(models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		IsOperator:   operator,
		IsActive:     true,
	})
}

func (s *testServer) do(method, path string, body interface{}, email string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req.SetBasicAuth(email, password)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) bookingBody(day, slot string) map[string]interface{} {
	return map[string]interface{}{
		"booking_date": day,
		"time_slot":    slot,
		"package_id":   s.pkgID,
		"location_id":  s.locID,
		"num_brides":   1,
		"num_maids":    2,
		"guest_email":  "guest@example.com",
		"guest_name":   "Guest Person",
		"guest_phone":  "+10000000000",
	}
}

func (s *testServer) addBooking(day, slot string, owner *int64) int64 {
	d, _ := calendar.ParseDate(day)
	return s.store.AddBooking(models.Booking{
		Reference:  "BK20250520" + slot[:2] + "00",
		UserID:     owner,
		Date:       d,
		TimeSlot:   slot,
		PackageID:  s.pkgID,
		LocationID: s.locID,
		Attendees:  models.Attendees{Brides: 1},
		Subtotal:   decimal.NewFromInt(15000),
		Total:      decimal.NewFromInt(15800),
		Deposit:    decimal.NewFromInt(7900),
		Status:     models.StatusPending,
	})
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestStatusFor(t *testing.T) {
	cases := map[apperrors.Kind]int{
		apperrors.KindNotFound:           http.StatusNotFound,
		apperrors.KindInactive:           http.StatusUnprocessableEntity,
		apperrors.KindOutOfRange:         http.StatusUnprocessableEntity,
		apperrors.KindPolicyViolation:    http.StatusUnprocessableEntity,
		apperrors.KindSlotUnavailable:    http.StatusConflict,
		apperrors.KindInvalidTransition:  http.StatusConflict,
		apperrors.KindConflict:           http.StatusConflict,
		apperrors.KindMissingContactInfo: http.StatusBadRequest,
		apperrors.KindForbidden:          http.StatusForbidden,
	}
	for kind, status := range cases {
		assert.Equal(t, status, handlers.StatusFor(kind), kind)
	}
}

func TestGetAvailability(t *testing.T) {
	s := newTestServer(t)
	s.addBooking("2025-06-02", "09:00", nil)

	w := s.do(http.MethodGet, "/api/availability", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	days := decode[[]models.DayAvailability](t, w)
	require.Len(t, days, calendar.DefaultRangeDays)
	assert.Equal(t, "2025-06-01", days[0].Date)
	assert.Len(t, days[1].Slots, 10)
	assert.False(t, days[1].Slots[1].Available)
	assert.Equal(t, "booked", days[1].Slots[1].Reason)

	w = s.do(http.MethodGet, "/api/availability?start=2025-06-10&end=2025-06-11", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.DayAvailability](t, w), 2)
}

func TestGetAvailability_BadRange(t *testing.T) {
	s := newTestServer(t)

	for _, query := range []string{
		"?days=0",
		"?days=31",
		"?days=abc",
		"?start=2025-13-01",
		"?start=2025-06-10&end=2025-06-09",
	} {
		w := s.do(http.MethodGet, "/api/availability"+query, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestCheckSlot(t *testing.T) {
	s := newTestServer(t)
	s.addBooking("2025-06-10", "10:00", nil)

	w := s.do(http.MethodGet, "/api/availability/slot?date=2025-06-10&time=10:00", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[models.SlotCheckResponse](t, w)
	assert.False(t, res.Available)
	assert.Equal(t, "booked", res.Reason)

	w = s.do(http.MethodGet, "/api/availability/slot?date=2025-06-10&time=11:00", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.SlotCheckResponse](t, w).Available)

	w = s.do(http.MethodGet, "/api/availability/slot?date=2025-06-10&time=18:00", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBooking_Guest(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/bookings", s.bookingBody("2025-06-10", "10:00"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	res := decode[models.BookingResponse](t, w)
	assert.Equal(t, models.StatusPending, res.Status)
	assert.Equal(t, "25000.00", res.Subtotal)
	assert.Equal(t, "800.00", res.TransportCost)
	assert.Equal(t, "25800.00", res.Total)
	assert.Equal(t, "12900.00", res.Deposit)
	assert.Equal(t, "BK202506010001", res.Reference)
	assert.Nil(t, res.UserID)
	require.NotNil(t, res.GuestEmail)
	assert.Equal(t, "guest@example.com", *res.GuestEmail)
	assert.Equal(t, []string{models.EventBookingCreated}, s.publisher.subjects())

	w = s.do(http.MethodPost, "/api/bookings", s.bookingBody("2025-06-10", "10:00"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	errRes := decode[models.ErrorResponse](t, w)
	assert.Equal(t, string(apperrors.KindSlotUnavailable), errRes.Error)
	assert.Equal(t, "booked", errRes.Reason)
}

func TestCreateBooking_Rejections(t *testing.T) {
	s := newTestServer(t)

	noContact := s.bookingBody("2025-06-10", "10:00")
	delete(noContact, "guest_phone")
	w := s.do(http.MethodPost, "/api/bookings", noContact, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.KindMissingContactInfo), decode[models.ErrorResponse](t, w).Error)

	unknownPackage := s.bookingBody("2025-06-10", "10:00")
	unknownPackage["package_id"] = 999
	w = s.do(http.MethodPost, "/api/bookings", unknownPackage, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	past := s.bookingBody("2025-05-31", "10:00")
	w = s.do(http.MethodPost, "/api/bookings", past, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	badSlot := s.bookingBody("2025-06-10", "10:30")
	w = s.do(http.MethodPost, "/api/bookings", badSlot, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/bookings", s.bookingBody("2025-06-10", "10:00"), "nobody@example.com")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Zero(t, s.store.BookingCount())
	assert.Empty(t, s.publisher.subjects())
}

func TestCreateBooking_Authenticated(t *testing.T) {
	s := newTestServer(t)
	userID := s.addUser(t, "jane@example.com", false)

	w := s.do(http.MethodPost, "/api/bookings", s.bookingBody("2025-06-10", "10:00"), "jane@example.com")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	res := decode[models.BookingResponse](t, w)
	require.NotNil(t, res.UserID)
	assert.Equal(t, userID, *res.UserID)
	assert.Nil(t, res.GuestEmail)
	assert.Nil(t, res.GuestPhone)
}

func TestListBookings(t *testing.T) {
	s := newTestServer(t)
	userID := s.addUser(t, "jane@example.com", false)
	otherID := s.addUser(t, "other@example.com", false)
	s.addBooking("2025-06-10", "10:00", &userID)
	s.addBooking("2025-06-11", "10:00", &otherID)

	w := s.do(http.MethodGet, "/api/bookings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/bookings", nil, "jane@example.com")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.BookingResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-06-10", list[0].Date)
}

func TestCancelBooking_Self(t *testing.T) {
	s := newTestServer(t)
	userID := s.addUser(t, "jane@example.com", false)
	s.addUser(t, "other@example.com", false)
	id := s.addBooking("2025-06-10", "10:00", &userID)
	soon := s.addBooking("2025-06-02", "09:00", &userID)

	w := s.do(http.MethodPatch, "/api/bookings/1000/cancel", nil, "jane@example.com")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPatch, "/api/bookings/abc/cancel", nil, "jane@example.com")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, pathf("/api/bookings/%d/cancel", id), nil, "other@example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPatch, pathf("/api/bookings/%d/cancel", soon), nil, "jane@example.com")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPatch, pathf("/api/bookings/%d/cancel", id), map[string]string{"reason": "plans changed"}, "jane@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[models.BookingResponse](t, w)
	assert.Equal(t, models.StatusCancelled, res.Status)
	assert.Contains(t, res.AdminNotes, "cancelled by customer: plans changed")
	assert.Equal(t, []string{models.EventBookingCancelled}, s.publisher.subjects())

	w = s.do(http.MethodPatch, pathf("/api/bookings/%d/cancel", id), nil, "jane@example.com")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminRoutes_RequireOperator(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "jane@example.com", false)
	id := s.addBooking("2025-06-10", "10:00", nil)

	w := s.do(http.MethodPatch, pathf("/api/admin/bookings/%d/deposit", id), map[string]bool{"paid": true}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPatch, pathf("/api/admin/bookings/%d/deposit", id), map[string]bool{"paid": true}, "jane@example.com")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminBookingOperations(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", true)
	id := s.addBooking("2025-06-02", "09:00", nil)

	w := s.do(http.MethodPatch, pathf("/api/admin/bookings/%d/deposit", id),
		map[string]interface{}{"paid": "yes", "note": "bank transfer"}, "admin@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[models.BookingResponse](t, w)
	assert.True(t, res.DepositPaid)
	assert.Equal(t, models.StatusDepositReceived, res.Status)

	w = s.do(http.MethodPatch, pathf("/api/admin/bookings/%d/deposit", id), map[string]string{}, "admin@example.com")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, pathf("/api/admin/bookings/%d", id),
		map[string]interface{}{"time_slot": "15:00", "num_maids": 1}, "admin@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res = decode[models.BookingResponse](t, w)
	assert.Equal(t, "15:00", res.TimeSlot)
	assert.Equal(t, "20800.00", res.Total)

	w = s.do(http.MethodPatch, pathf("/api/admin/bookings/%d", id),
		map[string]interface{}{"status": "no_such_status"}, "admin@example.com")
	assert.Equal(t, http.StatusConflict, w.Code)

	// inside the 24 hour window, operators are not bound by it
	w = s.do(http.MethodPatch, pathf("/api/admin/bookings/%d/cancel", id), nil, "admin@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusCancelled, decode[models.BookingResponse](t, w).Status)

	assert.Equal(t, []string{
		models.EventBookingDepositPaid,
		models.EventBookingUpdated,
		models.EventBookingCancelled,
	}, s.publisher.subjects())
}

func TestBlocks(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", true)

	block := map[string]string{"date": "2025-06-10", "time_slot": "12:00", "reason": "holiday"}
	w := s.do(http.MethodPost, "/api/admin/blocks", block, "admin@example.com")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.BlockResponse](t, w)
	assert.Equal(t, "2025-06-10", created.Date)

	w = s.do(http.MethodPost, "/api/admin/blocks", block, "admin@example.com")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/availability/slot?date=2025-06-10&time=12:00", nil, "")
	assert.Equal(t, "holiday", decode[models.SlotCheckResponse](t, w).Reason)

	w = s.do(http.MethodGet, "/api/admin/blocks?start=2025-06-10&end=2025-06-10", nil, "admin@example.com")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.BlockResponse](t, w), 1)

	w = s.do(http.MethodDelete, pathf("/api/admin/blocks/%d", created.ID), nil, "admin@example.com")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, pathf("/api/admin/blocks/%d", created.ID), nil, "admin@example.com")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterUser(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"email": "jane@example.com", "password": "long enough", "full_name": "Jane Doe"}

	w := s.do(http.MethodPost, "/api/users", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "long enough")

	w = s.do(http.MethodPost, "/api/users", body, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/users", map[string]string{"email": "not-an-email", "password": "long enough", "full_name": "X"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFirstSignInLinksGuestRecords(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/bookings", s.bookingBody("2025-06-10", "10:00"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	bookingID := decode[models.BookingResponse](t, w).ID

	userID := s.addUser(t, "guest@example.com", false)
	w = s.do(http.MethodGet, "/api/bookings", nil, "guest@example.com")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.BookingResponse](t, w), 1)

	booking, ok := s.store.Booking(bookingID)
	require.True(t, ok)
	require.NotNil(t, booking.UserID)
	assert.Equal(t, userID, *booking.UserID)
}

func TestLinkGuestRecords(t *testing.T) {
	s := newTestServer(t)
	userID := s.addUser(t, "jane@example.com", false)

	// first sign-in happens before any guest record exists
	w := s.do(http.MethodGet, "/api/bookings", nil, "jane@example.com")
	require.Equal(t, http.StatusOK, w.Code)

	email := "jane@example.com"
	s.store.AddOrder(models.Order{Guest: models.GuestContact{Email: &email}, Total: decimal.NewFromInt(100), Status: "paid"})
	w = s.do(http.MethodPost, "/api/bookings", s.bookingBody("2025-06-10", "10:00"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	other := s.bookingBody("2025-06-11", "10:00")
	other["guest_email"] = email
	w = s.do(http.MethodPost, "/api/bookings", other, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/account/link-guest-records", nil, "jane@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[models.LinkResult](t, w)
	assert.Equal(t, int64(1), res.OrdersLinked)
	assert.Equal(t, int64(1), res.BookingsLinked)

	w = s.do(http.MethodPost, "/api/account/link-guest-records", map[string]string{"email": "guest@example.com"}, "jane@example.com")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[models.LinkResult](t, w).BookingsLinked)

	w = s.do(http.MethodPost, "/api/account/link-guest-records", nil, "jane@example.com")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LinkResult{}, decode[models.LinkResult](t, w))

	bookings, err := s.store.Bookings().ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)

	assert.Contains(t, s.publisher.subjects(), models.EventGuestRecordsLinked)
}

func TestDepositChangeInvalidatesAvailability(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	s := newCachedTestServer(t, cache.NewAvailabilityCache(db, time.Minute))
	s.addUser(t, "admin@example.com", true)
	id := s.addBooking("2025-06-02", "09:00", nil)

	mockRedis.ExpectIncr("availability:version").SetVal(2)

	w := s.do(http.MethodPatch, pathf("/api/admin/bookings/%d/deposit", id), map[string]bool{"paid": true}, "admin@example.com")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func pathf(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
