package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"beautybook/internal/models"
)

// SmokeConfig describes the deployment under test. Operator credentials are
// optional; without them the admin checks are skipped.
type SmokeConfig struct {
	BaseURL          string
	PackageID        int64
	LocationID       int64
	OperatorEmail    string
	OperatorPassword string
}

// SmokeValidator walks the public booking flow against a running API.
type SmokeValidator struct {
	cfg    SmokeConfig
	client *http.Client
	log    *slog.Logger
}

func NewSmokeValidator(cfg SmokeConfig, client *http.Client) *SmokeValidator {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SmokeValidator{cfg: cfg, client: client, log: slog.Default()}
}

// ValidateAll runs every check and stops at the first failure. Bookings it
// creates are cancelled when operator credentials are available.
func (v *SmokeValidator) ValidateAll() error {
	v.log.Info("Starting API smoke validation", "base_url", v.cfg.BaseURL)

	if err := v.validateHealth(); err != nil {
		return fmt.Errorf("health validation failed: %w", err)
	}

	date, slot, err := v.findFreeSlot()
	if err != nil {
		return fmt.Errorf("availability validation failed: %w", err)
	}

	booking, err := v.validateBooking(date, slot)
	if err != nil {
		return fmt.Errorf("booking validation failed: %w", err)
	}

	if v.cfg.OperatorEmail != "" {
		if err := v.validateOperator(booking); err != nil {
			return fmt.Errorf("operator validation failed: %w", err)
		}
	}

	v.log.Info("All checks passed")
	return nil
}

func (v *SmokeValidator) validateHealth() error {
	var body map[string]any
	if err := v.call(http.MethodGet, "/health", nil, false, http.StatusOK, &body); err != nil {
		return err
	}
	v.log.Info("Health endpoint is valid", "status", body["status"])
	return nil
}

func (v *SmokeValidator) findFreeSlot() (string, string, error) {
	var days []models.DayAvailability
	if err := v.call(http.MethodGet, "/api/availability?days=30", nil, false, http.StatusOK, &days); err != nil {
		return "", "", err
	}
	if len(days) == 0 {
		return "", "", fmt.Errorf("GET /api/availability: expected days")
	}

	// Skip today so the booking is never inside the cancellation window.
	for _, day := range days[1:] {
		for _, s := range day.Slots {
			if s.Available {
				v.log.Info("Availability endpoint is valid", "days", len(days), "date", day.Date, "slot", s.Time)
				return day.Date, s.Time, nil
			}
		}
	}
	return "", "", fmt.Errorf("GET /api/availability: no free slot in %d days", len(days))
}

func (v *SmokeValidator) validateBooking(date, slot string) (*models.BookingResponse, error) {
	email, name, phone := "smoke@beautybook.local", "Smoke Check", "+10000000000"
	req := models.CreateBookingRequest{
		Date:       date,
		TimeSlot:   slot,
		PackageID:  v.cfg.PackageID,
		LocationID: v.cfg.LocationID,
		NumBrides:  1,
		GuestEmail: &email,
		GuestName:  &name,
		GuestPhone: &phone,
	}

	var booking models.BookingResponse
	if err := v.call(http.MethodPost, "/api/bookings", req, false, http.StatusCreated, &booking); err != nil {
		return nil, err
	}
	if booking.ID == 0 || booking.Reference == "" {
		return nil, fmt.Errorf("POST /api/bookings: expected id and reference")
	}
	if booking.Status != models.StatusPending {
		return nil, fmt.Errorf("POST /api/bookings: expected status %s, got %s", models.StatusPending, booking.Status)
	}

	var check models.SlotCheckResponse
	path := fmt.Sprintf("/api/availability/slot?date=%s&time=%s", date, slot)
	if err := v.call(http.MethodGet, path, nil, false, http.StatusOK, &check); err != nil {
		return nil, err
	}
	if check.Available {
		return nil, fmt.Errorf("GET %s: slot still reported free after booking", path)
	}

	if err := v.call(http.MethodPost, "/api/bookings", req, false, http.StatusConflict, nil); err != nil {
		return nil, fmt.Errorf("double booking: %w", err)
	}

	v.log.Info("Booking endpoints are valid", "reference", booking.Reference)
	return &booking, nil
}

func (v *SmokeValidator) validateOperator(booking *models.BookingResponse) error {
	var updated models.BookingResponse
	path := fmt.Sprintf("/api/admin/bookings/%d/deposit", booking.ID)
	if err := v.call(http.MethodPatch, path, map[string]any{"paid": true, "note": "smoke"}, true, http.StatusOK, &updated); err != nil {
		return err
	}
	if !updated.DepositPaid || updated.Status != models.StatusDepositReceived {
		return fmt.Errorf("PATCH %s: expected deposit_received, got %s", path, updated.Status)
	}

	path = fmt.Sprintf("/api/admin/bookings/%d/cancel", booking.ID)
	if err := v.call(http.MethodPatch, path, models.CancelBookingRequest{Reason: "smoke check"}, true, http.StatusOK, &updated); err != nil {
		return err
	}
	if updated.Status != models.StatusCancelled {
		return fmt.Errorf("PATCH %s: expected cancelled, got %s", path, updated.Status)
	}

	v.log.Info("Operator endpoints are valid")
	return nil
}

func (v *SmokeValidator) call(method, path string, body any, operator bool, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, v.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if operator {
		req.SetBasicAuth(v.cfg.OperatorEmail, v.cfg.OperatorPassword)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: expected %d, got %d: %s", method, path, wantStatus, resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
		}
	}
	return nil
}
