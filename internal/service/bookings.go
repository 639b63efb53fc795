package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/config"
	apperrors "beautybook/internal/errors"
	"beautybook/internal/logger"
	"beautybook/internal/metrics"
	"beautybook/internal/models"
	"beautybook/internal/pricing"
	"beautybook/internal/repository"
)

const noteTimeLayout = "2006-01-02 15:04"

// Actor is who asks for a cancellation. Operators bypass ownership, the
// completed-booking rule and the cancellation window.
type Actor struct {
	UserID   int64
	Operator bool
}

// BookingService owns the booking lifecycle: creation, operator edits,
// cancellation and deposits. Prices are always recomputed server side.
type BookingService struct {
	catalog      CatalogStore
	bookings     BookingStore
	availability *AvailabilityService
	references   *ReferenceGenerator
	clock        calendar.Clock
	policy       config.BookingPolicy
}

// NewBookingService fills in a 24h cancellation window and five reference
// attempts when policy leaves them unset.
func NewBookingService(catalog CatalogStore, bookings BookingStore, availability *AvailabilityService, references *ReferenceGenerator, clock calendar.Clock, policy config.BookingPolicy) *BookingService {
	if policy.CancelWindow <= 0 {
		policy.CancelWindow = 24 * time.Hour
	}
	if policy.MaxReferenceTries <= 0 {
		policy.MaxReferenceTries = 5
	}
	return &BookingService{
		catalog:      catalog,
		bookings:     bookings,
		availability: availability,
		references:   references,
		clock:        clock,
		policy:       policy,
	}
}

func isBusinessError(err error) bool {
	_, ok := apperrors.KindOf(err)
	return ok
}

// CreateBooking validates the request, prices it and stores it as pending.
// ownerID is nil for guest bookings.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest, ownerID *int64) (booking *models.Booking, err error) {
	defer func() { metrics.RecordBooking("create", err, isBusinessError) }()

	pkg, err := s.activePackage(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}

	loc, err := s.activeLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}

	attendees := req.Attendees()
	if err := checkBounds(pkg, attendees); err != nil {
		return nil, err
	}

	date, err := parseSlot(req.Date, req.TimeSlot)
	if err != nil {
		return nil, err
	}

	free, reason, err := s.availability.IsSlotFree(ctx, date, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, apperrors.SlotUnavailable(reason)
	}

	booking = &models.Booking{
		UserID:     ownerID,
		Date:       date,
		TimeSlot:   req.TimeSlot,
		PackageID:  pkg.ID,
		LocationID: loc.ID,
		Attendees:  attendees,
		Status:     models.StatusPending,
		Notes:      req.Notes,
	}

	if ownerID == nil {
		booking.Guest = models.GuestContact{Email: req.GuestEmail, Name: req.GuestName, Phone: req.GuestPhone}
		if !booking.Guest.Complete() {
			return nil, apperrors.MissingGuestContact()
		}
	}

	s.applyQuote(ctx, booking, pkg, loc)

	if err := s.insertWithReference(ctx, booking); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Booking created",
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"booking_date", req.Date,
		"time_slot", booking.TimeSlot,
		"guest", ownerID == nil,
		"total", booking.Total.StringFixed(2))

	return booking, nil
}

// insertWithReference retries reference collisions; a slot collision is
// reported exactly like a failed pre-check.
func (s *BookingService) insertWithReference(ctx context.Context, booking *models.Booking) error {
	for attempt := 1; attempt <= s.policy.MaxReferenceTries; attempt++ {
		reference, err := s.references.Next(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate booking reference: %w", err)
		}
		booking.Reference = reference

		err = s.bookings.Create(ctx, booking)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrSlotTaken):
			return apperrors.SlotUnavailable(apperrors.ReasonBooked)
		case errors.Is(err, repository.ErrDuplicateReference):
			logger.WithContext(ctx).Warn("Booking reference collision, retrying",
				"reference", reference, "attempt", attempt)
			continue
		default:
			return fmt.Errorf("failed to create booking: %w", err)
		}
	}

	return fmt.Errorf("failed to allocate booking reference after %d attempts", s.policy.MaxReferenceTries)
}

// UpdateBooking applies an operator edit. Nil fields are left alone.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, req *models.UpdateBookingRequest) (booking *models.Booking, err error) {
	defer func() { metrics.RecordBooking("update", err, isBusinessError) }()

	booking, err = s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	now := calendar.Naive(s.clock.Now())

	status := booking.Status
	if req.Status != nil {
		next := models.BookingStatus(*req.Status)
		if next != booking.Status {
			if !next.IsValid() || !booking.Status.CanTransitionTo(next) {
				return nil, apperrors.InvalidTransition(string(booking.Status), *req.Status)
			}
			status = next
		}
	}

	date, timeSlot := booking.Date, booking.TimeSlot
	if req.Date != nil {
		if date, err = calendar.ParseDate(*req.Date); err != nil {
			return nil, apperrors.New(apperrors.KindOutOfRange, "invalid booking date")
		}
	}
	if req.TimeSlot != nil {
		timeSlot = *req.TimeSlot
		if !calendar.IsValidSlot(timeSlot) {
			return nil, apperrors.New(apperrors.KindOutOfRange, "time slot is not on the daily grid")
		}
	}

	slotChanged := !date.Equal(booking.Date) || timeSlot != booking.TimeSlot
	if slotChanged && status.HoldsSlot() {
		free, reason, err := s.availability.isSlotFree(ctx, date, timeSlot, booking.ID)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, apperrors.SlotUnavailable(reason)
		}
	}

	locationChanged := req.LocationID != nil && *req.LocationID != booking.LocationID
	attendees := mergeAttendees(booking.Attendees, req)
	countsChanged := attendees != booking.Attendees

	if locationChanged || countsChanged {
		pkg, err := s.catalog.GetPackage(ctx, booking.PackageID)
		if err != nil {
			return nil, fmt.Errorf("failed to get package: %w", err)
		}
		if pkg == nil {
			return nil, apperrors.NotFound("service package")
		}

		var loc *models.Location
		if locationChanged {
			if loc, err = s.activeLocation(ctx, *req.LocationID); err != nil {
				return nil, err
			}
		} else {
			if loc, err = s.catalog.GetLocation(ctx, booking.LocationID); err != nil {
				return nil, fmt.Errorf("failed to get location: %w", err)
			}
			if loc == nil {
				return nil, apperrors.NotFound("location")
			}
		}

		if countsChanged {
			if err := checkBounds(pkg, attendees); err != nil {
				return nil, err
			}
		}

		booking.LocationID = loc.ID
		booking.Attendees = attendees
		s.applyQuote(ctx, booking, pkg, loc)
	}

	if status != booking.Status {
		booking.AdminNotes = appendNote(booking.AdminNotes, now,
			fmt.Sprintf("status changed %s -> %s", booking.Status, status))
		booking.Status = status
	}
	if slotChanged {
		booking.AdminNotes = appendNote(booking.AdminNotes, now,
			fmt.Sprintf("rescheduled from %s %s to %s %s",
				booking.Date.Format(calendar.DateLayout), booking.TimeSlot, date.Format(calendar.DateLayout), timeSlot))
		booking.Date, booking.TimeSlot = date, timeSlot
	}
	if req.AdminNote != nil && *req.AdminNote != "" {
		booking.AdminNotes = appendNote(booking.AdminNotes, now, *req.AdminNote)
	}

	if err := s.save(ctx, booking); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Booking updated",
		"booking_id", booking.ID,
		"status", booking.Status,
		"slot_changed", slotChanged,
		"repriced", locationChanged || countsChanged)

	return booking, nil
}

// CancelBooking cancels a booking on behalf of actor.
func (s *BookingService) CancelBooking(ctx context.Context, id int64, actor Actor, reason string) (booking *models.Booking, err error) {
	defer func() { metrics.RecordBooking("cancel", err, isBusinessError) }()

	booking, err = s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	now := calendar.Naive(s.clock.Now())

	if !actor.Operator && (booking.UserID == nil || *booking.UserID != actor.UserID) {
		return nil, apperrors.Forbidden("booking belongs to another account")
	}

	if booking.Status == models.StatusCancelled {
		return nil, apperrors.InvalidTransition(string(booking.Status), string(models.StatusCancelled))
	}

	if !actor.Operator {
		if booking.Status == models.StatusCompleted {
			return nil, apperrors.InvalidTransition(string(booking.Status), string(models.StatusCancelled))
		}

		start, err := calendar.SlotStart(booking.Date, booking.TimeSlot)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve booking start: %w", err)
		}
		if start.Sub(now).Seconds() < s.policy.CancelWindow.Seconds() {
			return nil, apperrors.PolicyViolation(fmt.Sprintf(
				"cancellations must be made at least %d hours before the appointment", int(s.policy.CancelWindow.Hours())))
		}
	}

	by := "customer"
	if actor.Operator {
		by = "operator"
	}
	note := "cancelled by " + by
	if reason != "" {
		note += ": " + reason
	}

	booking.Status = models.StatusCancelled
	booking.AdminNotes = appendNote(booking.AdminNotes, now, note)

	if err := s.save(ctx, booking); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Booking cancelled",
		"booking_id", booking.ID,
		"reference", booking.Reference,
		"by_operator", actor.Operator)

	return booking, nil
}

// MarkDepositPaid sets the deposit flag. Only pending bookings advance, and
// clearing the flag never moves the status back.
func (s *BookingService) MarkDepositPaid(ctx context.Context, id int64, paid bool, note string) (booking *models.Booking, err error) {
	defer func() { metrics.RecordBooking("deposit", err, isBusinessError) }()

	booking, err = s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	now := calendar.Naive(s.clock.Now())

	booking.DepositPaid = paid
	if paid && booking.Status == models.StatusPending {
		booking.Status = models.StatusDepositReceived
	}

	line := "deposit marked unpaid"
	if paid {
		line = "deposit marked paid"
	}
	if note != "" {
		line += ": " + note
	}
	booking.AdminNotes = appendNote(booking.AdminNotes, now, line)

	if err := s.save(ctx, booking); err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Booking deposit updated",
		"booking_id", booking.ID,
		"paid", paid,
		"status", booking.Status)

	return booking, nil
}

// ListForUser returns the bookings owned by userID, latest appointment first.
func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) getBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking")
	}
	return booking, nil
}

func (s *BookingService) save(ctx context.Context, booking *models.Booking) error {
	err := s.bookings.Update(ctx, booking)
	if errors.Is(err, repository.ErrSlotTaken) {
		return apperrors.SlotUnavailable(apperrors.ReasonBooked)
	}
	if errors.Is(err, repository.ErrStaleBooking) {
		return apperrors.Conflict("booking was changed by another request, reload and retry")
	}
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (s *BookingService) activePackage(ctx context.Context, id int64) (*models.ServicePackage, error) {
	pkg, err := s.catalog.GetPackage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	if pkg == nil {
		return nil, apperrors.NotFound("service package")
	}
	if !pkg.IsActive {
		return nil, apperrors.Inactive("service package")
	}
	return pkg, nil
}

func (s *BookingService) activeLocation(ctx context.Context, id int64) (*models.Location, error) {
	loc, err := s.catalog.GetLocation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	if loc == nil {
		return nil, apperrors.NotFound("location")
	}
	if !loc.IsActive {
		return nil, apperrors.Inactive("location")
	}
	return loc, nil
}

func (s *BookingService) applyQuote(ctx context.Context, booking *models.Booking, pkg *models.ServicePackage, loc *models.Location) {
	if unpriced := pricing.UnpricedWithCount(pkg, booking.Attendees); len(unpriced) > 0 {
		logger.WithContext(ctx).Debug("Attendees in unpriced categories are not charged",
			"package_id", pkg.ID, "categories", unpriced)
	}

	quote := pricing.Compute(pkg, loc, booking.Attendees)
	booking.Subtotal = quote.Subtotal
	booking.TransportCost = quote.TransportCost
	booking.Total = quote.Total
	booking.Deposit = quote.Deposit
}

// checkBounds enforces the declared min/max of every category.
func checkBounds(pkg *models.ServicePackage, attendees models.Attendees) error {
	for _, rule := range pkg.Rules() {
		count := attendees.Count(rule.Category)
		if rule.Min != nil && count < *rule.Min {
			return apperrors.OutOfRange(fmt.Sprintf("at least %d %s attendee(s) required, got %d", *rule.Min, rule.Category, count))
		}
		if rule.Max != nil && count > *rule.Max {
			return apperrors.OutOfRange(fmt.Sprintf("at most %d %s attendee(s) allowed, got %d", *rule.Max, rule.Category, count))
		}
	}
	return nil
}

func parseSlot(date, timeSlot string) (time.Time, error) {
	d, err := calendar.ParseDate(date)
	if err != nil {
		return time.Time{}, apperrors.New(apperrors.KindOutOfRange, "invalid booking date")
	}
	if !calendar.IsValidSlot(timeSlot) {
		return time.Time{}, apperrors.New(apperrors.KindOutOfRange, "time slot is not on the daily grid")
	}
	return d, nil
}

func mergeAttendees(current models.Attendees, req *models.UpdateBookingRequest) models.Attendees {
	merged := current
	if req.NumBrides != nil {
		merged.Brides = *req.NumBrides
	}
	if req.NumMaids != nil {
		merged.Maids = *req.NumMaids
	}
	if req.NumMothers != nil {
		merged.Mothers = *req.NumMothers
	}
	if req.NumOthers != nil {
		merged.Others = *req.NumOthers
	}
	return merged
}

func appendNote(notes string, at time.Time, line string) string {
	entry := fmt.Sprintf("[%s] %s", at.Format(noteTimeLayout), line)
	if notes == "" {
		return entry
	}
	return notes + "\n" + entry
}
