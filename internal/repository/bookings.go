package repository

import (
	"context"
	"database/sql"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/database"
	"beautybook/internal/models"

	"github.com/lib/pq"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, reference, user_id, guest_email, guest_name, guest_phone,
	booking_date, time_slot, package_id, location_id,
	num_brides, num_maids, num_mothers, num_others,
	subtotal, transport_cost, total, deposit, deposit_paid,
	status, notes, admin_notes, created_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.UserID,
		&b.Guest.Email,
		&b.Guest.Name,
		&b.Guest.Phone,
		&b.Date,
		&b.TimeSlot,
		&b.PackageID,
		&b.LocationID,
		&b.Attendees.Brides,
		&b.Attendees.Maids,
		&b.Attendees.Mothers,
		&b.Attendees.Others,
		&b.Subtotal,
		&b.TransportCost,
		&b.Total,
		&b.Deposit,
		&b.DepositPaid,
		&b.Status,
		&b.Notes,
		&b.AdminNotes,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.Version,
	)
	if err != nil {
		return nil, err
	}
	b.Date = calendar.DateOf(b.Date)
	return b, nil
}

// Create inserts a booking. A slot or reference collision comes back as
// ErrSlotTaken or ErrDuplicateReference.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			reference, user_id, guest_email, guest_name, guest_phone,
			booking_date, time_slot, package_id, location_id,
			num_brides, num_maids, num_mothers, num_others,
			subtotal, transport_cost, total, deposit, deposit_paid,
			status, notes, admin_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at, updated_at, version`

	err := r.db.QueryRowContext(ctx, query,
		booking.Reference,
		booking.UserID,
		booking.Guest.Email,
		booking.Guest.Name,
		booking.Guest.Phone,
		booking.Date.Format(calendar.DateLayout),
		booking.TimeSlot,
		booking.PackageID,
		booking.LocationID,
		booking.Attendees.Brides,
		booking.Attendees.Maids,
		booking.Attendees.Mothers,
		booking.Attendees.Others,
		booking.Subtotal,
		booking.TransportCost,
		booking.Total,
		booking.Deposit,
		booking.DepositPaid,
		booking.Status,
		booking.Notes,
		booking.AdminNotes,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt, &booking.Version)

	return translateError(err)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY booking_date DESC, time_slot DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

// Update writes every mutable column of booking if the stored version is
// still booking.Version, otherwise it returns ErrStaleBooking. Ownership is
// not touched.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET booking_date = $1, time_slot = $2, location_id = $3,
		    num_brides = $4, num_maids = $5, num_mothers = $6, num_others = $7,
		    subtotal = $8, transport_cost = $9, total = $10, deposit = $11,
		    deposit_paid = $12, status = $13, notes = $14, admin_notes = $15,
		    updated_at = NOW(), version = version + 1
		WHERE id = $16 AND version = $17
		RETURNING updated_at, version`

	err := r.db.QueryRowContext(ctx, query,
		booking.Date.Format(calendar.DateLayout),
		booking.TimeSlot,
		booking.LocationID,
		booking.Attendees.Brides,
		booking.Attendees.Maids,
		booking.Attendees.Mothers,
		booking.Attendees.Others,
		booking.Subtotal,
		booking.TransportCost,
		booking.Total,
		booking.Deposit,
		booking.DepositPaid,
		booking.Status,
		booking.Notes,
		booking.AdminNotes,
		booking.ID,
		booking.Version,
	).Scan(&booking.UpdatedAt, &booking.Version)

	if err == sql.ErrNoRows {
		return ErrStaleBooking
	}

	return translateError(err)
}

// IsSlotOccupied reports whether an active booking other than excludeID
// holds the slot. Pass 0 to exclude nothing.
func (r *BookingRepository) IsSlotOccupied(ctx context.Context, date time.Time, timeSlot string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE booking_date = $1 AND time_slot = $2
			  AND status = ANY($3)
			  AND id <> $4)`

	var occupied bool
	err := r.db.QueryRowContext(ctx, query,
		date.Format(calendar.DateLayout),
		timeSlot,
		pq.Array(models.OccupyingStatusStrings()),
		excludeID,
	).Scan(&occupied)

	return occupied, err
}

// ListOccupiedSlots returns every slot held by an active booking in [start, end].
func (r *BookingRepository) ListOccupiedSlots(ctx context.Context, start, end time.Time) ([]models.SlotKey, error) {
	query := `
		SELECT booking_date, time_slot
		FROM bookings
		WHERE booking_date BETWEEN $1 AND $2
		  AND status = ANY($3)`

	rows, err := r.db.QueryWithRetry(ctx, query,
		start.Format(calendar.DateLayout),
		end.Format(calendar.DateLayout),
		pq.Array(models.OccupyingStatusStrings()),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.SlotKey
	for rows.Next() {
		var key models.SlotKey
		if err := rows.Scan(&key.Date, &key.TimeSlot); err != nil {
			return nil, err
		}
		key.Date = calendar.DateOf(key.Date)
		slots = append(slots, key)
	}

	return slots, rows.Err()
}

// CountReferences counts bookings whose reference starts with prefix.
func (r *BookingRepository) CountReferences(ctx context.Context, prefix string) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE reference LIKE $1 || '%'`

	var count int
	err := r.db.QueryRowContext(ctx, query, prefix).Scan(&count)
	return count, err
}

func (r *BookingRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE reference = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, reference).Scan(&exists)
	return exists, err
}
