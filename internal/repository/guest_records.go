package repository

import (
	"context"
	"fmt"

	"beautybook/internal/database"
	"beautybook/internal/models"
)

// GuestRecordRepository re-parents guest orders and bookings.
type GuestRecordRepository struct {
	db *database.DB
}

func NewGuestRecordRepository(db *database.DB) *GuestRecordRepository {
	return &GuestRecordRepository{db: db}
}

// LinkByEmail sets user_id on every unowned order and booking whose
// guest_email equals email exactly. Guest contact columns are kept.
// Rows that already have an owner never match, so repeating the call links
// nothing new.
func (r *GuestRecordRepository) LinkByEmail(ctx context.Context, userID int64, email string) (models.LinkResult, error) {
	var result models.LinkResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer tx.Rollback()

	orders, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET user_id = $1, updated_at = NOW()
		WHERE user_id IS NULL AND guest_email = $2`, userID, email)
	if err != nil {
		return result, fmt.Errorf("failed to link orders: %w", err)
	}
	if result.OrdersLinked, err = orders.RowsAffected(); err != nil {
		return result, err
	}

	bookings, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET user_id = $1, updated_at = NOW()
		WHERE user_id IS NULL AND guest_email = $2`, userID, email)
	if err != nil {
		return result, fmt.Errorf("failed to link bookings: %w", err)
	}
	if result.BookingsLinked, err = bookings.RowsAffected(); err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		return models.LinkResult{}, err
	}

	return result, nil
}

// CreateOrder inserts an order. Used by seeding; checkout lives elsewhere.
func (r *GuestRecordRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, guest_email, guest_name, guest_phone, total, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		order.UserID,
		order.Guest.Email,
		order.Guest.Name,
		order.Guest.Phone,
		order.Total,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt)
}
