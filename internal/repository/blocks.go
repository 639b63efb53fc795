package repository

import (
	"context"
	"database/sql"
	"time"

	"beautybook/internal/calendar"
	"beautybook/internal/database"
	"beautybook/internal/models"
)

type BlockRepository struct {
	db *database.DB
}

func NewBlockRepository(db *database.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Get returns the block on the slot, or nil when the slot is not blocked.
func (r *BlockRepository) Get(ctx context.Context, date time.Time, timeSlot string) (*models.CalendarBlock, error) {
	block := &models.CalendarBlock{}
	query := `
		SELECT id, block_date, time_slot, reason, created_at
		FROM calendar_blocks
		WHERE block_date = $1 AND time_slot = $2`

	err := r.db.QueryRowContext(ctx, query, date.Format(calendar.DateLayout), timeSlot).Scan(
		&block.ID,
		&block.Date,
		&block.TimeSlot,
		&block.Reason,
		&block.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	block.Date = calendar.DateOf(block.Date)
	return block, nil
}

func (r *BlockRepository) ListInRange(ctx context.Context, start, end time.Time) ([]models.CalendarBlock, error) {
	query := `
		SELECT id, block_date, time_slot, reason, created_at
		FROM calendar_blocks
		WHERE block_date BETWEEN $1 AND $2
		ORDER BY block_date, time_slot`

	rows, err := r.db.QueryWithRetry(ctx, query, start.Format(calendar.DateLayout), end.Format(calendar.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []models.CalendarBlock
	for rows.Next() {
		var block models.CalendarBlock
		if err := rows.Scan(&block.ID, &block.Date, &block.TimeSlot, &block.Reason, &block.CreatedAt); err != nil {
			return nil, err
		}
		block.Date = calendar.DateOf(block.Date)
		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}

// Create inserts a block; a second block on the same slot is ErrBlockExists.
func (r *BlockRepository) Create(ctx context.Context, block *models.CalendarBlock) error {
	query := `
		INSERT INTO calendar_blocks (block_date, time_slot, reason)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		block.Date.Format(calendar.DateLayout),
		block.TimeSlot,
		block.Reason,
	).Scan(&block.ID, &block.CreatedAt)

	return translateError(err)
}

// Delete removes a block and reports whether it existed.
func (r *BlockRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendar_blocks WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
