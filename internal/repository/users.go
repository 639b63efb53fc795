package repository

import (
	"context"
	"database/sql"

	"beautybook/internal/database"
	"beautybook/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	user_id, email, password_hash, full_name, phone,
	is_operator, is_active, registered_at, last_logged_in`

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.UserID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Phone,
		&user.IsOperator,
		&user.IsActive,
		&user.RegisteredAt,
		&user.LastLoggedIn,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return user, err
}

// Create inserts a user; a taken email is ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, phone, is_operator, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, registered_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Phone,
		user.IsOperator,
		user.IsActive,
	).Scan(&user.UserID, &user.RegisteredAt)

	return translateError(err)
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_logged_in = NOW() WHERE user_id = $1`, id)
	return err
}
