package database

import (
	"fmt"
	"log/slog"
	"strings"

	"beautybook/internal/models"
)

// Constraint names the repositories translate into domain errors.
const (
	ActiveSlotIndex      = "bookings_active_slot_uniq"
	BookingReferenceKey  = "bookings_reference_key"
	CalendarBlockSlotKey = "calendar_blocks_slot_key"
	UsersEmailKey        = "users_email_key"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createServicePackagesTable,
		createLocationsTable,
		createCalendarBlocksTable,
		createBookingsTable,
		addBookingsVersionColumn,
		activeSlotIndexDDL(),
		createBookingsUserIndex,
		createBookingsGuestEmailIndex,
		createOrdersTable,
		createOrdersGuestEmailIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// activeSlotIndexDDL builds the partial unique index from the same status list
// the queries filter on.
func activeSlotIndexDDL() string {
	quoted := make([]string, len(models.OccupyingStatuses))
	for i, s := range models.OccupyingStatuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return fmt.Sprintf(`
CREATE UNIQUE INDEX IF NOT EXISTS %s
ON bookings (booking_date, time_slot)
WHERE status IN (%s);`, ActiveSlotIndex, strings.Join(quoted, ", "))
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id SERIAL PRIMARY KEY,
    email VARCHAR(255) NOT NULL,
    password_hash VARCHAR(100) NOT NULL,
    full_name VARCHAR(200) NOT NULL,
    phone VARCHAR(50),
    is_operator BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    registered_at TIMESTAMP NOT NULL DEFAULT NOW(),
    last_logged_in TIMESTAMP,

    CONSTRAINT users_email_key UNIQUE (email)
);`

const createServicePackagesTable = `
CREATE TABLE IF NOT EXISTS service_packages (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    bride_price NUMERIC(12,2),
    maid_price NUMERIC(12,2),
    mother_price NUMERIC(12,2),
    other_price NUMERIC(12,2),
    min_brides INTEGER,
    max_brides INTEGER,
    min_maids INTEGER,
    max_maids INTEGER,
    min_mothers INTEGER,
    max_mothers INTEGER,
    min_others INTEGER,
    max_others INTEGER,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createLocationsTable = `
CREATE TABLE IF NOT EXISTS locations (
    id SERIAL PRIMARY KEY,
    name VARCHAR(200) NOT NULL,
    transport_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
    is_free BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createCalendarBlocksTable = `
CREATE TABLE IF NOT EXISTS calendar_blocks (
    id SERIAL PRIMARY KEY,
    block_date DATE NOT NULL,
    time_slot VARCHAR(5) NOT NULL,
    reason VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CONSTRAINT calendar_blocks_slot_key UNIQUE (block_date, time_slot)
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    reference VARCHAR(16) NOT NULL,
    user_id INTEGER REFERENCES users(user_id),
    guest_email VARCHAR(255),
    guest_name VARCHAR(200),
    guest_phone VARCHAR(50),
    booking_date DATE NOT NULL,
    time_slot VARCHAR(5) NOT NULL,
    package_id INTEGER NOT NULL REFERENCES service_packages(id),
    location_id INTEGER NOT NULL REFERENCES locations(id),
    num_brides INTEGER NOT NULL DEFAULT 0 CHECK (num_brides >= 0),
    num_maids INTEGER NOT NULL DEFAULT 0 CHECK (num_maids >= 0),
    num_mothers INTEGER NOT NULL DEFAULT 0 CHECK (num_mothers >= 0),
    num_others INTEGER NOT NULL DEFAULT 0 CHECK (num_others >= 0),
    subtotal NUMERIC(12,2) NOT NULL,
    transport_cost NUMERIC(12,2) NOT NULL,
    total NUMERIC(12,2) NOT NULL,
    deposit NUMERIC(12,2) NOT NULL,
    deposit_paid BOOLEAN NOT NULL DEFAULT FALSE,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    notes TEXT,
    admin_notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    version INTEGER NOT NULL DEFAULT 1,

    CONSTRAINT bookings_reference_key UNIQUE (reference),
    CHECK (status IN ('pending', 'deposit_received', 'confirmed', 'completed', 'cancelled')),
    CHECK (user_id IS NOT NULL OR (guest_email IS NOT NULL AND guest_name IS NOT NULL AND guest_phone IS NOT NULL))
);`

// Tables created before optimistic locking lack the column.
const addBookingsVersionColumn = `
ALTER TABLE bookings ADD COLUMN IF NOT EXISTS version INTEGER NOT NULL DEFAULT 1;`

const createBookingsUserIndex = `
CREATE INDEX IF NOT EXISTS bookings_user_id_idx ON bookings (user_id);`

const createBookingsGuestEmailIndex = `
CREATE INDEX IF NOT EXISTS bookings_guest_email_unlinked_idx
ON bookings (guest_email) WHERE user_id IS NULL;`

const createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
    id SERIAL PRIMARY KEY,
    user_id INTEGER REFERENCES users(user_id),
    guest_email VARCHAR(255),
    guest_name VARCHAR(200),
    guest_phone VARCHAR(50),
    total NUMERIC(12,2) NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createOrdersGuestEmailIndex = `
CREATE INDEX IF NOT EXISTS orders_guest_email_unlinked_idx
ON orders (guest_email) WHERE user_id IS NULL;`
