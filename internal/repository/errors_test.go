package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "active slot index",
			err:  &pq.Error{Code: "23505", Constraint: "bookings_active_slot_uniq"},
			want: ErrSlotTaken,
		},
		{
			name: "reference key wrapped",
			err:  fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "bookings_reference_key"}),
			want: ErrDuplicateReference,
		},
		{
			name: "block slot key",
			err:  &pq.Error{Code: "23505", Constraint: "calendar_blocks_slot_key"},
			want: ErrBlockExists,
		},
		{
			name: "users email key",
			err:  &pq.Error{Code: "23505", Constraint: "users_email_key"},
			want: ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.err), tt.want)
		})
	}
}

func TestTranslateErrorPassesThroughOthers(t *testing.T) {
	fk := &pq.Error{Code: "23503", Constraint: "bookings_package_id_fkey"}
	assert.Same(t, fk, translateError(fk))

	unknown := &pq.Error{Code: "23505", Constraint: "something_else"}
	assert.Same(t, unknown, translateError(unknown))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, translateError(plain))
}
