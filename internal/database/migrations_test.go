package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveSlotIndexCoversOccupyingStatuses(t *testing.T) {
	ddl := activeSlotIndexDDL()

	assert.Contains(t, ddl, ActiveSlotIndex)
	assert.Contains(t, ddl, "(booking_date, time_slot)")
	assert.Contains(t, ddl, "'pending'")
	assert.Contains(t, ddl, "'confirmed'")
	assert.Contains(t, ddl, "'deposit_received'")
	assert.NotContains(t, ddl, "'cancelled'")
	assert.NotContains(t, ddl, "'completed'")
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(assertErr("dial tcp: connection refused")))
	assert.True(t, isRetryableError(assertErr("driver: bad connection")))
	assert.False(t, isRetryableError(assertErr("syntax error at or near")))
	assert.False(t, isRetryableError(nil))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
