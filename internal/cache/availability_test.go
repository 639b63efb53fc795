package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

var (
	today = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	start = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
)

func TestGetRange_Hit(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := NewAvailabilityCache(db, 30*time.Second)

	mockRedis.ExpectGet(versionKey).SetVal("3")
	mockRedis.ExpectGet("availability:v3:2025-06-01:2025-06-02:2025-06-08").SetVal(`[{"date":"2025-06-02"}]`)

	data, key, ok := c.GetRange(context.Background(), today, start, end)

	assert.True(t, ok)
	assert.Equal(t, "availability:v3:2025-06-01:2025-06-02:2025-06-08", key)
	assert.JSONEq(t, `[{"date":"2025-06-02"}]`, string(data))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestGetRange_MissWithoutVersion(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := NewAvailabilityCache(db, 30*time.Second)

	mockRedis.ExpectGet(versionKey).RedisNil()
	mockRedis.ExpectGet("availability:v0:2025-06-01:2025-06-02:2025-06-08").RedisNil()

	data, key, ok := c.GetRange(context.Background(), today, start, end)

	assert.False(t, ok)
	assert.Nil(t, data)
	assert.Equal(t, "availability:v0:2025-06-01:2025-06-02:2025-06-08", key)
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestGetRange_VersionErrorIsMiss(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := NewAvailabilityCache(db, 30*time.Second)

	mockRedis.ExpectGet(versionKey).SetErr(errors.New("connection reset"))

	_, key, ok := c.GetRange(context.Background(), today, start, end)

	assert.False(t, ok)
	assert.Empty(t, key)
	assert.NoError(t, mockRedis.ExpectationsWereMet())

	// nothing is written without a resolved key
	c.SetRange(context.Background(), key, []byte(`{"ok":true}`))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestMissThenFill_ReadsVersionOnce(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := NewAvailabilityCache(db, 30*time.Second)
	ctx := context.Background()
	key := "availability:v7:2025-06-01:2025-06-02:2025-06-08"

	mockRedis.ExpectGet(versionKey).SetVal("7")
	mockRedis.ExpectGet(key).RedisNil()
	mockRedis.ExpectIncr(versionKey).SetVal(8)
	mockRedis.ExpectSet(key, `{"ok":true}`, 30*time.Second).SetVal("OK")

	_, got, ok := c.GetRange(ctx, today, start, end)
	assert.False(t, ok)
	assert.Equal(t, key, got)

	// a booking lands between the read and the fill
	c.Invalidate(ctx)
	c.SetRange(ctx, got, []byte(`{"ok":true}`))

	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestInvalidateBumpsVersion(t *testing.T) {
	db, mockRedis := redismock.NewClientMock()
	c := NewAvailabilityCache(db, 30*time.Second)

	mockRedis.ExpectIncr(versionKey).SetVal(8)

	c.Invalidate(context.Background())

	assert.NoError(t, mockRedis.ExpectationsWereMet())
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *AvailabilityCache

	_, _, ok := c.GetRange(context.Background(), today, start, end)
	assert.False(t, ok)

	c.SetRange(context.Background(), "availability:v1:x", []byte("x"))
	c.Invalidate(context.Background())
	assert.NoError(t, c.Close())
}
