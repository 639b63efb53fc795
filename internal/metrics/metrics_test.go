package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordBookingOutcomes(t *testing.T) {
	expected := func(err error) bool { return err.Error() == "rejected" }

	before := testutil.ToFloat64(BookingOperations.WithLabelValues("test_op", OutcomeRejected))
	RecordBooking("test_op", errors.New("rejected"), expected)
	assert.Equal(t, before+1, testutil.ToFloat64(BookingOperations.WithLabelValues("test_op", OutcomeRejected)))

	before = testutil.ToFloat64(BookingOperations.WithLabelValues("test_op", OutcomeError))
	RecordBooking("test_op", errors.New("boom"), expected)
	assert.Equal(t, before+1, testutil.ToFloat64(BookingOperations.WithLabelValues("test_op", OutcomeError)))

	before = testutil.ToFloat64(BookingOperations.WithLabelValues("test_op", OutcomeOK))
	RecordBooking("test_op", nil, expected)
	assert.Equal(t, before+1, testutil.ToFloat64(BookingOperations.WithLabelValues("test_op", OutcomeOK)))
}
