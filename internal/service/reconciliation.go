package service

import (
	"context"
	"fmt"

	"beautybook/internal/logger"
	"beautybook/internal/metrics"
	"beautybook/internal/models"
)

// ReconciliationService attaches guest orders and bookings to an account.
type ReconciliationService struct {
	records GuestRecordStore
}

func NewReconciliationService(records GuestRecordStore) *ReconciliationService {
	return &ReconciliationService{records: records}
}

// LinkGuestRecords gives userID every unowned record whose guest email is
// exactly email. Running it again links nothing new.
func (s *ReconciliationService) LinkGuestRecords(ctx context.Context, userID int64, email string) (models.LinkResult, error) {
	if email == "" {
		return models.LinkResult{}, nil
	}

	result, err := s.records.LinkByEmail(ctx, userID, email)
	if err != nil {
		return models.LinkResult{}, fmt.Errorf("failed to link guest records: %w", err)
	}

	metrics.GuestRecordsLinked.WithLabelValues("orders").Add(float64(result.OrdersLinked))
	metrics.GuestRecordsLinked.WithLabelValues("bookings").Add(float64(result.BookingsLinked))

	if result.OrdersLinked > 0 || result.BookingsLinked > 0 {
		logger.WithContext(ctx).Info("Guest records linked",
			"user_id", userID,
			"orders_linked", result.OrdersLinked,
			"bookings_linked", result.BookingsLinked)
	}

	return result, nil
}
