package service

import (
	"context"
	"errors"
	"fmt"

	"beautybook/internal/calendar"
)

const (
	referencePrefix = "BK"
	maxSequence     = 9999
)

var ErrReferenceSpaceExhausted = errors.New("no booking references left for today")

// ReferenceGenerator proposes references of the form BK<YYYYMMDD><NNNN>.
// The unique constraint on bookings.reference stays the authority; a
// proposal can still collide with a concurrent insert.
type ReferenceGenerator struct {
	bookings BookingStore
	clock    calendar.Clock
}

func NewReferenceGenerator(bookings BookingStore, clock calendar.Clock) *ReferenceGenerator {
	return &ReferenceGenerator{bookings: bookings, clock: clock}
}

func (g *ReferenceGenerator) Next(ctx context.Context) (string, error) {
	prefix := referencePrefix + g.clock.Now().UTC().Format("20060102")

	count, err := g.bookings.CountReferences(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count references: %w", err)
	}

	for seq := count + 1; seq <= maxSequence; seq++ {
		reference := fmt.Sprintf("%s%04d", prefix, seq)
		exists, err := g.bookings.ReferenceExists(ctx, reference)
		if err != nil {
			return "", fmt.Errorf("failed to check reference: %w", err)
		}
		if !exists {
			return reference, nil
		}
	}

	return "", ErrReferenceSpaceExhausted
}
