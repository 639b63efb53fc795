// Package pricing computes booking amounts from a package rate card.
// All arithmetic is fixed-point; nothing here touches float64.
package pricing

import (
	"beautybook/internal/models"

	"github.com/shopspring/decimal"
)

var depositRate = decimal.RequireFromString("0.5")

// Quote is the full price breakdown of a booking.
type Quote struct {
	Subtotal      decimal.Decimal
	TransportCost decimal.Decimal
	Total         decimal.Decimal
	Deposit       decimal.Decimal
}

// Price adds unitPrice*count for every priced category with a positive
// count. A category without a unit price contributes nothing whatever its
// count. The surcharge is the location's transport cost unless the location
// is marked free.
func Price(pkg *models.ServicePackage, loc *models.Location, attendees models.Attendees) (subtotal, surcharge, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, rule := range pkg.Rules() {
		count := attendees.Count(rule.Category)
		if !rule.UnitPrice.Valid || count <= 0 {
			continue
		}
		subtotal = subtotal.Add(rule.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(count))))
	}

	surcharge = decimal.Zero
	if !loc.IsFree {
		surcharge = loc.TransportCost
	}

	return subtotal, surcharge, subtotal.Add(surcharge)
}

// Deposit is half of total rounded half-up to two decimal places.
func Deposit(total decimal.Decimal) decimal.Decimal {
	return total.Mul(depositRate).Round(2)
}

// Compute returns Price and Deposit together.
func Compute(pkg *models.ServicePackage, loc *models.Location, attendees models.Attendees) Quote {
	subtotal, surcharge, total := Price(pkg, loc, attendees)
	return Quote{
		Subtotal:      subtotal,
		TransportCost: surcharge,
		Total:         total,
		Deposit:       Deposit(total),
	}
}

// UnpricedWithCount lists categories that have attendees but no unit price.
func UnpricedWithCount(pkg *models.ServicePackage, attendees models.Attendees) []models.AttendeeCategory {
	var out []models.AttendeeCategory
	for _, rule := range pkg.Rules() {
		if !rule.UnitPrice.Valid && attendees.Count(rule.Category) > 0 {
			out = append(out, rule.Category)
		}
	}
	return out
}
