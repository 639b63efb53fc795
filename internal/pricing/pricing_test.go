package pricing

import (
	"testing"

	"beautybook/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestPriceUnpricedCategoryIsIgnored(t *testing.T) {
	pkg := &models.ServicePackage{BridePrice: price("15000"), MaidPrice: price("5000")}
	loc := &models.Location{TransportCost: decimal.NewFromInt(800)}

	q := Compute(pkg, loc, models.Attendees{Brides: 1, Maids: 4, Mothers: 2})

	assert.True(t, q.Subtotal.Equal(decimal.NewFromInt(35000)), q.Subtotal.String())
	assert.True(t, q.TransportCost.Equal(decimal.NewFromInt(800)))
	assert.True(t, q.Total.Equal(decimal.NewFromInt(35800)))
	assert.Equal(t, "17900.00", q.Deposit.StringFixed(2))
	assert.Equal(t, []models.AttendeeCategory{models.CategoryMother}, UnpricedWithCount(pkg, models.Attendees{Brides: 1, Maids: 4, Mothers: 2}))
}

func TestPriceFreeLocation(t *testing.T) {
	pkg := &models.ServicePackage{BridePrice: price("12000.50")}
	loc := &models.Location{TransportCost: decimal.NewFromInt(1500), IsFree: true}

	subtotal, surcharge, total := Price(pkg, loc, models.Attendees{Brides: 2})

	assert.Equal(t, "24001.00", subtotal.StringFixed(2))
	assert.True(t, surcharge.IsZero())
	assert.True(t, total.Equal(subtotal))
}

func TestPriceZeroCountsContributeNothing(t *testing.T) {
	pkg := &models.ServicePackage{BridePrice: price("100"), OtherPrice: price("40")}
	loc := &models.Location{TransportCost: decimal.Zero}

	subtotal, _, _ := Price(pkg, loc, models.Attendees{Others: 3})

	assert.Equal(t, "120.00", subtotal.StringFixed(2))
}

func TestDepositRoundsHalfUp(t *testing.T) {
	cases := map[string]string{
		"35800":  "17900.00",
		"100.01": "50.01",
		"0.01":   "0.01",
		"0.03":   "0.02",
		"99.99":  "50.00",
		"0":      "0.00",
	}
	for total, want := range cases {
		got := Deposit(decimal.RequireFromString(total))
		assert.Equal(t, want, got.StringFixed(2), "total %s", total)
	}
}

func TestTotalIdentity(t *testing.T) {
	pkg := &models.ServicePackage{
		BridePrice:  price("333.33"),
		MaidPrice:   price("111.11"),
		MotherPrice: price("77.77"),
		OtherPrice:  price("10.01"),
	}
	loc := &models.Location{TransportCost: decimal.RequireFromString("12.34")}

	for n := 0; n < 5; n++ {
		a := models.Attendees{Brides: 1, Maids: n, Mothers: n % 2, Others: n * 3}
		q := Compute(pkg, loc, a)
		assert.True(t, q.Total.Equal(q.Subtotal.Add(q.TransportCost)))
		assert.True(t, q.Deposit.Equal(q.Total.Mul(decimal.RequireFromString("0.5")).Round(2)))
	}
}
