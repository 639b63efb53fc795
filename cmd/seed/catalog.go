package main

import (
	"beautybook/internal/models"

	"github.com/shopspring/decimal"
)

func price(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func bound(v int) *int { return &v }

// demoPackages is the starter rate card. Categories left unpriced are free.
func demoPackages() []models.ServicePackage {
	return []models.ServicePackage{
		{
			Name:        "Bridal Full Glam",
			BridePrice:  price(15000),
			MaidPrice:   price(5000),
			MotherPrice: price(6000),
			OtherPrice:  price(4500),
			MinBrides:   bound(1),
			MaxBrides:   bound(1),
			MaxMaids:    bound(8),
			MaxMothers:  bound(2),
			MaxOthers:   bound(6),
			IsActive:    true,
		},
		{
			Name:       "Bridal Natural",
			BridePrice: price(11000),
			MaidPrice:  price(4000),
			MinBrides:  bound(1),
			MaxBrides:  bound(1),
			MaxMaids:   bound(4),
			MaxMothers: bound(0),
			MaxOthers:  bound(0),
			IsActive:   true,
		},
		{
			Name:       "Event Party",
			OtherPrice: price(3500),
			MaxBrides:  bound(0),
			MinOthers:  bound(2),
			MaxOthers:  bound(10),
			IsActive:   true,
		},
	}
}

func demoLocations() []models.Location {
	return []models.Location{
		{Name: "Studio", TransportCost: decimal.Zero, IsFree: true, IsActive: true},
		{Name: "City Centre", TransportCost: decimal.NewFromInt(800), IsActive: true},
		{Name: "Suburbs", TransportCost: decimal.NewFromInt(1500), IsActive: true},
		{Name: "Out of Town", TransportCost: decimal.NewFromInt(3500), IsActive: true},
	}
}
