package repository

import (
	"context"
	"database/sql"

	"beautybook/internal/database"
	"beautybook/internal/models"
)

// CatalogRepository reads packages and locations. Catalog management lives
// elsewhere; Create* exist for seeding.
type CatalogRepository struct {
	db *database.DB
}

func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetPackage(ctx context.Context, id int64) (*models.ServicePackage, error) {
	pkg := &models.ServicePackage{}
	query := `
		SELECT id, name, bride_price, maid_price, mother_price, other_price,
		       min_brides, max_brides, min_maids, max_maids,
		       min_mothers, max_mothers, min_others, max_others, is_active
		FROM service_packages
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pkg.ID,
		&pkg.Name,
		&pkg.BridePrice,
		&pkg.MaidPrice,
		&pkg.MotherPrice,
		&pkg.OtherPrice,
		&pkg.MinBrides,
		&pkg.MaxBrides,
		&pkg.MinMaids,
		&pkg.MaxMaids,
		&pkg.MinMothers,
		&pkg.MaxMothers,
		&pkg.MinOthers,
		&pkg.MaxOthers,
		&pkg.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return pkg, err
}

func (r *CatalogRepository) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	loc := &models.Location{}
	query := `
		SELECT id, name, transport_cost, is_free, is_active
		FROM locations
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&loc.ID,
		&loc.Name,
		&loc.TransportCost,
		&loc.IsFree,
		&loc.IsActive,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return loc, err
}

func (r *CatalogRepository) CreatePackage(ctx context.Context, pkg *models.ServicePackage) error {
	query := `
		INSERT INTO service_packages (
			name, bride_price, maid_price, mother_price, other_price,
			min_brides, max_brides, min_maids, max_maids,
			min_mothers, max_mothers, min_others, max_others, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		pkg.Name,
		pkg.BridePrice,
		pkg.MaidPrice,
		pkg.MotherPrice,
		pkg.OtherPrice,
		pkg.MinBrides,
		pkg.MaxBrides,
		pkg.MinMaids,
		pkg.MaxMaids,
		pkg.MinMothers,
		pkg.MaxMothers,
		pkg.MinOthers,
		pkg.MaxOthers,
		pkg.IsActive,
	).Scan(&pkg.ID)
}

func (r *CatalogRepository) CreateLocation(ctx context.Context, loc *models.Location) error {
	query := `
		INSERT INTO locations (name, transport_cost, is_free, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		loc.Name,
		loc.TransportCost,
		loc.IsFree,
		loc.IsActive,
	).Scan(&loc.ID)
}
