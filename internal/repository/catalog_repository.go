package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinsys/examflow/internal/domain/catalog"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) PartnerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &catalog.Partner{}, id)
}

func (r *CatalogRepository) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &catalog.Doctor{}, id)
}

func (r *CatalogRepository) InsuranceExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &catalog.Insurance{}, id)
}

func (r *CatalogRepository) UnitExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, &catalog.Unit{}, id)
}

func (r *CatalogRepository) GetBattery(ctx context.Context, id uuid.UUID) (*catalog.Battery, error) {
	var battery catalog.Battery
	if err := r.db.WithContext(ctx).First(&battery, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBatteryNotFound
		}
		return nil, fmt.Errorf("loading battery: %w", err)
	}
	return &battery, nil
}

func (r *CatalogRepository) exists(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return n > 0, nil
}
