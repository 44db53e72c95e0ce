package catalog

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	PartnerExists(ctx context.Context, id uuid.UUID) (bool, error)
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	InsuranceExists(ctx context.Context, id uuid.UUID) (bool, error)
	UnitExists(ctx context.Context, id uuid.UUID) (bool, error)

	GetBattery(ctx context.Context, id uuid.UUID) (*Battery, error)
}
