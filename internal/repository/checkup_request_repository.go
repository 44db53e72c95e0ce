package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckupRequestRepository struct {
	db *gorm.DB
}

func NewCheckupRequestRepository(db *gorm.DB) *CheckupRequestRepository {
	return &CheckupRequestRepository{db: db}
}

func (r *CheckupRequestRepository) Create(ctx context.Context, req *checkuprequest.CheckupRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *CheckupRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*checkuprequest.CheckupRequest, error) {
	var req checkuprequest.CheckupRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, checkuprequest.ErrNotFound
		}
		return nil, fmt.Errorf("loading checkup request: %w", err)
	}
	return &req, nil
}

// Update writes the mutable workflow fields and audit stamps guarded by the
// status the caller loaded; a missed guard returns ErrStatusConflict. The
// stamps are written as-is: the entity only ever fills an unset stamp, so a
// re-entered state can never move one forward.
func (r *CheckupRequestRepository) Update(ctx context.Context, req *checkuprequest.CheckupRequest, expectedStatus checkuprequest.Status) error {
	res := r.db.WithContext(ctx).
		Model(&checkuprequest.CheckupRequest{}).
		Where("id = ? AND status = ?", req.ID, expectedStatus).
		Updates(map[string]any{
			"status":                req.Status,
			"unit_id":               req.UnitID,
			"observations":          req.Observations,
			"updated_at":            req.UpdatedAt,
			"executado_at":          req.ExecutadoAt,
			"laudos_prontos_at":     req.LaudosProntosAt,
			"notificado_checkup_at": req.NotificadoCheckupAt,
			"laudos_buscados_at":    req.LaudosBuscadosAt,
		})
	if res.Error != nil {
		return fmt.Errorf("updating checkup request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return checkuprequest.ErrStatusConflict
	}
	return nil
}

func (r *CheckupRequestRepository) List(ctx context.Context, q *checkuprequest.ListCheckupRequestsQuery) (*checkuprequest.PagedCheckupRequests, error) {
	db := r.db.WithContext(ctx).Model(&checkuprequest.CheckupRequest{})

	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.BatteryID != nil {
		db = db.Where("battery_id = ?", *q.BatteryID)
	}
	if q.UnitID != nil {
		db = db.Where("unit_id = ?", *q.UnitID)
	}
	if q.Search != "" {
		db = db.Where("company ILIKE ?", "%"+q.Search+"%")
	}
	if q.DateFrom != nil {
		db = db.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("created_at <= ?", *q.DateTo)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting checkup requests: %w", err)
	}

	var rows []*checkuprequest.CheckupRequest
	err := db.Order(orderClause(q.SortBy, q.SortOrder, checkupSortColumns)).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing checkup requests: %w", err)
	}

	return &checkuprequest.PagedCheckupRequests{
		Requests:   rows,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(total, q.PageSize),
	}, nil
}

func (r *CheckupRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&checkuprequest.CheckupRequest{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting checkup request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return checkuprequest.ErrNotFound
	}
	return nil
}

var checkupSortColumns = map[string]string{
	"created_at":   "created_at",
	"planned_date": "planned_date",
	"company":      "company",
	"patient_name": "patient_name",
}
