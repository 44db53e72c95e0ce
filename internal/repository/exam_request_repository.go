package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clinsys/examflow/internal/domain/examrequest"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamRequestRepository struct {
	db *gorm.DB
}

func NewExamRequestRepository(db *gorm.DB) *ExamRequestRepository {
	return &ExamRequestRepository{db: db}
}

func (r *ExamRequestRepository) Create(ctx context.Context, req *examrequest.ExamRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *ExamRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*examrequest.ExamRequest, error) {
	var req examrequest.ExamRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, examrequest.ErrNotFound
		}
		return nil, fmt.Errorf("loading exam request: %w", err)
	}
	return &req, nil
}

// Update writes the mutable workflow fields guarded by the status the caller
// loaded. A missed guard means another caller transitioned the record in
// between; the caller gets ErrStatusConflict and should reload.
func (r *ExamRequestRepository) Update(ctx context.Context, req *examrequest.ExamRequest, expectedStatus examrequest.Status) error {
	res := r.db.WithContext(ctx).
		Model(&examrequest.ExamRequest{}).
		Where("id = ? AND status = ?", req.ID, expectedStatus).
		Updates(map[string]any{
			"status":               req.Status,
			"conduct":              req.Conduct,
			"conduct_observations": req.ConductObservations,
			"updated_at":           req.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("updating exam request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return examrequest.ErrStatusConflict
	}
	return nil
}

func (r *ExamRequestRepository) List(ctx context.Context, q *examrequest.ListExamRequestsQuery) (*examrequest.PagedExamRequests, error) {
	db := r.db.WithContext(ctx).Model(&examrequest.ExamRequest{})

	if q.PartnerID != nil {
		db = db.Where("partner_id = ?", *q.PartnerID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}
	if q.PaymentType != nil {
		db = db.Where("payment_type = ?", *q.PaymentType)
	}
	if q.Search != "" {
		db = db.Where("patient_name ILIKE ?", "%"+q.Search+"%")
	}
	if q.DateFrom != nil {
		db = db.Where("consultation_date >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("consultation_date <= ?", *q.DateTo)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting exam requests: %w", err)
	}

	var rows []*examrequest.ExamRequest
	err := db.Order(orderClause(q.SortBy, q.SortOrder, examSortColumns)).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing exam requests: %w", err)
	}

	return &examrequest.PagedExamRequests{
		Requests:   rows,
		TotalCount: total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(total, q.PageSize),
	}, nil
}

func (r *ExamRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&examrequest.ExamRequest{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting exam request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return examrequest.ErrNotFound
	}
	return nil
}

var examSortColumns = map[string]string{
	"created_at":        "created_at",
	"consultation_date": "consultation_date",
	"patient_name":      "patient_name",
}
