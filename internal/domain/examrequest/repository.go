package examrequest

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *ExamRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*ExamRequest, error)

	// Update persists the full record. expectedStatus is the status the
	// record had when it was loaded; implementations guard the write with it
	// and return ErrStatusConflict when another caller moved the record first.
	// Non-status fields remain last-write-wins.
	Update(ctx context.Context, r *ExamRequest, expectedStatus Status) error

	List(ctx context.Context, q *ListExamRequestsQuery) (*PagedExamRequests, error)

	// Delete removes the record permanently. There is no soft delete for
	// exam requests.
	Delete(ctx context.Context, id uuid.UUID) error
}
