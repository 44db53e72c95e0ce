package checkuprequest

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *CheckupRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*CheckupRequest, error)

	// Update persists the full record guarded by the status the record had
	// when loaded; returns ErrStatusConflict when the guard misses. Non-status
	// fields remain last-write-wins.
	Update(ctx context.Context, r *CheckupRequest, expectedStatus Status) error

	List(ctx context.Context, q *ListCheckupRequestsQuery) (*PagedCheckupRequests, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
