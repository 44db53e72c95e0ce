package service

import (
	"context"
	"fmt"

	"github.com/clinsys/examflow/internal/domain"
	"github.com/clinsys/examflow/internal/domain/catalog"
	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/clinsys/examflow/internal/workflow"
	"github.com/clinsys/examflow/pkg/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckupRequestService struct {
	repo     checkuprequest.Repository
	catalog  catalog.Repository
	auditSvc *AuditService
	clk      clock.Clock
	log      *zap.Logger
}

func NewCheckupRequestService(
	repo checkuprequest.Repository,
	catalogRepo catalog.Repository,
	auditSvc *AuditService,
	clk clock.Clock,
	log *zap.Logger,
) *CheckupRequestService {
	return &CheckupRequestService{repo: repo, catalog: catalogRepo, auditSvc: auditSvc, clk: clk, log: log}
}

// Create opens a new check-up request in solicitado, snapshotting the
// battery's exam list so later battery edits never reach existing requests.
func (s *CheckupRequestService) Create(
	ctx context.Context,
	cmd *checkuprequest.CreateCheckupRequestCommand,
	actor domain.Actor,
	ip string,
) (*checkuprequest.CheckupRequest, error) {
	if !workflow.CanCreate(actor.Role, workflow.KindCheckupRequest) {
		return nil, workflow.ErrPermissionDenied
	}

	battery, err := s.catalog.GetBattery(ctx, cmd.BatteryID)
	if err != nil {
		return nil, err
	}

	examNames := cmd.ExamNames
	if len(examNames) == 0 {
		examNames = make([]string, len(battery.ExamNames))
		copy(examNames, battery.ExamNames)
	}
	if len(examNames) == 0 {
		return nil, checkuprequest.ErrEmptyExamList
	}

	if cmd.DoctorID != nil {
		ok, err := s.catalog.DoctorExists(ctx, *cmd.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("verifying doctor: %w", err)
		}
		if !ok {
			return nil, catalog.ErrDoctorNotFound
		}
	}

	now := s.clk.Now()
	r := &checkuprequest.CheckupRequest{
		ID:               s.clk.NewID(),
		CreatedAt:        now,
		UpdatedAt:        now,
		PatientName:      cmd.PatientName,
		PatientBirthDate: cmd.PatientBirthDate,
		Company:          cmd.Company,
		BatteryID:        cmd.BatteryID,
		ExamNames:        examNames,
		DoctorID:         cmd.DoctorID,
		PlannedDate:      cmd.PlannedDate,
		Status:           checkuprequest.StatusSolicitado,
		CreatedBy:        actor.UserID,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.log.Error("failed to create checkup request", zap.Error(err))
		return nil, fmt.Errorf("creating checkup request: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "checkup_request",
		ResourceID:   r.ID.String(),
		IPAddress:    ip,
	})

	return r, nil
}

// Transition moves a check-up request along its lifecycle. Forwarding a
// solicitado request requires a destination unit; every destination state
// stamps its audit timestamp on first entry only.
func (s *CheckupRequestService) Transition(
	ctx context.Context,
	id uuid.UUID,
	toStatus checkuprequest.Status,
	cmd *checkuprequest.TransitionCommand,
	actor domain.Actor,
	ip string,
) (*checkuprequest.CheckupRequest, error) {
	if !toStatus.IsValid() {
		return nil, checkuprequest.ErrInvalidStatus
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !workflow.CanTransition(actor.Role, workflow.KindCheckupRequest, string(r.Status), string(toStatus)) {
		return nil, workflow.ErrPermissionDenied
	}

	if toStatus == checkuprequest.StatusEncaminhado && r.Status == checkuprequest.StatusSolicitado {
		unitID := r.UnitID
		if cmd != nil && cmd.UnitID != nil {
			unitID = cmd.UnitID
		}
		if unitID == nil {
			return nil, checkuprequest.ErrUnitRequired
		}
		ok, err := s.catalog.UnitExists(ctx, *unitID)
		if err != nil {
			return nil, fmt.Errorf("verifying unit: %w", err)
		}
		if !ok {
			return nil, catalog.ErrUnitNotFound
		}
		r.UnitID = unitID
	}

	if cmd != nil && cmd.Observations != nil {
		r.Observations = *cmd.Observations
	}

	prev := r.Status
	r.ApplyTransition(toStatus, s.clk.Now())

	if err := s.repo.Update(ctx, r, prev); err != nil {
		return nil, fmt.Errorf("updating checkup request: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionTransition,
		ResourceType: "checkup_request",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"from":%q,"to":%q}`, prev, toStatus),
	})

	return r, nil
}

func (s *CheckupRequestService) Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (*checkuprequest.CheckupRequest, error) {
	// Check-up requests are not partner-scoped; any authenticated role may
	// read them.
	return s.repo.GetByID(ctx, id)
}

// List has no partner scoping: check-up requests are visible to every known
// role. Unknown roles still see nothing.
func (s *CheckupRequestService) List(
	ctx context.Context,
	q *checkuprequest.ListCheckupRequestsQuery,
	actor domain.Actor,
) (*checkuprequest.PagedCheckupRequests, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	if !actor.Role.IsValid() {
		return &checkuprequest.PagedCheckupRequests{
			Requests: []*checkuprequest.CheckupRequest{},
			Page:     q.Page,
			PageSize: q.PageSize,
		}, nil
	}

	return s.repo.List(ctx, q)
}

func (s *CheckupRequestService) Delete(ctx context.Context, id uuid.UUID, actor domain.Actor, ip string) error {
	if !workflow.CanDelete(actor.Role, workflow.KindCheckupRequest) {
		return workflow.ErrPermissionDenied
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting checkup request: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionDelete,
		ResourceType: "checkup_request",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}
