package service

import (
	"context"
	"fmt"

	"github.com/clinsys/examflow/internal/domain"
	"github.com/clinsys/examflow/internal/domain/catalog"
	"github.com/clinsys/examflow/internal/domain/examrequest"
	"github.com/clinsys/examflow/internal/workflow"
	"github.com/clinsys/examflow/pkg/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ExamRequestService struct {
	repo     examrequest.Repository
	catalog  catalog.Repository
	auditSvc *AuditService
	clk      clock.Clock
	log      *zap.Logger
}

func NewExamRequestService(
	repo examrequest.Repository,
	catalogRepo catalog.Repository,
	auditSvc *AuditService,
	clk clock.Clock,
	log *zap.Logger,
) *ExamRequestService {
	return &ExamRequestService{repo: repo, catalog: catalogRepo, auditSvc: auditSvc, clk: clk, log: log}
}

// Create opens a new exam request in encaminhado. Parceiro actors always
// create for their own partner; admins must name the partner they act for.
func (s *ExamRequestService) Create(
	ctx context.Context,
	cmd *examrequest.CreateExamRequestCommand,
	actor domain.Actor,
	ip string,
) (*examrequest.ExamRequest, error) {
	if !workflow.CanCreate(actor.Role, workflow.KindExamRequest) {
		return nil, workflow.ErrPermissionDenied
	}

	var partnerID uuid.UUID
	switch {
	case actor.Role == domain.RoleParceiro:
		if actor.PartnerID == nil {
			return nil, examrequest.ErrPartnerRequired
		}
		partnerID = *actor.PartnerID
	case cmd.PartnerID != nil:
		partnerID = *cmd.PartnerID
	default:
		return nil, examrequest.ErrPartnerRequired
	}

	if !cmd.PaymentType.IsValid() {
		return nil, examrequest.ErrInvalidPaymentType
	}
	switch cmd.PaymentType {
	case examrequest.PaymentConvenio:
		if cmd.InsuranceID == nil {
			return nil, examrequest.ErrInsuranceRequired
		}
		ok, err := s.catalog.InsuranceExists(ctx, *cmd.InsuranceID)
		if err != nil {
			return nil, fmt.Errorf("verifying insurance: %w", err)
		}
		if !ok {
			return nil, catalog.ErrInsuranceNotFound
		}
	case examrequest.PaymentParticular:
		if cmd.InsuranceID != nil {
			return nil, examrequest.ErrInsuranceNotAllowed
		}
	}

	ok, err := s.catalog.PartnerExists(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("verifying partner: %w", err)
	}
	if !ok {
		return nil, catalog.ErrPartnerNotFound
	}

	ok, err = s.catalog.DoctorExists(ctx, cmd.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("verifying doctor: %w", err)
	}
	if !ok {
		return nil, catalog.ErrDoctorNotFound
	}

	now := s.clk.Now()
	r := &examrequest.ExamRequest{
		ID:               s.clk.NewID(),
		CreatedAt:        now,
		UpdatedAt:        now,
		PatientName:      cmd.PatientName,
		PatientBirthDate: cmd.PatientBirthDate,
		ConsultationDate: cmd.ConsultationDate,
		DoctorID:         cmd.DoctorID,
		ExamDescription:  cmd.ExamDescription,
		PaymentType:      cmd.PaymentType,
		InsuranceID:      cmd.InsuranceID,
		PartnerID:        partnerID,
		ContactPhone:     cmd.ContactPhone,
		Status:           examrequest.StatusEncaminhado,
		CreatedBy:        actor.UserID,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		s.log.Error("failed to create exam request", zap.Error(err))
		return nil, fmt.Errorf("creating exam request: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "exam_request",
		ResourceID:   r.ID.String(),
		IPAddress:    ip,
	})

	return r, nil
}

// Transition moves an exam request to toStatus. The only real move is
// encaminhado → executado; the executado self-transition carries conduct
// edits. Both are gated by the permission table.
func (s *ExamRequestService) Transition(
	ctx context.Context,
	id uuid.UUID,
	toStatus examrequest.Status,
	cmd *examrequest.TransitionCommand,
	actor domain.Actor,
	ip string,
) (*examrequest.ExamRequest, error) {
	if !toStatus.IsValid() {
		return nil, examrequest.ErrInvalidStatus
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !workflow.CanTransition(actor.Role, workflow.KindExamRequest, string(r.Status), string(toStatus)) {
		return nil, workflow.ErrPermissionDenied
	}

	// Conduct is only settable once the request is already executed; the
	// call that performs the execution itself must not carry it.
	if cmd != nil && cmd.Conduct != nil && !r.Executed() {
		return nil, examrequest.ErrConductNotAllowed
	}

	prev := r.Status
	r.Status = toStatus
	r.UpdatedAt = s.clk.Now()
	if cmd != nil && cmd.Conduct != nil {
		if err := r.SetConduct(*cmd.Conduct, cmd.ConductObservations); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, r, prev); err != nil {
		return nil, fmt.Errorf("updating exam request: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionTransition,
		ResourceType: "exam_request",
		ResourceID:   id.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"from":%q,"to":%q}`, prev, toStatus),
	})

	return r, nil
}

func (s *ExamRequestService) Get(ctx context.Context, id uuid.UUID, actor domain.Actor) (*examrequest.ExamRequest, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleParceiro {
		if actor.PartnerID == nil || *actor.PartnerID != r.PartnerID {
			return nil, workflow.ErrPermissionDenied
		}
	}

	return r, nil
}

// List applies the partner visibility rule before querying: parceiro actors
// are pinned to their own partner, and an actor that cannot be scoped sees an
// empty result rather than everything.
func (s *ExamRequestService) List(
	ctx context.Context,
	q *examrequest.ListExamRequestsQuery,
	actor domain.Actor,
) (*examrequest.PagedExamRequests, error) {
	normalizeExamQuery(q)

	switch actor.Role {
	case domain.RoleAdmin, domain.RoleRecepcao, domain.RoleCheckup:
		// Unscoped; query filters apply as given.
	case domain.RoleParceiro:
		if actor.PartnerID == nil {
			return emptyExamPage(q), nil
		}
		q.PartnerID = actor.PartnerID
	default:
		// Fail closed: an unknown role sees nothing, never an error that
		// could be mistaken for "no data".
		return emptyExamPage(q), nil
	}

	return s.repo.List(ctx, q)
}

// Delete permanently removes an exam request. Admin only; there is no
// tombstone to recover from.
func (s *ExamRequestService) Delete(ctx context.Context, id uuid.UUID, actor domain.Actor, ip string) error {
	if !workflow.CanDelete(actor.Role, workflow.KindExamRequest) {
		return workflow.ErrPermissionDenied
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting exam request: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionDelete,
		ResourceType: "exam_request",
		ResourceID:   id.String(),
		IPAddress:    ip,
	})

	return nil
}

func normalizeExamQuery(q *examrequest.ListExamRequestsQuery) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
}

func emptyExamPage(q *examrequest.ListExamRequestsQuery) *examrequest.PagedExamRequests {
	return &examrequest.PagedExamRequests{
		Requests: []*examrequest.ExamRequest{},
		Page:     q.Page,
		PageSize: q.PageSize,
	}
}
