package service

import (
	"context"
	"errors"

	"github.com/clinsys/examflow/internal/domain"
	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/clinsys/examflow/internal/domain/examrequest"
	"github.com/clinsys/examflow/internal/workflow"
	"github.com/clinsys/examflow/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkflowService is the single entry point the handlers call. It dispatches
// on entity kind, keeps the workflow counters, and never exposes the
// permission table or the repositories to its callers.
type WorkflowService struct {
	exams    *ExamRequestService
	checkups *CheckupRequestService
	metrics  *metrics.Collector
	log      *zap.Logger
}

func NewWorkflowService(
	exams *ExamRequestService,
	checkups *CheckupRequestService,
	collector *metrics.Collector,
	log *zap.Logger,
) *WorkflowService {
	return &WorkflowService{exams: exams, checkups: checkups, metrics: collector, log: log}
}

// TransitionPayload is the uniform payload of a transition call; each kind
// reads the fields that concern it and rejects the rest by validation.
type TransitionPayload struct {
	// Check-up: destination unit when forwarding, free-text observations.
	UnitID       *uuid.UUID
	Observations *string
	// Exam: conduct classification, only while already executado.
	Conduct             *string
	ConductObservations string
}

// Transition applies a state transition to the record of the given kind.
// The returned value is the updated *examrequest.ExamRequest or
// *checkuprequest.CheckupRequest.
func (s *WorkflowService) Transition(
	ctx context.Context,
	actor domain.Actor,
	kind workflow.EntityKind,
	id uuid.UUID,
	toState string,
	payload TransitionPayload,
	ip string,
) (any, error) {
	var (
		updated any
		err     error
	)

	switch kind {
	case workflow.KindExamRequest:
		cmd := &examrequest.TransitionCommand{ConductObservations: payload.ConductObservations}
		if payload.Conduct != nil {
			conduct := examrequest.Conduct(*payload.Conduct)
			if !conduct.IsValid() {
				return nil, examrequest.ErrInvalidConduct
			}
			cmd.Conduct = &conduct
		}
		updated, err = s.exams.Transition(ctx, id, examrequest.Status(toState), cmd, actor, ip)

	case workflow.KindCheckupRequest:
		cmd := &checkuprequest.TransitionCommand{
			UnitID:       payload.UnitID,
			Observations: payload.Observations,
		}
		updated, err = s.checkups.Transition(ctx, id, checkuprequest.Status(toState), cmd, actor, ip)

	default:
		return nil, workflow.ErrUnknownEntityKind
	}

	if err != nil {
		if errors.Is(err, workflow.ErrPermissionDenied) {
			s.countDenied(kind)
		}
		return nil, err
	}

	s.countTransition(kind, toState)
	return updated, nil
}

func (s *WorkflowService) CreateExamRequest(
	ctx context.Context,
	actor domain.Actor,
	cmd *examrequest.CreateExamRequestCommand,
	ip string,
) (*examrequest.ExamRequest, error) {
	r, err := s.exams.Create(ctx, cmd, actor, ip)
	if err != nil {
		if errors.Is(err, workflow.ErrPermissionDenied) {
			s.countDenied(workflow.KindExamRequest)
		}
		return nil, err
	}
	s.countCreated(workflow.KindExamRequest)
	return r, nil
}

func (s *WorkflowService) CreateCheckupRequest(
	ctx context.Context,
	actor domain.Actor,
	cmd *checkuprequest.CreateCheckupRequestCommand,
	ip string,
) (*checkuprequest.CheckupRequest, error) {
	r, err := s.checkups.Create(ctx, cmd, actor, ip)
	if err != nil {
		if errors.Is(err, workflow.ErrPermissionDenied) {
			s.countDenied(workflow.KindCheckupRequest)
		}
		return nil, err
	}
	s.countCreated(workflow.KindCheckupRequest)
	return r, nil
}

func (s *WorkflowService) GetExamRequest(ctx context.Context, actor domain.Actor, id uuid.UUID) (*examrequest.ExamRequest, error) {
	return s.exams.Get(ctx, id, actor)
}

func (s *WorkflowService) GetCheckupRequest(ctx context.Context, actor domain.Actor, id uuid.UUID) (*checkuprequest.CheckupRequest, error) {
	return s.checkups.Get(ctx, id, actor)
}

func (s *WorkflowService) ListExamRequests(
	ctx context.Context,
	actor domain.Actor,
	q *examrequest.ListExamRequestsQuery,
) (*examrequest.PagedExamRequests, error) {
	return s.exams.List(ctx, q, actor)
}

func (s *WorkflowService) ListCheckupRequests(
	ctx context.Context,
	actor domain.Actor,
	q *checkuprequest.ListCheckupRequestsQuery,
) (*checkuprequest.PagedCheckupRequests, error) {
	return s.checkups.List(ctx, q, actor)
}

func (s *WorkflowService) DeleteExamRequest(ctx context.Context, actor domain.Actor, id uuid.UUID, ip string) error {
	return s.exams.Delete(ctx, id, actor, ip)
}

func (s *WorkflowService) DeleteCheckupRequest(ctx context.Context, actor domain.Actor, id uuid.UUID, ip string) error {
	return s.checkups.Delete(ctx, id, actor, ip)
}

func (s *WorkflowService) countCreated(kind workflow.EntityKind) {
	if s.metrics != nil {
		s.metrics.RequestsCreatedTotal.WithLabelValues(string(kind)).Inc()
	}
}

func (s *WorkflowService) countTransition(kind workflow.EntityKind, toState string) {
	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(kind), toState).Inc()
	}
}

func (s *WorkflowService) countDenied(kind workflow.EntityKind) {
	if s.metrics != nil {
		s.metrics.PermissionDeniedTotal.WithLabelValues(string(kind)).Inc()
	}
}
