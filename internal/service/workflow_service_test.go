package service

import (
	"context"
	"testing"

	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/clinsys/examflow/internal/domain/examrequest"
	"github.com/clinsys/examflow/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflowTransitionDispatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	exam, err := env.workflowSvc.CreateExamRequest(ctx, env.parceiro(), env.newExamCommand(), "10.0.0.1")
	require.NoError(t, err)

	updated, err := env.workflowSvc.Transition(ctx, env.recepcao(), workflow.KindExamRequest,
		exam.ID, "executado", TransitionPayload{}, "10.0.0.2")
	require.NoError(t, err)
	examUpdated, ok := updated.(*examrequest.ExamRequest)
	require.True(t, ok)
	assert.Equal(t, examrequest.StatusExecutado, examUpdated.Status)

	checkup, err := env.workflowSvc.CreateCheckupRequest(ctx, env.checkup(), env.newCheckupCommand(), "10.0.0.5")
	require.NoError(t, err)

	updated, err = env.workflowSvc.Transition(ctx, env.checkup(), workflow.KindCheckupRequest,
		checkup.ID, "encaminhado", TransitionPayload{UnitID: &env.unitID}, "10.0.0.5")
	require.NoError(t, err)
	checkupUpdated, ok := updated.(*checkuprequest.CheckupRequest)
	require.True(t, ok)
	assert.Equal(t, checkuprequest.StatusEncaminhado, checkupUpdated.Status)
}

func TestWorkflowTransitionConductParsing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	exam, err := env.workflowSvc.CreateExamRequest(ctx, env.parceiro(), env.newExamCommand(), "10.0.0.1")
	require.NoError(t, err)
	_, err = env.workflowSvc.Transition(ctx, env.recepcao(), workflow.KindExamRequest,
		exam.ID, "executado", TransitionPayload{}, "10.0.0.2")
	require.NoError(t, err)

	bad := "internacao"
	_, err = env.workflowSvc.Transition(ctx, env.recepcao(), workflow.KindExamRequest,
		exam.ID, "executado", TransitionPayload{Conduct: &bad}, "10.0.0.2")
	assert.ErrorIs(t, err, examrequest.ErrInvalidConduct)

	good := "ambulatorial"
	updated, err := env.workflowSvc.Transition(ctx, env.recepcao(), workflow.KindExamRequest,
		exam.ID, "executado", TransitionPayload{Conduct: &good, ConductObservations: "retorno em 30 dias"}, "10.0.0.2")
	require.NoError(t, err)
	examUpdated := updated.(*examrequest.ExamRequest)
	require.NotNil(t, examUpdated.Conduct)
	assert.Equal(t, examrequest.ConductAmbulatorial, *examUpdated.Conduct)
}

func TestWorkflowTransitionUnknownKind(t *testing.T) {
	env := newTestEnv()

	_, err := env.workflowSvc.Transition(context.Background(), env.admin(), workflow.EntityKind("prescription"),
		env.batteryID, "executado", TransitionPayload{}, "10.0.0.9")
	assert.ErrorIs(t, err, workflow.ErrUnknownEntityKind)
}
