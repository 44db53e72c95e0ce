package service

import (
	"context"
	"testing"
	"time"

	"github.com/clinsys/examflow/internal/domain/catalog"
	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/clinsys/examflow/internal/workflow"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) newCheckupCommand() *checkuprequest.CreateCheckupRequestCommand {
	return &checkuprequest.CreateCheckupRequestCommand{
		PatientName:      "Carlos Lima",
		PatientBirthDate: time.Date(1979, 11, 23, 0, 0, 0, 0, time.UTC),
		Company:          "Transportes Andrade Ltda",
		BatteryID:        env.batteryID,
	}
}

func TestCheckupRequestCreateSnapshotsBattery(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.checkup(), "10.0.0.5")
	require.NoError(t, err)

	assert.Equal(t, checkuprequest.StatusSolicitado, created.Status)
	assert.Equal(t, []string{"hemograma", "raio-x torax", "audiometria"}, created.ExamNames)
	assert.Equal(t, env.clk.Now(), created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Nil(t, created.UnitID)
	assert.Nil(t, created.ExecutadoAt)

	// Editing the battery afterwards must not reach the snapshot.
	env.catalogRepo.batteries[env.batteryID].ExamNames = []string{"hemograma"}
	stored, err := env.checkupRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"hemograma", "raio-x torax", "audiometria"}, stored.ExamNames)
}

func TestCheckupRequestCreateWithExplicitExamList(t *testing.T) {
	env := newTestEnv()

	cmd := env.newCheckupCommand()
	cmd.ExamNames = []string{"espirometria"}
	created, err := env.checkupSvc.Create(context.Background(), cmd, env.checkup(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, []string{"espirometria"}, created.ExamNames)
}

func TestCheckupRequestCreateRejectsEmptyExamList(t *testing.T) {
	env := newTestEnv()
	emptyBattery := uuid.New()
	env.catalogRepo.batteries[emptyBattery] = &catalog.Battery{ID: emptyBattery, Name: "vazia"}

	cmd := env.newCheckupCommand()
	cmd.BatteryID = emptyBattery
	_, err := env.checkupSvc.Create(context.Background(), cmd, env.checkup(), "10.0.0.5")
	assert.ErrorIs(t, err, checkuprequest.ErrEmptyExamList)
}

func TestCheckupRequestCreateValidations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cmd := env.newCheckupCommand()
	cmd.BatteryID = uuid.New()
	_, err := env.checkupSvc.Create(ctx, cmd, env.checkup(), "10.0.0.5")
	assert.ErrorIs(t, err, catalog.ErrBatteryNotFound)

	unknownDoctor := uuid.New()
	cmd = env.newCheckupCommand()
	cmd.DoctorID = &unknownDoctor
	_, err = env.checkupSvc.Create(ctx, cmd, env.checkup(), "10.0.0.5")
	assert.ErrorIs(t, err, catalog.ErrDoctorNotFound)
}

func TestCheckupRequestCreateRoleDenied(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.parceiro(), "10.0.0.1")
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)

	_, err = env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.recepcao(), "10.0.0.2")
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)

	_, err = env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.admin(), "10.0.0.9")
	assert.NoError(t, err)
}

func TestCheckupRequestForwardRequiresUnit(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.checkup(), "10.0.0.5")
	require.NoError(t, err)

	_, err = env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusEncaminhado, nil, env.checkup(), "10.0.0.5")
	assert.ErrorIs(t, err, checkuprequest.ErrUnitRequired)

	unknownUnit := uuid.New()
	_, err = env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusEncaminhado,
		&checkuprequest.TransitionCommand{UnitID: &unknownUnit}, env.checkup(), "10.0.0.5")
	assert.ErrorIs(t, err, catalog.ErrUnitNotFound)

	updated, err := env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusEncaminhado,
		&checkuprequest.TransitionCommand{UnitID: &env.unitID}, env.checkup(), "10.0.0.5")
	require.NoError(t, err)
	require.NotNil(t, updated.UnitID)
	assert.Equal(t, env.unitID, *updated.UnitID)
}

func TestCheckupRequestLifecycle(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.checkup(), "10.0.0.5")
	require.NoError(t, err)
	id := created.ID

	env.clk.Advance(time.Hour)
	forwarded, err := env.checkupSvc.Transition(ctx, id, checkuprequest.StatusEncaminhado,
		&checkuprequest.TransitionCommand{UnitID: &env.unitID}, env.checkup(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, checkuprequest.StatusEncaminhado, forwarded.Status)
	assert.Nil(t, forwarded.ExecutadoAt)
	assert.False(t, forwarded.Collected())

	env.clk.Advance(time.Hour)
	executedAt := env.clk.Now()
	executed, err := env.checkupSvc.Transition(ctx, id, checkuprequest.StatusExecutado, nil, env.recepcao(), "10.0.0.2")
	require.NoError(t, err)
	require.NotNil(t, executed.ExecutadoAt)
	assert.Equal(t, executedAt, *executed.ExecutadoAt)
	assert.Nil(t, executed.LaudosProntosAt)

	env.clk.Advance(time.Hour)
	readyAt := env.clk.Now()
	ready, err := env.checkupSvc.Transition(ctx, id, checkuprequest.StatusLaudosProntos, nil, env.recepcao(), "10.0.0.2")
	require.NoError(t, err)
	require.NotNil(t, ready.LaudosProntosAt)
	assert.Equal(t, readyAt, *ready.LaudosProntosAt)
	// The requesting team is notified the moment the reports become ready.
	require.NotNil(t, ready.NotificadoCheckupAt)
	assert.Equal(t, readyAt, *ready.NotificadoCheckupAt)
	assert.Nil(t, ready.LaudosBuscadosAt)

	env.clk.Advance(time.Hour)
	collectedAt := env.clk.Now()
	collected, err := env.checkupSvc.Transition(ctx, id, checkuprequest.StatusEncaminhado, nil, env.checkup(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, checkuprequest.StatusEncaminhado, collected.Status)
	require.NotNil(t, collected.LaudosBuscadosAt)
	assert.Equal(t, collectedAt, *collected.LaudosBuscadosAt)
	assert.True(t, collected.Collected())

	// Earlier stamps did not move.
	assert.Equal(t, executedAt, *collected.ExecutadoAt)
	assert.Equal(t, readyAt, *collected.LaudosProntosAt)
	assert.Equal(t, readyAt, *collected.NotificadoCheckupAt)
	assert.Equal(t, collectedAt, collected.UpdatedAt)
}

func TestCheckupRequestStampsSetOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.checkup(), "10.0.0.5")
	require.NoError(t, err)
	id := created.ID

	_, err = env.checkupSvc.Transition(ctx, id, checkuprequest.StatusEncaminhado,
		&checkuprequest.TransitionCommand{UnitID: &env.unitID}, env.checkup(), "10.0.0.5")
	require.NoError(t, err)
	env.clk.Advance(time.Hour)
	first, err := env.checkupSvc.Transition(ctx, id, checkuprequest.StatusExecutado, nil, env.recepcao(), "10.0.0.2")
	require.NoError(t, err)
	firstStamp := *first.ExecutadoAt

	// Drop the record back to encaminhado out of band and execute it again a
	// day later. The original stamp must survive.
	env.checkupRepo.setStatus(id, checkuprequest.StatusEncaminhado)
	env.clk.Advance(24 * time.Hour)
	second, err := env.checkupSvc.Transition(ctx, id, checkuprequest.StatusExecutado, nil, env.recepcao(), "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, firstStamp, *second.ExecutadoAt)
	assert.Equal(t, env.clk.Now(), second.UpdatedAt)
}

func TestCheckupRequestSkippingStepsDenied(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.checkup(), "10.0.0.5")
	require.NoError(t, err)

	// solicitado → executado is not a legal move, not even for admin.
	_, err = env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusExecutado, nil, env.admin(), "10.0.0.9")
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)

	_, err = env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusLaudosProntos, nil, env.admin(), "10.0.0.9")
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)

	// Forwarding belongs to the check-up team, not reception or partners.
	_, err = env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusEncaminhado,
		&checkuprequest.TransitionCommand{UnitID: &env.unitID}, env.recepcao(), "10.0.0.2")
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)
	_, err = env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusEncaminhado,
		&checkuprequest.TransitionCommand{UnitID: &env.unitID}, env.parceiro(), "10.0.0.1")
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)

	_, err = env.checkupSvc.Transition(ctx, created.ID, checkuprequest.Status("arquivado"), nil, env.admin(), "10.0.0.9")
	assert.ErrorIs(t, err, checkuprequest.ErrInvalidStatus)
}

func TestCheckupRequestObservationsMerge(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.checkup(), "10.0.0.5")
	require.NoError(t, err)

	obs := "paciente em jejum de 8h"
	updated, err := env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusEncaminhado,
		&checkuprequest.TransitionCommand{UnitID: &env.unitID, Observations: &obs}, env.checkup(), "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, obs, updated.Observations)

	// A transition without observations keeps the existing text.
	updated, err = env.checkupSvc.Transition(ctx, created.ID, checkuprequest.StatusExecutado, nil, env.recepcao(), "10.0.0.2")
	require.NoError(t, err)
	assert.Equal(t, obs, updated.Observations)
}

func TestCheckupRequestListNotPartnerScoped(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.checkup(), "10.0.0.5")
		require.NoError(t, err)
		env.clk.Advance(time.Minute)
	}

	// Unlike exam requests, every known role sees the full set.
	page, err := env.checkupSvc.List(ctx, &checkuprequest.ListCheckupRequestsQuery{}, env.parceiro())
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalCount)

	page, err = env.checkupSvc.List(ctx, &checkuprequest.ListCheckupRequestsQuery{}, env.recepcao())
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.TotalCount)

	unknown := env.recepcao()
	unknown.Role = "auditor"
	page, err = env.checkupSvc.List(ctx, &checkuprequest.ListCheckupRequestsQuery{}, unknown)
	require.NoError(t, err)
	assert.Empty(t, page.Requests)
}

func TestCheckupRequestDeleteAdminOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	created, err := env.checkupSvc.Create(ctx, env.newCheckupCommand(), env.checkup(), "10.0.0.5")
	require.NoError(t, err)

	err = env.checkupSvc.Delete(ctx, created.ID, env.checkup(), "10.0.0.5")
	assert.ErrorIs(t, err, workflow.ErrPermissionDenied)

	err = env.checkupSvc.Delete(ctx, created.ID, env.admin(), "10.0.0.9")
	require.NoError(t, err)

	_, err = env.checkupRepo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, checkuprequest.ErrNotFound)
}
