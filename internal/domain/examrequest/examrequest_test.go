package examrequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetConduct(t *testing.T) {
	r := &ExamRequest{Status: StatusEncaminhado}

	err := r.SetConduct(ConductCirurgica, "")
	assert.ErrorIs(t, err, ErrConductNotAllowed)
	assert.Nil(t, r.Conduct)

	r.Status = StatusExecutado
	err = r.SetConduct(Conduct("internacao"), "")
	assert.ErrorIs(t, err, ErrInvalidConduct)

	require.NoError(t, r.SetConduct(ConductAmbulatorial, "retorno em 30 dias"))
	assert.Equal(t, ConductAmbulatorial, *r.Conduct)
	assert.Equal(t, "retorno em 30 dias", r.ConductObservations)

	// Conduct is editable while executado.
	require.NoError(t, r.SetConduct(ConductCirurgica, ""))
	assert.Equal(t, ConductCirurgica, *r.Conduct)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, PaymentParticular.IsValid())
	assert.True(t, PaymentConvenio.IsValid())
	assert.False(t, PaymentType("cortesia").IsValid())

	assert.True(t, StatusEncaminhado.IsValid())
	assert.True(t, StatusExecutado.IsValid())
	assert.False(t, Status("cancelado").IsValid())

	assert.True(t, ConductCirurgica.IsValid())
	assert.True(t, ConductAmbulatorial.IsValid())
	assert.False(t, Conduct("").IsValid())
}
