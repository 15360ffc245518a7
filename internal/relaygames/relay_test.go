package relaygames

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMoveRejectsOutsidePlayPhase(t *testing.T) {
	r := NewRelay(2)
	err := r.ValidateMove(0)
	assert.Error(t, err)
}

func TestValidateMoveRejectsWrongSeat(t *testing.T) {
	r := NewRelay(2)
	r.Phase = PhasePlay
	r.CurrentSeat = 0
	assert.Error(t, r.ValidateMove(1))
	assert.NoError(t, r.ValidateMove(0))
}

func TestAdvanceTurnWraps(t *testing.T) {
	r := NewRelay(2)
	r.CurrentSeat = 0
	r.AdvanceTurn()
	assert.Equal(t, 1, r.CurrentSeat)
	r.AdvanceTurn()
	assert.Equal(t, 0, r.CurrentSeat)
}

func TestValidateInitialSettingsHostOnly(t *testing.T) {
	assert.NoError(t, ValidateInitialSettings(HostSeat))
	assert.Error(t, ValidateInitialSettings(1))
}

func TestValidateDoubleCube(t *testing.T) {
	assert.NoError(t, ValidateDoubleCube(0, 1, 2, 4))
	assert.Error(t, ValidateDoubleCube(0, 1, 2, 5), "must exactly double")
	assert.Error(t, ValidateDoubleCube(0, 0, 2, 4), "owner must be the opponent")
	assert.Error(t, ValidateDoubleCube(0, 1, 64, 128), "capped at 64")
}

func TestCheckInAdvancesOnceAllSeatsReady(t *testing.T) {
	r := NewRelay(2)
	checkedIn := map[int]bool{}

	require.False(t, r.CheckIn(checkedIn, 0))
	assert.Equal(t, PhaseCheckIn, r.Phase)

	require.True(t, r.CheckIn(checkedIn, 1))
	assert.Equal(t, PhaseInitialState, r.Phase)
}

func TestCompleteInitialStateRejectsWrongPhase(t *testing.T) {
	r := NewRelay(2)
	assert.Error(t, r.CompleteInitialState())
}

func TestCompleteInitialStateAdvancesToPlay(t *testing.T) {
	r := NewRelay(2)
	r.Phase = PhaseInitialState
	require.NoError(t, r.CompleteInitialState())
	assert.Equal(t, PhasePlay, r.Phase)
	assert.Equal(t, HostSeat, r.CurrentSeat)
}

func TestRollDiceWithinRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		d1, d2 := RollDice()
		assert.GreaterOrEqual(t, d1, 1)
		assert.LessOrEqual(t, d1, 6)
		assert.GreaterOrEqual(t, d2, 1)
		assert.LessOrEqual(t, d2, 6)
	}
}
