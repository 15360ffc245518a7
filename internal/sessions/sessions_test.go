package sessions

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/relaygames"
)

func TestSpadesSessionBidOutOfOrderIsRejected(t *testing.T) {
	s := newSpadesSession()
	s.OnGameStart([]uint32{1, 2, 3, 4})

	firstBidder := s.biddingOrder[0]
	wrongSeat := (firstBidder + 1) % 4

	events := s.ProcessEvent(wrongSeat, "Bid", "<Bid>3</Bid>")
	assert.Nil(t, events)
	assert.Equal(t, 0, s.bidIdx)
}

func TestSpadesSessionBidAdvancesOrderAndOpensPlay(t *testing.T) {
	s := newSpadesSession()
	s.OnGameStart([]uint32{1, 2, 3, 4})

	for i := 0; i < 4; i++ {
		seat := s.biddingOrder[s.bidIdx]
		events := s.ProcessEvent(seat, "Bid", fmt.Sprintf("<Bid>%d</Bid>", i))
		require.NotNil(t, events)
	}

	assert.Equal(t, spadesPhasePlaying, s.phase)
	assert.Equal(t, s.biddingOrder[0], s.turn)
}

func TestSpadesSessionOnReplacePlayerAutobidsCurrentSeat(t *testing.T) {
	s := newSpadesSession()
	s.OnGameStart([]uint32{1, 2, 3, 4})

	replaced := (s.biddingOrder[0] + 1) % 4
	assert.Nil(t, s.OnReplacePlayer(replaced), "not this seat's turn to bid yet")

	events := s.OnReplacePlayer(s.biddingOrder[0])
	require.NotEmpty(t, events)
	assert.Equal(t, 1, s.bidIdx)
}

func TestSpadesSessionProcessCardRejectsOutOfTurn(t *testing.T) {
	s := newSpadesSession()
	s.OnGameStart([]uint32{1, 2, 3, 4})
	for i := 0; i < 4; i++ {
		seat := s.biddingOrder[s.bidIdx]
		s.ProcessEvent(seat, "Bid", fmt.Sprintf("<Bid>%d</Bid>", i))
	}

	wrongSeat := (s.turn + 1) % 4
	card := s.engine.Hands[wrongSeat][0]
	events := s.ProcessEvent(wrongSeat, "PlayCard", fmt.Sprintf("<PlayCard>%d</PlayCard>", int(card)))
	assert.Nil(t, events)
}

func TestHeartsSessionOnReplacePlayerAutopasses(t *testing.T) {
	s := newHeartsSession()
	s.OnGameStart([]uint32{1, 2, 3, 4})

	assert.False(t, s.engine.AllPassed[0])
	events := s.OnReplacePlayer(0)
	require.NotEmpty(t, events)
	assert.True(t, s.engine.AllPassed[0])
}

func TestHeartsSessionPassingAllFourOpensPlay(t *testing.T) {
	s := newHeartsSession()
	s.OnGameStart([]uint32{1, 2, 3, 4})

	for seat := 0; seat < 4; seat++ {
		events := s.OnReplacePlayer(seat)
		require.NotEmpty(t, events)
	}

	assert.Equal(t, heartsPhasePlaying, s.phase)
}

func TestRelaySessionOnGameStartChecksInAllSeats(t *testing.T) {
	s := newRelaySession(constants.GameBackgammon)
	s.OnGameStart([]uint32{1, 2})
	assert.Equal(t, relaygames.PhaseInitialState, s.relay.Phase)
}

func TestRelaySessionInitialSettingsHostOnlyCompletesInitialState(t *testing.T) {
	s := newRelaySession(constants.GameBackgammon)
	s.OnGameStart([]uint32{1, 2})

	assert.Nil(t, s.ProcessEvent(1, "InitialSettings", "<InitialSettings/>"), "non-host seat must be rejected")
	events := s.ProcessEvent(0, "InitialSettings", "<InitialSettings/>")
	require.NotNil(t, events)
}

func TestRelaySessionDiceRollOnlyForBackgammon(t *testing.T) {
	bg := newRelaySession(constants.GameBackgammon)
	events := bg.ProcessEvent(0, "DiceRollRequest", "<DiceRollRequest/>")
	require.Len(t, events, 1)
	assert.Contains(t, events[0].XML, "DiceRollResponse")

	checkers := newRelaySession(constants.GameCheckers)
	assert.Nil(t, checkers.ProcessEvent(0, "DiceRollRequest", "<DiceRollRequest/>"))
}

func TestRelaySessionMoveRejectedBeforePlayPhase(t *testing.T) {
	s := newRelaySession(constants.GameReversi)
	s.OnGameStart([]uint32{1, 2})
	assert.Nil(t, s.ProcessEvent(0, "Move", "<Move>7</Move>"), "still in initial-state phase")
}
