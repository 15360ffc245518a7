// Package relaygames implements the thin C6 variants for Backgammon,
// Checkers, and Reversi (spec.md §4.3.3): the server validates sequencing
// and seat ownership but trusts the host seat's authoritative transactions
// and relays them without replaying board semantics. Grounded on
// original_source/InternetGamesServer/WinXP/{Backgammon,Checkers,Reversi}Match.cpp.
package relaygames

import (
	"fmt"
	"math/rand/v2"

	"github.com/udisondev/boardlink/internal/errkind"
)

// Phase is the shared check-in → initial-state → play → end sequence
// these three games share.
type Phase int

const (
	PhaseCheckIn Phase = iota
	PhaseInitialState
	PhasePlay
	PhaseEnd
)

// TransactionKind enumerates Backgammon's StateTransaction kinds — the one
// structural shape this package validates beyond plain sequencing.
type TransactionKind int

const (
	TransactionInitialSettings TransactionKind = iota
	TransactionDice
	TransactionDoubleCube
	TransactionSettings
	TransactionReadyForNewMatch
)

// HostSeat is the seat whose transactions are authoritative for board
// state (seat 0, per the original's host-only InitialSettings check).
const HostSeat = 0

// Relay tracks the minimal state needed to validate sequencing and
// ownership for one match: current phase and whose turn it is.
type Relay struct {
	Phase       Phase
	CurrentSeat int
	NumSeats    int
}

// NewRelay starts a relay in the check-in phase.
func NewRelay(numSeats int) *Relay {
	return &Relay{Phase: PhaseCheckIn, NumSeats: numSeats}
}

// ValidateMove checks that seat may act in the relay's current phase: only
// the seat whose turn it is may submit a play-phase transaction.
func (r *Relay) ValidateMove(seat int) error {
	if r.Phase != PhasePlay {
		return fmt.Errorf("%w: move submitted outside play phase (phase=%d)", errkind.ProtocolError, r.Phase)
	}
	if seat != r.CurrentSeat {
		return fmt.Errorf("%w: seat %d acted out of turn (expected %d)", errkind.ProtocolError, seat, r.CurrentSeat)
	}
	return nil
}

// AdvanceTurn moves CurrentSeat to the next seat, wrapping around.
func (r *Relay) AdvanceTurn() {
	r.CurrentSeat = (r.CurrentSeat + 1) % r.NumSeats
}

// ValidateInitialSettings enforces the original's host-only rule: only
// seat 0 may submit the TransactionInitialSettings bundle.
func ValidateInitialSettings(seat int) error {
	if seat != HostSeat {
		return fmt.Errorf("%w: only the host seat may send initial settings, got seat %d", errkind.ProtocolError, seat)
	}
	return nil
}

// ValidateDoubleCube enforces Backgammon's double-cube ownership/value
// rule: the cube's new owner must be the opponent of the seat doubling,
// and its value must have exactly doubled (capped at 64, per the source).
func ValidateDoubleCube(doublingSeat, opponentSeat int, previousValue, newValue int) error {
	if newValue != previousValue*2 || newValue > 64 {
		return fmt.Errorf("%w: invalid double-cube value %d (was %d)", errkind.ProtocolError, newValue, previousValue)
	}
	if doublingSeat == opponentSeat {
		return fmt.Errorf("%w: double-cube owner must be the opponent seat", errkind.ProtocolError)
	}
	return nil
}

// CheckIn marks seat as ready; returns true once every seat has checked
// in and the relay may advance to PhaseInitialState.
func (r *Relay) CheckIn(checkedIn map[int]bool, seat int) bool {
	checkedIn[seat] = true
	if len(checkedIn) == r.NumSeats {
		r.Phase = PhaseInitialState
		return true
	}
	return false
}

// CompleteInitialState advances PhaseInitialState to PhasePlay once the
// host seat's InitialSettings transaction has validated. Play always opens
// with the host seat's turn.
func (r *Relay) CompleteInitialState() error {
	if r.Phase != PhaseInitialState {
		return fmt.Errorf("%w: initial state completed outside that phase (phase=%d)", errkind.ProtocolError, r.Phase)
	}
	r.Phase = PhasePlay
	r.CurrentSeat = HostSeat
	return nil
}

// RollDice produces two independent uniform 1..6 draws for Backgammon's
// server-side dice roll (spec.md §8 scenario 2), ported from
// BackgammonMatch.cpp's s_dieDistribution(g_rng).
func RollDice() (int, int) {
	return rand.IntN(6) + 1, rand.IntN(6) + 1
}
