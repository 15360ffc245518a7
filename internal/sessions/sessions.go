// Package sessions adapts the per-game engines (internal/spades,
// internal/hearts, internal/relaygames) to the match.Session interface,
// standing in for the original's per-game Match subclasses
// (Win7/Match.hpp, WinXP/*Match.hpp). internal/lobby.SessionFactory is
// the injection point cmd/boardserver wires these through.
package sessions

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/boardlink/internal/cards"
	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/hearts"
	"github.com/udisondev/boardlink/internal/match"
	"github.com/udisondev/boardlink/internal/relaygames"
	"github.com/udisondev/boardlink/internal/spades"
)

// NewFactory returns the lobby.SessionFactory cmd/boardserver passes to
// lobby.New, dispatching on the declared game.
func NewFactory() func(game constants.Game) match.Session {
	return func(game constants.Game) match.Session {
		switch game {
		case constants.GameSpades:
			return newSpadesSession()
		case constants.GameHearts:
			return newHeartsSession()
		default:
			return newRelaySession(game)
		}
	}
}

// relayEvent is the fallback used for events no engine here interprets:
// broadcast the client's payload verbatim to every other seat.
func relayEvent(eventXML string) []match.QueuedEvent {
	return []match.QueuedEvent{{XML: eventXML, IncludeSender: false}}
}

// parseIntPayload extracts an integer from an EventSend fragment's
// character data, regardless of its root tag name (e.g. "<Bid>5</Bid>" or
// "<PlayCard>23</PlayCard>").
func parseIntPayload(eventXML string) (int, error) {
	var v struct {
		XMLName xml.Name
		Value   string `xml:",chardata"`
	}
	if err := xml.Unmarshal([]byte(eventXML), &v); err != nil {
		return 0, fmt.Errorf("parsing int payload: %w", err)
	}
	return strconv.Atoi(strings.TrimSpace(v.Value))
}

// parsePassPayload extracts the three card indices from a Pass event, e.g.
// "<Pass><Card>1</Card><Card>2</Card><Card>3</Card></Pass>".
func parsePassPayload(eventXML string) ([hearts.CardsPerPass]cards.Card, error) {
	var out [hearts.CardsPerPass]cards.Card
	var v struct {
		XMLName xml.Name
		Cards   []string `xml:"Card"`
	}
	if err := xml.Unmarshal([]byte(eventXML), &v); err != nil {
		return out, fmt.Errorf("parsing pass payload: %w", err)
	}
	if len(v.Cards) != hearts.CardsPerPass {
		return out, fmt.Errorf("pass payload: expected %d cards, got %d", hearts.CardsPerPass, len(v.Cards))
	}
	for i, c := range v.Cards {
		n, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return out, fmt.Errorf("parsing pass card %d: %w", i, err)
		}
		out[i] = cards.Card(n)
	}
	return out, nil
}

// doubleCubePayload carries a Backgammon DoubleCube transaction's fields.
type doubleCubePayload struct {
	XMLName       xml.Name
	OpponentSeat  int `xml:"OpponentSeat"`
	PreviousValue int `xml:"PreviousValue"`
	NewValue      int `xml:"NewValue"`
}

// spadesPhase tracks which part of a hand a spadesSession is in.
type spadesPhase int

const (
	spadesPhaseBidding spadesPhase = iota
	spadesPhasePlaying
	spadesPhaseDone
)

// spadesSession drives internal/spades.Engine through a full hand: dealing
// and dealer rotation, bid-order sequencing, trick play with follow-suit
// enforcement, and team score/bag accrual across hands, per spec.md
// §4.3.1 and the suit-following/scoring properties in §8.
type spadesSession struct {
	engine       *spades.Engine
	phase        spadesPhase
	biddingOrder [spades.NumPlayers]int
	bidIdx       int
	turn         int
	teamScores   [2]int
	teamBags     [2]int
	dealer       int
}

func newSpadesSession() *spadesSession {
	return &spadesSession{dealer: -1}
}

func (s *spadesSession) RequiredPlayers() int          { return constants.GameSpades.RequiredPlayers() }
func (s *spadesSession) SupportsComputerPlayers() bool { return constants.GameSpades.SupportsComputerPlayers() }
func (s *spadesSession) CustomChatRange() (int, int)   { return 1, 99 }

func (s *spadesSession) OnGameStart(seatPeerIDs []uint32) {
	s.dealer = len(seatPeerIDs) - 1
	s.dealHand()
}

func (s *spadesSession) dealHand() {
	s.engine = spades.NewHand(s.dealer)
	s.dealer = s.engine.Dealer
	s.biddingOrder = s.engine.BiddingOrder()
	s.bidIdx = 0
	s.phase = spadesPhaseBidding
}

func (s *spadesSession) ProcessEvent(senderSeat int, eventName, eventXML string) []match.QueuedEvent {
	switch eventName {
	case "Bid":
		value, err := parseIntPayload(eventXML)
		if err != nil {
			return nil
		}
		return s.processBid(senderSeat, value, eventXML)
	case "PlayCard":
		value, err := parseIntPayload(eventXML)
		if err != nil {
			return nil
		}
		return s.processCard(senderSeat, cards.Card(value), eventXML)
	default:
		return relayEvent(eventXML)
	}
}

// processBid validates and records senderSeat's bid, relaying the client's
// own event text and advancing bid order; once the dealer has bid, play
// opens with the seat left of the dealer.
func (s *spadesSession) processBid(senderSeat, value int, relayXML string) []match.QueuedEvent {
	if s.phase != spadesPhaseBidding || s.biddingOrder[s.bidIdx] != senderSeat {
		return nil
	}
	s.engine.Bids[senderSeat] = spades.SeatBid{State: spades.Bid, Value: value}
	s.bidIdx++

	events := []match.QueuedEvent{{XML: relayXML, IncludeSender: false}}
	if s.bidIdx == spades.NumPlayers {
		s.phase = spadesPhasePlaying
		s.turn = s.biddingOrder[0]
	}
	return events
}

// processCard validates senderSeat's play against the live trick and hand,
// advances the engine, and emits trick/hand-end results when they occur.
func (s *spadesSession) processCard(senderSeat int, card cards.Card, relayXML string) []match.QueuedEvent {
	if s.phase != spadesPhasePlaying || senderSeat != s.turn {
		return nil
	}
	hand := s.engine.Hands[senderSeat]
	if !cards.Contains(hand, card) {
		return nil
	}
	if s.engine.Trick.IsEmpty() {
		if card.Suit() == cards.Spades && !spades.CanLeadSpades(hand, s.engine.SpadesBroken) {
			return nil
		}
	} else if !s.engine.Trick.FollowsSuit(card, hand) {
		return nil
	}

	winner, finished := s.engine.PlayCard(senderSeat, card)
	events := []match.QueuedEvent{{XML: relayXML, IncludeSender: false}}

	if !finished {
		s.turn = (s.turn + 1) % spades.NumPlayers
		return events
	}

	s.turn = winner
	events = append(events, match.QueuedEvent{
		XML:           fmt.Sprintf("TrickResult{winner=%d}", winner),
		IncludeSender: true,
	})

	if len(s.engine.Hands[winner]) > 0 {
		return events
	}

	return append(events, s.finishHand()...)
}

// finishHand scores the completed hand, checks for game termination, and
// deals the next hand if play continues.
func (s *spadesSession) finishHand() []match.QueuedEvent {
	var bids [spades.NumPlayers]int
	for seat, b := range s.engine.Bids {
		bids[seat] = b.Value
	}
	scores := spades.CalculateTrickScore(bids, s.engine.TricksTaken, s.teamBags, false)
	for team, ts := range scores {
		s.teamScores[team] += ts.Points
		s.teamBags[team] = ts.Bags
	}

	events := []match.QueuedEvent{{
		XML: fmt.Sprintf("HandScore{team0=%d,team1=%d,bags0=%d,bags1=%d}",
			s.teamScores[0], s.teamScores[1], s.teamBags[0], s.teamBags[1]),
		IncludeSender: true,
	}}

	if spades.GameOver(s.teamScores) {
		s.phase = spadesPhaseDone
		return append(events, match.QueuedEvent{
			XML:           fmt.Sprintf("GameOver{team0=%d,team1=%d}", s.teamScores[0], s.teamScores[1]),
			IncludeSender: true,
		})
	}

	s.dealHand()
	return events
}

// OnReplacePlayer takes seat's next autoplay action (bid or card) via the
// heuristics in internal/spades, since a computer stand-in otherwise never
// hears from a real client (spec.md §4.3, §8.5).
func (s *spadesSession) OnReplacePlayer(seat int) []match.QueuedEvent {
	switch s.phase {
	case spadesPhaseBidding:
		if s.biddingOrder[s.bidIdx] != seat {
			return nil
		}
		bid := spades.AutoBid(s.engine.Hands[seat])
		return s.processBid(seat, bid, fmt.Sprintf("Bid{seat=%d,value=%d}", seat, bid))
	case spadesPhasePlaying:
		if s.turn != seat {
			return nil
		}
		hand := s.engine.Hands[seat]
		card := s.engine.Trick.AutoCard(hand, s.engine.Bids[seat].Value, spades.DoubleNilBid, s.engine.SpadesBroken)
		return s.processCard(seat, card, fmt.Sprintf("PlayCard{seat=%d,card=%d}", seat, int(card)))
	default:
		return nil
	}
}

// heartsPhase tracks which part of a hand a heartsSession is in.
type heartsPhase int

const (
	heartsPhasePassing heartsPhase = iota
	heartsPhasePlaying
	heartsPhaseDone
)

// heartsSession mirrors spadesSession for Hearts (spec.md §4.3.2): dealing
// and pass-direction rotation run server-side, and trick play, passing,
// and shoot-the-moon scoring are all engine-driven.
type heartsSession struct {
	engine    *hearts.Engine
	direction hearts.PassDirection
	phase     heartsPhase
	turn      int
	scores    [hearts.NumPlayers]int
}

func newHeartsSession() *heartsSession {
	return &heartsSession{}
}

func (s *heartsSession) RequiredPlayers() int          { return constants.GameHearts.RequiredPlayers() }
func (s *heartsSession) SupportsComputerPlayers() bool { return constants.GameHearts.SupportsComputerPlayers() }
func (s *heartsSession) CustomChatRange() (int, int)   { return 1, 99 }

func (s *heartsSession) OnGameStart(seatPeerIDs []uint32) {
	s.dealHand()
}

func (s *heartsSession) dealHand() {
	s.engine = hearts.NewHand(s.direction)
	s.direction = s.engine.PassDirection
	s.phase = heartsPhasePassing
}

func (s *heartsSession) ProcessEvent(senderSeat int, eventName, eventXML string) []match.QueuedEvent {
	switch eventName {
	case "Pass":
		passCards, err := parsePassPayload(eventXML)
		if err != nil {
			return nil
		}
		return s.processPass(senderSeat, passCards, eventXML)
	case "PlayCard":
		value, err := parseIntPayload(eventXML)
		if err != nil {
			return nil
		}
		return s.processCard(senderSeat, cards.Card(value), eventXML)
	default:
		return relayEvent(eventXML)
	}
}

func (s *heartsSession) processPass(senderSeat int, passCards [hearts.CardsPerPass]cards.Card, relayXML string) []match.QueuedEvent {
	if s.phase != heartsPhasePassing || s.engine.AllPassed[senderSeat] {
		return nil
	}
	for _, c := range passCards {
		if !cards.Contains(s.engine.Hands[senderSeat], c) {
			return nil
		}
	}
	s.engine.ProcessPass(senderSeat, passCards)

	events := []match.QueuedEvent{{XML: relayXML, IncludeSender: false}}
	if s.engine.AllPlayersPassed() {
		s.turn = s.engine.ApplyPasses()
		s.phase = heartsPhasePlaying
		events = append(events, match.QueuedEvent{
			XML:           fmt.Sprintf("OpeningLead{seat=%d}", s.turn),
			IncludeSender: true,
		})
	}
	return events
}

func (s *heartsSession) processCard(senderSeat int, card cards.Card, relayXML string) []match.QueuedEvent {
	if s.phase != heartsPhasePlaying || senderSeat != s.turn {
		return nil
	}
	hand := s.engine.Hands[senderSeat]
	if !cards.Contains(hand, card) {
		return nil
	}
	if !s.engine.Trick.IsEmpty() && !s.engine.Trick.FollowsSuit(card, hand) {
		return nil
	}

	winner, finished := s.engine.PlayCard(senderSeat, card)
	s.turn = s.engine.Turn
	events := []match.QueuedEvent{{XML: relayXML, IncludeSender: false}}

	if !finished {
		return events
	}
	events = append(events, match.QueuedEvent{
		XML:           fmt.Sprintf("TrickResult{winner=%d}", winner),
		IncludeSender: true,
	})

	if !s.engine.HandDone() {
		return events
	}
	return append(events, s.finishHand()...)
}

func (s *heartsSession) finishHand() []match.QueuedEvent {
	handPoints := hearts.ApplyShootTheMoon(s.engine.HandPoints)
	for seat, p := range handPoints {
		s.scores[seat] += p
	}

	events := []match.QueuedEvent{{
		XML: fmt.Sprintf("HandScore{0=%d,1=%d,2=%d,3=%d}",
			s.scores[0], s.scores[1], s.scores[2], s.scores[3]),
		IncludeSender: true,
	}}

	gameOver := false
	for _, p := range s.scores {
		if p >= hearts.PointsInGame {
			gameOver = true
			break
		}
	}
	if gameOver {
		s.phase = heartsPhaseDone
		return append(events, match.QueuedEvent{
			XML:           fmt.Sprintf("GameOver{0=%d,1=%d,2=%d,3=%d}", s.scores[0], s.scores[1], s.scores[2], s.scores[3]),
			IncludeSender: true,
		})
	}

	s.dealHand()
	return events
}

// OnReplacePlayer takes seat's next autoplay action (pass or card) via the
// heuristics in internal/hearts.
func (s *heartsSession) OnReplacePlayer(seat int) []match.QueuedEvent {
	switch s.phase {
	case heartsPhasePassing:
		if s.engine.AllPassed[seat] {
			return nil
		}
		passCards := hearts.AutoPass(s.engine.Hands[seat])
		return s.processPass(seat, passCards, fmt.Sprintf("Pass{seat=%d,cards=%d,%d,%d}",
			seat, int(passCards[0]), int(passCards[1]), int(passCards[2])))
	case heartsPhasePlaying:
		if s.turn != seat {
			return nil
		}
		card := s.engine.Trick.AutoCard(s.engine.Hands[seat], s.engine.HeartsBroken)
		return s.processCard(seat, card, fmt.Sprintf("PlayCard{seat=%d,card=%d}", seat, int(card)))
	default:
		return nil
	}
}

// relaySession wraps internal/relaygames.Relay for Backgammon, Checkers,
// and Reversi: the server enforces check-in sequencing, host-transaction
// ownership, and turn order, but trusts the host seat's board state and
// relays it without replaying game semantics (spec.md §4.3.3).
type relaySession struct {
	game      constants.Game
	relay     *relaygames.Relay
	checkedIn map[int]bool
}

func newRelaySession(game constants.Game) *relaySession {
	return &relaySession{
		game:      game,
		relay:     relaygames.NewRelay(game.RequiredPlayers()),
		checkedIn: make(map[int]bool, game.RequiredPlayers()),
	}
}

func (s *relaySession) RequiredPlayers() int          { return s.game.RequiredPlayers() }
func (s *relaySession) SupportsComputerPlayers() bool { return s.game.SupportsComputerPlayers() }
func (s *relaySession) CustomChatRange() (int, int)   { return 1, 99 }

// OnGameStart treats every seated peer as implicitly checked-in: the match
// only starts once all seats are filled, so there is no further
// ready-handshake event to wait on before advancing past PhaseCheckIn.
func (s *relaySession) OnGameStart(seatPeerIDs []uint32) {
	for seat := range seatPeerIDs {
		s.relay.CheckIn(s.checkedIn, seat)
	}
}

var diceRollRequestTag = strconv.Itoa(int(constants.DiceRollRequest))

func (s *relaySession) ProcessEvent(senderSeat int, eventName, eventXML string) []match.QueuedEvent {
	switch eventName {
	case "InitialSettings":
		if err := relaygames.ValidateInitialSettings(senderSeat); err != nil {
			return nil
		}
		if err := s.relay.CompleteInitialState(); err != nil {
			return nil
		}
		return relayEvent(eventXML)

	case "DoubleCube":
		var payload doubleCubePayload
		if err := xml.Unmarshal([]byte(eventXML), &payload); err != nil {
			return nil
		}
		if err := relaygames.ValidateDoubleCube(senderSeat, payload.OpponentSeat, payload.PreviousValue, payload.NewValue); err != nil {
			return nil
		}
		return relayEvent(eventXML)

	case "DiceRollRequest", diceRollRequestTag:
		if s.game != constants.GameBackgammon {
			return nil
		}
		d1, d2 := relaygames.RollDice()
		return []match.QueuedEvent{{
			XML:           fmt.Sprintf("DiceRollResponse{seat=%d,dice1=%d,dice2=%d}", senderSeat, d1, d2),
			IncludeSender: true,
		}}

	default:
		if err := s.relay.ValidateMove(senderSeat); err != nil {
			return nil
		}
		s.relay.AdvanceTurn()
		return relayEvent(eventXML)
	}
}

// OnReplacePlayer is a no-op: none of these three games support computer
// stand-ins (SupportsComputerPlayers is false), so match.Match never calls
// this in practice.
func (s *relaySession) OnReplacePlayer(seat int) []match.QueuedEvent { return nil }
