// Package match implements the per-era, per-game match state machine
// (C6): seat roster, phase transitions, join/leave/substitution policy,
// and the Legacy event-relay / chat validation shared by every game.
// Grounded on internal/model/party.go's mutex-guarded roster shape from
// the teacher, generalized to the phase machine in
// original_source/InternetGamesServer/MatchManager.cpp and
// Win7/Match.hpp + WinXP/Match.hpp.
package match

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/errkind"
)

// Phase is the shared lifecycle every match passes through.
type Phase int

const (
	WaitingForPlayers Phase = iota
	Playing
	GameOver
	Ended
)

func (p Phase) String() string {
	switch p {
	case WaitingForPlayers:
		return "WaitingForPlayers"
	case Playing:
		return "Playing"
	case GameOver:
		return "GameOver"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// Peer is the minimal surface a Match needs from a seated connection.
// Concrete eras implement this in internal/conn; match never depends on
// conn directly, keeping the manager → match → connection-send lock
// nesting order from spec.md §5 intact (no back-reference into conn's
// internals here).
type Peer interface {
	ID() uint32
	Era() constants.Era
	Send(payload []byte) error
	OnGameStart(seats []uint32)
	OnReplaced(oldID, newID uint32)
	OnDisconnect()
}

// Session is the polymorphic capability set spec.md §9's "Design Notes"
// substitutes for the original's game-subclass inheritance: the lobby
// instantiates the variant chosen by the declared game token, and Match
// drives it without knowing which game it is.
type Session interface {
	RequiredPlayers() int
	SupportsComputerPlayers() bool
	OnGameStart(seatPeerIDs []uint32)
	// ProcessEvent handles a Legacy EventSend; Modern sessions may ignore it.
	ProcessEvent(senderSeat int, eventName, eventXML string) []QueuedEvent
	// OnReplacePlayer lets the engine take an autoplay action for a
	// newly-computer-controlled seat, e.g. when it becomes that seat's turn.
	// Any returned QueuedEvents are broadcast under the match lock, same as
	// ProcessEvent's.
	OnReplacePlayer(seat int) []QueuedEvent
	// CustomChatRange returns the game's nudge-message numeric ID range.
	CustomChatRange() (min, max int)
}

// QueuedEvent is one outbound consequence of processing a Legacy event,
// per spec.md §4.3.
type QueuedEvent struct {
	XML           string
	XMLSenderOnly string
	IncludeSender bool
}

// Seat is one roster slot.
type Seat struct {
	Peer       Peer
	IsComputer bool
}

// Match owns players-by-seat, phase, and the game session. All mutation
// goes through its mutex; the lobby manager locks a match only while
// holding its own lock, never the reverse (spec.md §5).
type Match struct {
	mu sync.Mutex

	Index     int64
	GUID      string
	Era       constants.Era
	Game      constants.Game
	Skill     constants.SkillLevel
	CreatedAt time.Time

	phase      Phase
	seats      []*Seat
	gameOverAt *time.Time

	session           Session
	allowSinglePlayer bool
	skipLevelMatching bool
}

// New creates a match in WaitingForPlayers, with an empty roster sized
// for the session's required player count.
func New(index int64, guid string, era constants.Era, game constants.Game, skill constants.SkillLevel, session Session, allowSinglePlayer bool) *Match {
	return &Match{
		Index:             index,
		GUID:              guid,
		Era:               era,
		Game:              game,
		Skill:             skill,
		CreatedAt:         time.Now(),
		phase:             WaitingForPlayers,
		seats:             make([]*Seat, 0, session.RequiredPlayers()),
		session:           session,
		allowSinglePlayer: allowSinglePlayer,
	}
}

func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// SeatCount returns the number of currently-filled seats (human or
// computer).
func (m *Match) SeatCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seats)
}

// JoinPlayer adds peer to the roster if the match is WaitingForPlayers and
// not yet full; it is a no-op otherwise (spec.md §4.3 "JoinPlayer is a
// no-op outside WaitingForPlayers").
func (m *Match) JoinPlayer(peer Peer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != WaitingForPlayers {
		return nil
	}
	if len(m.seats) >= m.session.RequiredPlayers() {
		return nil
	}

	m.seats = append(m.seats, &Seat{Peer: peer})

	if m.Era == constants.EraModern {
		m.broadcastLocked(nil, serverStatusPayload(len(m.seats)))
	}

	if len(m.seats) == m.session.RequiredPlayers() {
		m.startLocked()
	}
	return nil
}

func (m *Match) startLocked() {
	order := rand.Perm(len(m.seats))
	peerIDs := make([]uint32, len(m.seats))
	for logical, seat := range m.seats {
		physicalSeat := order[logical]
		peerIDs[physicalSeat] = seat.Peer.ID()
	}
	// Reorder seats themselves to match the assigned permutation so
	// m.seats[i] is always the peer occupying seat i.
	reordered := make([]*Seat, len(m.seats))
	for logical, seat := range m.seats {
		reordered[order[logical]] = seat
	}
	m.seats = reordered

	for _, seat := range m.seats {
		seat.Peer.OnGameStart(peerIDs)
	}
	m.session.OnGameStart(peerIDs)
	m.phase = Playing
}

// seatOf returns the seat index holding peer, or -1.
func (m *Match) seatOf(peer Peer) int {
	for i, seat := range m.seats {
		if seat != nil && seat.Peer != nil && seat.Peer.ID() == peer.ID() {
			return i
		}
	}
	return -1
}

// DisconnectedPlayer applies the departure policy from spec.md §4.3.
func (m *Match) DisconnectedPlayer(peer Peer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.seatOf(peer)
	if idx < 0 {
		return
	}

	if m.phase == WaitingForPlayers {
		m.seats = append(m.seats[:idx], m.seats[idx+1:]...)
		if len(m.seats) == 0 {
			m.phase = Ended
			return
		}
		m.broadcastLocked(nil, serverStatusPayload(len(m.seats)))
		return
	}

	if len(m.seats) == 0 {
		m.phase = Ended
		return
	}

	humansRemaining := m.countHumansLocked() - 1 // peer is about to leave
	if m.session.SupportsComputerPlayers() && (m.allowSinglePlayer || humansRemaining >= 2) {
		newID := rand.Uint32()
		m.seats[idx] = &Seat{Peer: newComputerPeer(newID), IsComputer: true}
		m.broadcastLocked(peer, playerReplacedPayload(peer.ID(), newID))
		for _, qe := range m.session.OnReplacePlayer(idx) {
			m.broadcastLocked(nil, []byte(qe.XML))
		}
		return
	}

	m.seats = append(m.seats[:idx], m.seats[idx+1:]...)
	m.broadcastLocked(peer, disconnectPayload(peer.ID()))
	m.phase = Ended
}

func (m *Match) countHumansLocked() int {
	n := 0
	for _, s := range m.seats {
		if s != nil && !s.IsComputer {
			n++
		}
	}
	return n
}

// broadcastLocked sends payload to every seated peer except exclude (if
// non-nil). Must be called with mu held.
func (m *Match) broadcastLocked(exclude Peer, payload []byte) {
	for _, seat := range m.seats {
		if seat == nil || seat.Peer == nil {
			continue
		}
		if exclude != nil && seat.Peer.ID() == exclude.ID() {
			continue
		}
		_ = seat.Peer.Send(payload)
	}
}

// EventSend processes one Legacy EventSend from sender and relays the
// resulting QueuedEvents per spec.md §4.3.
func (m *Match) EventSend(sender Peer, eventName, eventXML string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seat := m.seatOf(sender)
	if seat < 0 {
		return fmt.Errorf("%w: event from unseated peer", errkind.ProtocolError)
	}

	for _, qe := range m.session.ProcessEvent(seat, eventName, eventXML) {
		if qe.XMLSenderOnly != "" {
			_ = sender.Send([]byte(qe.XMLSenderOnly))
			continue
		}
		m.broadcastLocked(excludeIf(!qe.IncludeSender, sender), []byte(qe.XML))
	}
	return nil
}

func excludeIf(exclude bool, peer Peer) Peer {
	if exclude {
		return peer
	}
	return nil
}

// Chat validates and relays a chat message; validation of the text itself
// is the caller's responsibility (internal/legacyproto.ValidateChatText /
// the Modern numeric-ID substitution), this only enforces seating.
func (m *Match) Chat(sender Peer, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seatOf(sender) < 0 {
		return fmt.Errorf("%w: chat from unseated peer", errkind.ProtocolError)
	}
	m.broadcastLocked(nil, payload)
	return nil
}

// Update advances GameOver→Ended after the 60-second countdown, per
// spec.md §4.3 and §4.4. Called once per second by the lobby tick.
func (m *Match) Update() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != GameOver || m.gameOverAt == nil {
		return
	}
	if time.Since(*m.gameOverAt) >= constants.GameOverDisbandDelaySeconds*time.Second {
		m.phase = Ended
	}
}

// EnterGameOver transitions Playing→GameOver and starts the disband
// countdown.
func (m *Match) EnterGameOver() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != Playing {
		return
	}
	now := time.Now()
	m.gameOverAt = &now
	m.phase = GameOver
}

// ForceEnd immediately transitions to Ended, as the admin "destroy"
// operation does.
func (m *Match) ForceEnd() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phase = Ended
}

func serverStatusPayload(waiting int) []byte {
	return []byte(fmt.Sprintf("ServerStatus{playersWaiting=%d}", waiting))
}

func playerReplacedPayload(oldID, newID uint32) []byte {
	return []byte(fmt.Sprintf("PlayerReplaced{old=%d,new=%d}", oldID, newID))
}

func disconnectPayload(peerID uint32) []byte {
	return []byte(fmt.Sprintf("Disconnect{peer=%d}", peerID))
}

// computerPeer is a Peer stand-in for a seat whose human departed; it
// absorbs outbound sends silently, matching the original's computer-player
// placeholder (no real socket to write to).
type computerPeer struct {
	id uint32
}

func newComputerPeer(id uint32) Peer { return &computerPeer{id: id} }

func (c *computerPeer) ID() uint32                     { return c.id }
func (c *computerPeer) Era() constants.Era             { return constants.EraModern }
func (c *computerPeer) Send([]byte) error              { return nil }
func (c *computerPeer) OnGameStart([]uint32)           {}
func (c *computerPeer) OnReplaced(uint32, uint32)      {}
func (c *computerPeer) OnDisconnect()                  {}
