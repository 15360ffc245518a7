// Package conn implements the per-connection state machine (C5): one
// struct per accepted socket, tracking handshake progress, the seated
// match (if any), and an async send queue so a slow client can never
// block the rest of the server.
// Grounded on internal/gameserver/client.go's GameClient (atomic state,
// sendCh/closeCh/closeOnce, mutex guarding only the rare fields) and
// internal/login/server.go's accept/handle shape.
package conn

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/errkind"
	"github.com/udisondev/boardlink/internal/legacyproto"
	"github.com/udisondev/boardlink/internal/match"
	"github.com/udisondev/boardlink/internal/wire"
)

// State is the connection's position in the handshake/lobby/match
// lifecycle (spec.md §4.2.1/§4.2.2).
type State int32

const (
	StateConnecting State = iota
	StateHandshaking
	StateLobby
	StateInMatch
	StateClosed
)

const (
	defaultSendQueueSize = 64
	defaultWriteTimeout  = 5 * time.Second
)

// Conn is one client connection, Legacy or Modern.
type Conn struct {
	netConn net.Conn
	ip      string
	id      uint32
	era     constants.Era
	dialect constants.Dialect

	state atomic.Int32

	mu         sync.Mutex
	puid       string
	sessionKey uint32
	m          *match.Match
	lastActive time.Time

	seq wire.Sequencer

	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
}

// New wraps an accepted socket. id must be unique for the connection's
// lifetime (the lobby/match layer uses it to address seats).
func New(netConn net.Conn, id uint32, era constants.Era) (*Conn, error) {
	host, _, err := net.SplitHostPort(netConn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting host port: %w", err)
	}
	c := &Conn{
		netConn:    netConn,
		ip:         host,
		id:         id,
		era:        era,
		sessionKey: constants.DefaultSessionKey,
		lastActive: time.Now(),
		sendCh:     make(chan []byte, defaultSendQueueSize),
		closeCh:    make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	go c.writePump()
	return c, nil
}

func (c *Conn) ID() uint32             { return c.id }
func (c *Conn) Era() constants.Era     { return c.era }
func (c *Conn) IP() string             { return c.ip }
func (c *Conn) State() State           { return State(c.state.Load()) }
func (c *Conn) SetState(s State)       { c.state.Store(int32(s)) }

func (c *Conn) SetDialect(d constants.Dialect) { c.dialect = d }
func (c *Conn) Dialect() constants.Dialect     { return c.dialect }

func (c *Conn) PUID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puid
}

func (c *Conn) SetPUID(puid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puid = puid
}

func (c *Conn) SessionKey() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionKey
}

func (c *Conn) SetSessionKey(key uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = key
}

// Match returns the currently-seated match, or nil if none.
func (c *Conn) Match() *match.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m
}

func (c *Conn) SetMatch(m *match.Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = m
}

// Touch records activity for the idle-timeout check.
func (c *Conn) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = time.Now()
}

// IdleFor reports how long since the last recorded activity.
func (c *Conn) IdleFor() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastActive)
}

// AcceptsGameMessages reports whether the connection has progressed far
// enough through its handshake to receive gameplay traffic, per spec.md
// §4.2.3 "a connection only accepts GameMessage traffic once it has
// completed its handshake and is seated".
func (c *Conn) AcceptsGameMessages() bool {
	s := c.State()
	return s == StateLobby || s == StateInMatch
}

func (c *Conn) writePump() {
	defer func() {
		for {
			select {
			case <-c.sendCh:
			default:
				return
			}
		}
	}()
	for {
		select {
		case payload, ok := <-c.sendCh:
			if !ok {
				return
			}
			if err := c.netConn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout)); err != nil {
				slog.Warn("set write deadline failed", "conn", c.id, "error", err)
				return
			}
			if _, err := c.netConn.Write(payload); err != nil {
				slog.Warn("write failed", "conn", c.id, "error", err)
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// Send queues a raw payload (already framed/obfuscated for Modern, or a
// CRLF-terminated line for Legacy) for async delivery. Implements
// match.Peer.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.closeCh:
		return fmt.Errorf("%w: connection %d closed", errkind.ClientDisconnected, c.id)
	default:
	}
	select {
	case c.sendCh <- payload:
		return nil
	case <-c.closeCh:
		return fmt.Errorf("%w: connection %d closed", errkind.ClientDisconnected, c.id)
	default:
		slog.Warn("send queue full, disconnecting slow client", "conn", c.id)
		c.CloseAsync()
		return fmt.Errorf("%w: send queue full for connection %d", errkind.ClientDisconnected, c.id)
	}
}

// SendModernFrame encodes and queues a Modern-era wire frame, assigning
// the next outbound sequence ID.
func (c *Conn) SendModernFrame(f wire.Frame) error {
	f.Base.SequenceID = c.seq.Next()
	buf, err := wire.Encode(f, c.SessionKey())
	if err != nil {
		return fmt.Errorf("encoding frame for connection %d: %w", c.id, err)
	}
	return c.Send(buf)
}

// SendLegacyLine queues a CRLF-terminated Legacy protocol line.
func (c *Conn) SendLegacyLine(line string) error {
	return c.Send([]byte(line))
}

// OnGameStart implements match.Peer: notifies the client its match has
// begun.
func (c *Conn) OnGameStart(seatPeerIDs []uint32) {
	c.SetState(StateInMatch)
	if c.era == constants.EraModern {
		_ = c.SendModernFrame(wire.Frame{
			Application: wire.ApplicationBase{Signature: wire.LobbySignature, MessageType: constants.MsgGameStart},
		})
		return
	}
	stateXML, err := legacyproto.BuildStateXML(legacyproto.GameStartXML())
	if err != nil {
		slog.Warn("building GameStart STATE", "conn", c.id, "error", err)
		return
	}
	guid := ""
	if m := c.Match(); m != nil {
		guid = m.GUID
	}
	_ = c.SendLegacyLine(legacyproto.FormatState(guid, stateXML))
}

// OnReplaced implements match.Peer: notifies remaining clients a seat
// changed hands (human → computer stand-in).
func (c *Conn) OnReplaced(oldID, newID uint32) {
	if c.era != constants.EraModern {
		return
	}
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], oldID)
	binary.LittleEndian.PutUint32(payload[4:8], newID)
	_ = c.SendModernFrame(wire.Frame{
		Application: wire.ApplicationBase{Signature: wire.LobbySignature, MessageType: constants.MsgPlayerReplaced},
		Payload:     payload,
	})
}

// OnDisconnect implements match.Peer.
func (c *Conn) OnDisconnect() {
	c.CloseAsync()
}

// CloseAsync signals the writePump to stop without blocking the caller.
func (c *Conn) CloseAsync() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.closeCh)
	})
}

// Close stops the writePump and closes the underlying socket.
func (c *Conn) Close() error {
	c.CloseAsync()
	return c.netConn.Close()
}
