// Package listener implements the TCP accept loop (C8): ban-list and
// per-IP cap enforcement, era detection, and hand-off into the Legacy
// and Modern connection state machines described in spec.md §4.2.
// Grounded on internal/login/server.go's acceptLoop/handleConnection
// shape (errors.Is(err, net.ErrClosed) shutdown handling, one goroutine
// per accepted connection).
package listener

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/boardlink/internal/admin"
	"github.com/udisondev/boardlink/internal/conn"
	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/legacyproto"
	"github.com/udisondev/boardlink/internal/lobby"
	"github.com/udisondev/boardlink/internal/match"
	"github.com/udisondev/boardlink/internal/wire"
)

// BanChecker is the subset of internal/config.Config the listener needs
// for accept-time rejection.
type BanChecker interface {
	IsBanned(ip string) bool
}

// Listener owns the accept loop and the live-connection registry used by
// both ban/cap enforcement and the admin console's "lc"/"k" commands.
type Listener struct {
	cfg          BanChecker
	maxPerIP     int
	lobbyMgr     *lobby.Manager
	nextConnID   atomic.Uint32

	mu      sync.Mutex
	conns   map[uint32]*conn.Conn
	perIP   map[string]int
}

// New builds a Listener bound to a running lobby.Manager. maxPerIP <= 0
// means unlimited, per spec.md §6 "numConnectionsPerIP: 0 signifies no
// limit".
func New(cfg BanChecker, maxPerIP int, lobbyMgr *lobby.Manager) *Listener {
	return &Listener{
		cfg:      cfg,
		maxPerIP: maxPerIP,
		lobbyMgr: lobbyMgr,
		conns:    make(map[uint32]*conn.Conn),
		perIP:    make(map[string]int),
	}
}

// Serve accepts connections on ln until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		netConn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				wg.Wait()
				return nil
			}
			slog.Error("accept failed", "error", err)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(ctx, netConn)
		}()
	}
}

func (l *Listener) handleConnection(ctx context.Context, netConn net.Conn) {
	host, _, err := net.SplitHostPort(netConn.RemoteAddr().String())
	if err != nil {
		netConn.Close()
		return
	}

	if l.cfg.IsBanned(host) {
		netConn.Close()
		return
	}
	if !l.reserveSlot(host) {
		netConn.Close()
		return
	}
	defer l.releaseSlot(host)

	id := l.nextConnID.Add(1)
	reader := bufio.NewReaderSize(netConn, 4096)
	first, err := reader.Peek(1)
	if err != nil {
		netConn.Close()
		return
	}

	era := constants.EraModern
	if isPrintableASCII(first[0]) {
		era = constants.EraLegacy
	}

	c, err := conn.New(netConn, id, era)
	if err != nil {
		netConn.Close()
		return
	}
	l.register(c)
	defer l.unregister(c.ID())
	defer c.Close()

	if era == constants.EraLegacy {
		runLegacyConn(ctx, c, reader, l.lobbyMgr)
	} else {
		runModernConn(ctx, c, reader, l.lobbyMgr)
	}
}

func isPrintableASCII(b byte) bool {
	return b >= 0x20 && b < 0x7F
}

func (l *Listener) reserveSlot(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.maxPerIP > 0 && l.perIP[ip] >= l.maxPerIP {
		return false
	}
	l.perIP[ip]++
	return true
}

func (l *Listener) releaseSlot(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.perIP[ip]--
	if l.perIP[ip] <= 0 {
		delete(l.perIP, ip)
	}
}

func (l *Listener) register(c *conn.Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conns[c.ID()] = c
}

func (l *Listener) unregister(id uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.conns, id)
}

// List implements admin.ConnRegistry.
func (l *Listener) List() []admin.ConnInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]admin.ConnInfo, 0, len(l.conns))
	for _, c := range l.conns {
		kind := "Legacy"
		if c.Era() == constants.EraModern {
			kind = "Modern"
		}
		guid := ""
		if m := c.Match(); m != nil {
			guid = m.GUID
		}
		out = append(out, admin.ConnInfo{
			IP:        c.IP(),
			Kind:      kind,
			State:     stateName(c.State()),
			MatchGUID: guid,
		})
	}
	return out
}

func stateName(s conn.State) string {
	switch s {
	case conn.StateConnecting:
		return "Connecting"
	case conn.StateHandshaking:
		return "Handshaking"
	case conn.StateLobby:
		return "Lobby"
	case conn.StateInMatch:
		return "InMatch"
	default:
		return "Closed"
	}
}

// KickIP implements admin.ConnRegistry: disconnects every connection from ip.
func (l *Listener) KickIP(ip string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.conns {
		if c.IP() == ip {
			c.Close()
			n++
		}
	}
	if n == 0 {
		return 0, fmt.Errorf("no sockets with IP %q found", ip)
	}
	return n, nil
}

// KickIPPort implements admin.ConnRegistry. The connection port is not
// tracked separately from its net.Conn today, so this degrades to a full
// per-IP kick; a future revision can track source port alongside IP.
func (l *Listener) KickIPPort(ip string, _ int) (int, error) {
	return l.KickIP(ip)
}

// --- Legacy era state machine (spec.md §4.2.1) ---

type legacyState int

const (
	legacyInitialized legacyState = iota
	legacyJoining
	legacyJoiningConfirm
	legacyWaitingForOpponents
	legacyPlaying
)

func runLegacyConn(ctx context.Context, c *conn.Conn, reader *bufio.Reader, lobbyMgr *lobby.Manager) {
	c.SetState(conn.StateHandshaking)
	state := legacyInitialized
	var m *match.Match
	var sessionGUID string
	var buf strings.Builder

	readDeadline := time.Duration(constants.LegacyKeepAliveSeconds+constants.KeepAliveSlackSeconds) * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := readLegacyLine(reader, readDeadline, &buf)
		if err != nil {
			return
		}
		c.Touch()

		fields := legacyproto.SplitLine(line)
		if len(fields) == 0 {
			continue
		}

		switch state {
		case legacyInitialized:
			if !strings.HasPrefix(fields[0], "JOIN Session=") {
				continue
			}
			guid, err := legacyproto.ParseSessionGUID(line)
			if err != nil {
				return
			}
			sessionGUID = guid

			var game constants.Game
			var skill constants.SkillLevel
			for _, f := range fields[1:] {
				if strings.HasPrefix(f, "GasTicket=") {
					if g, err := legacyproto.ParseGame(f); err == nil {
						game = g
					}
				}
				if strings.HasPrefix(f, "PasTicket=") {
					if s, err := legacyproto.ParseSkillLevel(f); err == nil {
						skill = s
					}
				}
			}

			m = lobbyMgr.FindLobby(constants.EraLegacy, game, skill)
			c.SetMatch(m)
			_ = c.SendLegacyLine(legacyproto.FormatJoinContext(m.GUID, sessionGUID))
			state = legacyJoining

		case legacyJoining:
			if strings.HasPrefix(fields[0], "PLAY") {
				state = legacyJoiningConfirm
			}

		case legacyJoiningConfirm:
			if strings.HasPrefix(fields[0], "AT") {
				readyXML, err := legacyproto.BuildStateXML(legacyproto.ReadyXML())
				if err == nil {
					_ = c.SendLegacyLine(legacyproto.FormatReady(m.GUID))
					_ = c.SendLegacyLine(legacyproto.FormatState(m.GUID, readyXML))
				}
				c.SetState(conn.StateLobby)
				if err := m.JoinPlayer(c); err != nil {
					return
				}
				state = legacyWaitingForOpponents
			}

		case legacyWaitingForOpponents, legacyPlaying:
			if strings.HasPrefix(fields[0], "LEAVE") {
				m.DisconnectedPlayer(c)
				return
			}
			if strings.HasPrefix(fields[0], "CALL EventSend") {
				if c.AcceptsGameMessages() {
					eventName, eventXML, err := extractEventSend(fields)
					if err == nil {
						_ = m.EventSend(c, eventName, eventXML)
					}
				}
				state = legacyPlaying
				continue
			}
			if strings.HasPrefix(fields[0], "CALL Chat") {
				if c.AcceptsGameMessages() {
					_ = m.Chat(c, []byte(line))
				}
				state = legacyPlaying
				continue
			}
			if strings.HasPrefix(fields[0], "CALL GameReady") {
				state = legacyPlaying
				continue
			}
		}
	}
}

func extractEventSend(fields []string) (string, string, error) {
	for _, f := range fields {
		if strings.HasPrefix(f, "XMLDataString=") {
			return legacyproto.ParseEventSend(strings.TrimPrefix(f, "XMLDataString="))
		}
	}
	return "", "", fmt.Errorf("EventSend call missing XMLDataString field")
}

func readLegacyLine(reader *bufio.Reader, timeout time.Duration, buf *strings.Builder) (string, error) {
	for {
		lines, remainder := legacyproto.ExtractLines(buf.String())
		if len(lines) > 0 {
			buf.Reset()
			buf.WriteString(remainder)
			return lines[0], nil
		}

		chunk := make([]byte, 2048)
		n, err := reader.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err != nil {
			return "", err
		}
	}
}

// --- Modern era state machine (spec.md §4.2.2) ---

func runModernConn(ctx context.Context, c *conn.Conn, reader *bufio.Reader, lobbyMgr *lobby.Manager) {
	c.SetState(conn.StateHandshaking)

	var game constants.Game
	proxyDone := false
	var m *match.Match

	sig := wire.ProxySignature
	key := wire.DefaultSessionKey

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		f, err := readModernFrame(reader, key, sig)
		if err != nil {
			return
		}
		c.Touch()

		switch f.Application.MessageType {
		case constants.MsgHi:
			_ = c.SendModernFrame(wire.Frame{Application: wire.ApplicationBase{Signature: wire.ProxySignature, MessageType: constants.MsgID}})
		case constants.MsgID:
			if len(f.Payload) >= 6 {
				game = decodeGameToken(f.Payload[:6])
			}
		case constants.MsgServiceRequest:
			if !proxyDone {
				_ = c.SendModernFrame(wire.Frame{Application: wire.ApplicationBase{Signature: wire.ProxySignature, MessageType: constants.MsgHello}})
				_ = c.SendModernFrame(wire.Frame{Application: wire.ApplicationBase{Signature: wire.ProxySignature, MessageType: constants.MsgSettings}})
				_ = c.SendModernFrame(wire.Frame{Application: wire.ApplicationBase{Signature: wire.ProxySignature, MessageType: constants.MsgServiceInfo}})
				_ = c.SendModernFrame(wire.Frame{Application: wire.ApplicationBase{Signature: wire.ProxySignature, MessageType: constants.MsgServiceInfo}})
				proxyDone = true
				sig = wire.LobbySignature
			}
		case constants.MsgClientConfig:
			_ = c.SendModernFrame(wire.Frame{Application: wire.ApplicationBase{Signature: wire.LobbySignature, MessageType: constants.MsgUserInfoResponse}})
			m = lobbyMgr.FindLobby(constants.EraModern, game, constants.SkillBeginner)
			c.SetMatch(m)
			c.SetState(conn.StateLobby)
			if err := m.JoinPlayer(c); err != nil {
				return
			}
		case constants.MsgGameMessage:
			if m != nil && c.AcceptsGameMessages() {
				gm, payload, err := wire.DecodeGameMessage(f.Payload)
				if err == nil {
					eventName := strconv.Itoa(int(gm.Type))
					_ = m.EventSend(c, eventName, string(payload))
				}
			}
		case constants.MsgChatSwitch:
			if m != nil && c.AcceptsGameMessages() {
				_ = m.Chat(c, f.Payload)
			}
		}
	}
}

func decodeGameToken(token []byte) constants.Game {
	for t, g := range constants.LegacyGameToken {
		if string(token[:len(t)]) == t {
			return g
		}
	}
	return constants.GameUnknown
}

func readModernFrame(reader *bufio.Reader, key uint32, sig wire.Signature) (wire.Frame, error) {
	header := make([]byte, wire.HeaderSize)
	if _, err := readFull(reader, header); err != nil {
		return wire.Frame{}, err
	}

	plainHeader := append([]byte(nil), header...)
	wire.Obfuscate(plainHeader, key)
	totalLength := int(le32(plainHeader[0:4]))
	if totalLength < wire.HeaderSize {
		return wire.Frame{}, fmt.Errorf("invalid total_length %d", totalLength)
	}

	rest := make([]byte, totalLength-wire.HeaderSize)
	if _, err := readFull(reader, rest); err != nil {
		return wire.Frame{}, err
	}

	full := append(header, rest...)
	return wire.Decode(full, key, sig)
}

func readFull(reader *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := reader.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
