// Package constants holds the wire-contract values for both client eras:
// signature constants, protocol versions, and message type IDs. Pure data,
// grounded on original_source/InternetGamesServer/Win7 and WinXP headers.
package constants

// Era distinguishes which client generation is speaking.
type Era int

const (
	EraLegacy Era = iota
	EraModern
)

func (e Era) String() string {
	if e == EraLegacy {
		return "Legacy"
	}
	return "Modern"
}

// Dialect distinguishes the two Modern-era client builds, derived from the
// ProxyClientVersion token in the initial handshake.
type Dialect int

const (
	DialectUnknown Dialect = iota
	DialectXPModern
	DialectMEModern
)

// Game is the family of turn-based games this server coordinates.
type Game int

const (
	GameUnknown Game = iota
	GameBackgammon
	GameCheckers
	GameSpades
	GameHearts
	GameReversi
)

func (g Game) String() string {
	switch g {
	case GameBackgammon:
		return "Backgammon"
	case GameCheckers:
		return "Checkers"
	case GameSpades:
		return "Spades"
	case GameHearts:
		return "Hearts"
	case GameReversi:
		return "Reversi"
	default:
		return "Unknown"
	}
}

// RequiredPlayers returns the seat count a match of this game needs to
// start.
func (g Game) RequiredPlayers() int {
	switch g {
	case GameBackgammon, GameCheckers, GameReversi:
		return 2
	case GameSpades, GameHearts:
		return 4
	default:
		return 0
	}
}

// SupportsComputerPlayers reports whether a departed human seat in this
// game can be replaced by a computer stand-in (spec.md §4.3, §4.3.1-2).
func (g Game) SupportsComputerPlayers() bool {
	return g == GameSpades || g == GameHearts
}

// LegacyGameToken maps the Legacy "Game=" field to a Game. The tokens are
// the fixed string table from the shipped client (e.g. "wnsp" = Spades).
var LegacyGameToken = map[string]Game{
	"wnig": GameBackgammon,
	"wnck": GameCheckers,
	"wnsp": GameSpades,
	"wnhe": GameHearts,
	"wnre": GameReversi,
}

// SkillLevel is the declared player proficiency, used as a lobby-matching
// predicate unless SkipLevelMatching is configured.
type SkillLevel int

const (
	SkillBeginner SkillLevel = iota
	SkillIntermediate
	SkillExpert
)

// LegacyELOToSkill maps the ZS_PublicELO ticket field to a skill level.
func LegacyELOToSkill(elo int) SkillLevel {
	switch {
	case elo >= 3000:
		return SkillExpert
	case elo >= 2000:
		return SkillIntermediate
	default:
		return SkillBeginner
	}
}

func (s SkillLevel) String() string {
	switch s {
	case SkillExpert:
		return "Expert"
	case SkillIntermediate:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// Modern-era wire signature constants (§4.1). Two distinct values: one for
// the outer "proxy" framing used before the session is declared operational,
// one for the inner "lobby" framing used afterwards.
const (
	ProxySignature uint32 = 0x50584950 // "PIXP" little-endian marker
	LobbySignature uint32 = 0x424F4C31 // "1LOB" little-endian marker
)

// GenericFooter.status values.
const (
	StatusOK        uint32 = 0
	StatusCancelled uint32 = 1
)

// DefaultSessionKey is used for the Modern-era handshake (ConnectionHi /
// ConnectionHello) before the server hands out a per-session key.
const DefaultSessionKey uint32 = 0x5A5A5A5A

// ApplicationBase.message_type values shared by both Modern dialects for
// the proxy/lobby handshake bundle (§4.2.2).
const (
	MsgHi               uint16 = 1
	MsgID               uint16 = 2
	MsgServiceRequest   uint16 = 3
	MsgHello            uint16 = 4
	MsgSettings         uint16 = 5
	MsgServiceInfo      uint16 = 6
	MsgClientConfig     uint16 = 7
	MsgUserInfoResponse uint16 = 8
	MsgGameMessage      uint16 = 9
	MsgChatSwitch       uint16 = 10
	MsgGameStart        uint16 = 11
	MsgServerStatus     uint16 = 12
	MsgPlayerReplaced   uint16 = 13
	MsgConnectionKeepAlive uint16 = 14
)

// GameMessage.Type values for Backgammon's server-generated dice roll
// (spec.md §8 scenario 2). These travel nested inside a MsgGameMessage's
// GameMessage.Type field, a distinct numbering space from the
// ApplicationBase.message_type block above.
const (
	DiceRollRequest  uint16 = 1
	DiceRollResponse uint16 = 2
)

// ServiceRequest / ServiceInfo reason codes.
const (
	ServiceReasonConnect    uint32 = 1
	ServiceReasonDisconnect uint32 = 2
)

// Chat message ID ranges (§4.3 Chat).
const (
	ChatCommonIDMin = 1
	ChatCommonIDMax = 24
	// IDSXPChatBegin is the base of the Modern localized chat string table;
	// wire chat IDs are looked up as IDSXPChatBegin+id server-side so the
	// client can never inject arbitrary text.
	IDSXPChatBegin = 9000
)

// Legacy "nSeq"/"nRole" constants emitted by ConstructStateXML. Their
// meaning is undocumented in the original source; preserved bit-for-bit
// per spec.md §9 (do not invent semantics).
const (
	LegacyStateSeq  = 4
	LegacyStateRole = 0
)

// Idle timeouts (§4.2, §5): 60s non-play idle cutoff for both eras, and the
// per-era keep-alive intervals that bound the socket read deadline.
const (
	IdleTimeoutSeconds          = 60
	LegacyKeepAliveSeconds      = 30
	ModernKeepAliveSeconds      = 10
	KeepAliveSlackSeconds       = 5
	GameOverDisbandDelaySeconds = 60
	LobbyTickIntervalSeconds    = 1
	LockTimeoutSeconds          = 5
)
