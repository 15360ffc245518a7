// Package lobby implements the matchmaking manager (C7): one registry
// per era×game×skill bucket, first-fit-or-create lobby assignment, and
// a periodic tick that drives each match's GameOver→Ended countdown and
// reaps ended matches.
// Grounded on internal/login/session_manager.go's registry-with-mutex
// shape (Store/Remove/CleanExpired over a sync.Map) generalized to
// matches, and MatchManager.cpp for the manager-then-match lock
// ordering (never reversed, spec.md §5).
package lobby

import (
	"fmt"
	"sync"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/match"
)

// bucketKey identifies one era×game×skill matchmaking pool. SkipLevelMatching
// collapses Skill to a single zero value at construction time, per spec.md
// §4.4 "lobby matching".
type bucketKey struct {
	era   constants.Era
	game  constants.Game
	skill constants.SkillLevel
}

// SessionFactory builds a fresh game Session for a newly-created match of
// the given game.
type SessionFactory func(game constants.Game) match.Session

// Manager owns every live match, bucketed for matchmaking.
type Manager struct {
	mu                sync.Mutex
	buckets           map[bucketKey][]*match.Match
	nextIndex         int64
	skipLevelMatching bool
	allowSinglePlayer bool
	newSession        SessionFactory
	guidGen           func() string
}

// New creates an empty Manager. guidGen is injected so tests can supply
// deterministic GUIDs; in production it is a UUID generator.
func New(skipLevelMatching, allowSinglePlayer bool, newSession SessionFactory, guidGen func() string) *Manager {
	return &Manager{
		buckets:           make(map[bucketKey][]*match.Match),
		skipLevelMatching: skipLevelMatching,
		allowSinglePlayer: allowSinglePlayer,
		newSession:        newSession,
		guidGen:           guidGen,
	}
}

func (m *Manager) bucketSkill(skill constants.SkillLevel) constants.SkillLevel {
	if m.skipLevelMatching {
		return constants.SkillBeginner
	}
	return skill
}

// FindLobby returns the first WaitingForPlayers match in the requested
// era×game×skill bucket, or creates a new one if none is waiting.
func (m *Manager) FindLobby(era constants.Era, game constants.Game, skill constants.SkillLevel) *match.Match {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := bucketKey{era: era, game: game, skill: m.bucketSkill(skill)}
	for _, mtch := range m.buckets[key] {
		if mtch.Phase() == match.WaitingForPlayers {
			return mtch
		}
	}

	m.nextIndex++
	guid := m.guidGen()
	mtch := match.New(m.nextIndex, guid, era, game, key.skill, m.newSession(game), m.allowSinglePlayer)
	m.buckets[key] = append(m.buckets[key], mtch)
	return mtch
}

// DestroyMatch force-ends and unregisters a match, as the admin "d" verb
// does (original_source Command.cpp's "destroy lobby/match" command).
func (m *Manager) DestroyMatch(guid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, matches := range m.buckets {
		for i, mtch := range matches {
			if mtch.GUID == guid {
				mtch.ForceEnd()
				m.buckets[key] = append(matches[:i], matches[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("match %q not found", guid)
}

// Tick advances every match's internal countdown and reaps any that have
// reached Ended. Called once per second (constants.LobbyTickIntervalSeconds)
// from the entrypoint.
func (m *Manager) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, matches := range m.buckets {
		kept := matches[:0]
		for _, mtch := range matches {
			mtch.Update()
			if mtch.Phase() == match.Ended {
				continue
			}
			kept = append(kept, mtch)
		}
		m.buckets[key] = kept
	}
}

// Counts returns, for every bucket with at least one match, the number of
// matches and the number currently WaitingForPlayers — used by the status
// page (internal/statuspage).
func (m *Manager) Counts() []BucketCount {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []BucketCount
	for key, matches := range m.buckets {
		bc := BucketCount{Era: key.era, Game: key.game, Skill: key.skill}
		for _, mtch := range matches {
			bc.Total++
			if mtch.Phase() == match.WaitingForPlayers {
				bc.Waiting++
			}
		}
		out = append(out, bc)
	}
	return out
}

// BucketCount is one row of the status page's per-bucket table.
type BucketCount struct {
	Era     constants.Era
	Game    constants.Game
	Skill   constants.SkillLevel
	Total   int
	Waiting int
}

// MatchInfo is one row of the admin console's "lm" listing.
type MatchInfo struct {
	Index     int64
	GUID      string
	Era       constants.Era
	Game      constants.Game
	Skill     constants.SkillLevel
	Phase     string
	SeatCount int
}

// ListMatches returns every live match, for the admin "lm" command.
func (m *Manager) ListMatches() []MatchInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MatchInfo
	for _, matches := range m.buckets {
		for _, mtch := range matches {
			out = append(out, MatchInfo{
				Index:     mtch.Index,
				GUID:      mtch.GUID,
				Era:       mtch.Era,
				Game:      mtch.Game,
				Skill:     mtch.Skill,
				Phase:     mtch.Phase().String(),
				SeatCount: mtch.SeatCount(),
			})
		}
	}
	return out
}

// DestroyMatchByIndex is the "d {index}" admin command's lookup path.
func (m *Manager) DestroyMatchByIndex(index int64) error {
	m.mu.Lock()
	for key, matches := range m.buckets {
		for i, mtch := range matches {
			if mtch.Index == index {
				mtch.ForceEnd()
				m.buckets[key] = append(matches[:i], matches[i+1:]...)
				m.mu.Unlock()
				return nil
			}
		}
	}
	m.mu.Unlock()
	return fmt.Errorf("no match with index %d", index)
}
