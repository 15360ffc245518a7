package lobby

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/match"
)

type fakeSession struct {
	required int
}

func (s *fakeSession) RequiredPlayers() int                                  { return s.required }
func (s *fakeSession) SupportsComputerPlayers() bool                         { return false }
func (s *fakeSession) OnGameStart([]uint32)                                  {}
func (s *fakeSession) ProcessEvent(int, string, string) []match.QueuedEvent  { return nil }
func (s *fakeSession) OnReplacePlayer(int) []match.QueuedEvent              { return nil }
func (s *fakeSession) CustomChatRange() (int, int)                          { return 1, 1 }

func sequentialGUIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("guid-%d", n)
	}
}

func newTestManager(skipLevel bool) *Manager {
	return New(skipLevel, true, func(game constants.Game) match.Session {
		return &fakeSession{required: game.RequiredPlayers()}
	}, sequentialGUIDs())
}

func TestFindLobbyCreatesWhenBucketEmpty(t *testing.T) {
	m := newTestManager(false)
	mtch := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	require.NotNil(t, mtch)
	assert.Equal(t, match.WaitingForPlayers, mtch.Phase())
}

func TestFindLobbyReusesWaitingMatch(t *testing.T) {
	m := newTestManager(false)
	first := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	second := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	assert.Same(t, first, second)
}

func TestFindLobbySeparatesBucketsBySkill(t *testing.T) {
	m := newTestManager(false)
	beginner := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	expert := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillExpert)
	assert.NotSame(t, beginner, expert)
}

func TestSkipLevelMatchingCollapsesSkillBuckets(t *testing.T) {
	m := newTestManager(true)
	beginner := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	expert := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillExpert)
	assert.Same(t, beginner, expert)
}

func TestFindLobbyCreatesNewOnceFirstIsFull(t *testing.T) {
	m := newTestManager(false)
	first := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	require.NoError(t, first.JoinPlayer(fakePeer(1)))
	require.NoError(t, first.JoinPlayer(fakePeer(2)))
	require.Equal(t, match.Playing, first.Phase())

	second := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	assert.NotSame(t, first, second)
}

func TestDestroyMatchRemovesFromBucket(t *testing.T) {
	m := newTestManager(false)
	mtch := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	require.NoError(t, m.DestroyMatch(mtch.GUID))
	assert.Equal(t, match.Ended, mtch.Phase())

	err := m.DestroyMatch("does-not-exist")
	assert.Error(t, err)
}

func TestTickReapsEndedMatches(t *testing.T) {
	m := newTestManager(false)
	mtch := m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	mtch.ForceEnd()
	m.Tick()

	counts := m.Counts()
	for _, bc := range counts {
		assert.Equal(t, 0, bc.Total)
	}
}

func TestCountsReflectsWaitingAndTotal(t *testing.T) {
	m := newTestManager(false)
	m.FindLobby(constants.EraModern, constants.GameBackgammon, constants.SkillBeginner)
	counts := m.Counts()
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].Total)
	assert.Equal(t, 1, counts[0].Waiting)
}

type fakePeer uint32

func (p fakePeer) ID() uint32             { return uint32(p) }
func (p fakePeer) Era() constants.Era     { return constants.EraModern }
func (p fakePeer) Send([]byte) error      { return nil }
func (p fakePeer) OnGameStart([]uint32)   {}
func (p fakePeer) OnReplaced(uint32, uint32) {}
func (p fakePeer) OnDisconnect()          {}
