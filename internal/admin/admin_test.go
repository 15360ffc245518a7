package admin

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/lobby"
)

type fakeConns struct {
	list    []ConnInfo
	kickIP  map[string]int
	kickErr error
}

func (f *fakeConns) List() []ConnInfo { return f.list }
func (f *fakeConns) KickIP(ip string) (int, error) {
	if f.kickErr != nil {
		return 0, f.kickErr
	}
	return f.kickIP[ip], nil
}
func (f *fakeConns) KickIPPort(ip string, port int) (int, error) {
	return f.kickIP[fmt.Sprintf("%s:%d", ip, port)], nil
}

type fakeConfig struct {
	values map[string]string
	banned map[string]bool
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{values: map[string]string{"port": "28805"}, banned: map[string]bool{}}
}

func (f *fakeConfig) GetValue(key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return v, nil
}
func (f *fakeConfig) SetValue(key, value string) error {
	if key != "port" {
		return fmt.Errorf("invalid key %q", key)
	}
	f.values[key] = value
	return nil
}
func (f *fakeConfig) IsBanned(ip string) bool { return f.banned[ip] }
func (f *fakeConfig) Ban(ip string) error     { f.banned[ip] = true; return nil }
func (f *fakeConfig) Unban(ip string) error   { delete(f.banned, ip); return nil }
func (f *fakeConfig) BannedIPList() []string {
	var out []string
	for ip := range f.banned {
		out = append(out, ip)
	}
	return out
}

type fakeMatches struct {
	matches   []lobby.MatchInfo
	destroyed int64
}

func (f *fakeMatches) ListMatches() []lobby.MatchInfo { return f.matches }
func (f *fakeMatches) DestroyMatchByIndex(index int64) error {
	f.destroyed = index
	return nil
}

func runLine(t *testing.T, console *Console, line string) string {
	t.Helper()
	var buf bytes.Buffer
	console.out = &buf
	require.NoError(t, console.Run(strings.NewReader(line+"\n")))
	return buf.String()
}

func TestHelpCommand(t *testing.T) {
	console := New(&fakeConns{}, newFakeConfig(), &fakeMatches{}, nil)
	out := runLine(t, console, "h")
	assert.Contains(t, out, "List of commands")
}

func TestConfigGetSet(t *testing.T) {
	cfg := newFakeConfig()
	console := New(&fakeConns{}, cfg, &fakeMatches{}, nil)

	out := runLine(t, console, "c port")
	assert.Contains(t, out, "28805")

	runLine(t, console, "c port 9999")
	v, _ := cfg.GetValue("port")
	assert.Equal(t, "9999", v)
}

func TestBanAndUnban(t *testing.T) {
	cfg := newFakeConfig()
	console := New(&fakeConns{}, cfg, &fakeMatches{}, nil)

	out := runLine(t, console, "b 1.2.3.4")
	assert.Contains(t, out, "Added IP 1.2.3.4")
	assert.True(t, cfg.IsBanned("1.2.3.4"))

	out = runLine(t, console, "b 1.2.3.4")
	assert.Contains(t, out, "already in ban list")

	out = runLine(t, console, "u 1.2.3.4")
	assert.Contains(t, out, "Removed IP 1.2.3.4")
	assert.False(t, cfg.IsBanned("1.2.3.4"))
}

func TestDestroyMatchByIndex(t *testing.T) {
	matches := &fakeMatches{}
	console := New(&fakeConns{}, newFakeConfig(), matches, nil)

	out := runLine(t, console, "d 5")
	assert.Contains(t, out, "Destroyed match 5")
	assert.Equal(t, int64(5), matches.destroyed)
}

func TestListMatches(t *testing.T) {
	matches := &fakeMatches{matches: []lobby.MatchInfo{
		{Index: 1, GUID: "g1", Era: constants.EraModern, Game: constants.GameSpades, Skill: constants.SkillBeginner, Phase: "Playing", SeatCount: 4},
	}}
	console := New(&fakeConns{}, newFakeConfig(), matches, nil)
	out := runLine(t, console, "lm")
	assert.Contains(t, out, "g1")
	assert.Contains(t, out, "Playing")
}

func TestKickByIPOnly(t *testing.T) {
	conns := &fakeConns{kickIP: map[string]int{"5.6.7.8": 2}}
	console := New(conns, newFakeConfig(), &fakeMatches{}, nil)
	out := runLine(t, console, "k 5.6.7.8")
	assert.Contains(t, out, "Disconnected 2 socket(s)")
}

func TestListConnections(t *testing.T) {
	conns := &fakeConns{list: []ConnInfo{
		{IP: "1.1.1.1", Port: 1234, ConnectedSince: time.Now(), Kind: "Modern", State: "Lobby", MatchGUID: "g1"},
	}}
	console := New(conns, newFakeConfig(), &fakeMatches{}, nil)
	out := runLine(t, console, "lc")
	assert.Contains(t, out, "1.1.1.1")
}
