package legacyproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/boardlink/internal/constants"
)

func TestExtractLinesSplitsOnCRLF(t *testing.T) {
	lines, remainder := ExtractLines("JOIN Session=abc\r\nPLAY match\r\npartial")
	assert.Equal(t, []string{"JOIN Session=abc", "PLAY match"}, lines)
	assert.Equal(t, "partial", remainder)
}

func TestExtractLinesSkipsEmptyLines(t *testing.T) {
	lines, _ := ExtractLines("\r\nJOIN Session=abc\r\n")
	assert.Equal(t, []string{"JOIN Session=abc"}, lines)
}

func TestSplitLineOnAmpersand(t *testing.T) {
	fields := SplitLine("a&b&c")
	assert.Equal(t, []string{"a", "b", "c"}, fields)
}

func TestParsePUID(t *testing.T) {
	field := `GasTicket=<SasTicket><pub><PUID>user-123</PUID></pub></SasTicket>`
	puid, err := ParsePUID(field)
	require.NoError(t, err)
	assert.Equal(t, "user-123", puid)
}

func TestParseGame(t *testing.T) {
	field := `GasTicket=<GasTicket><pub><Game>wnsp</Game></pub></GasTicket>`
	game, err := ParseGame(field)
	require.NoError(t, err)
	assert.Equal(t, constants.GameSpades, game)
}

func TestParseGameRejectsUnknownToken(t *testing.T) {
	field := `GasTicket=<GasTicket><pub><Game>bogus</Game></pub></GasTicket>`
	_, err := ParseGame(field)
	assert.Error(t, err)
}

func TestParseSkillLevel(t *testing.T) {
	field := `GasTicket=<PasTicket><MaskedStats><NewDataSet><Table><ZS_PublicELO>1000</ZS_PublicELO></Table></NewDataSet></MaskedStats></PasTicket>`
	level, err := ParseSkillLevel(field)
	require.NoError(t, err)
	assert.Equal(t, constants.SkillBeginner, level)
}

func TestParseSessionGUID(t *testing.T) {
	guid, err := ParseSessionGUID("JOIN Session=abc-123&x&y")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", guid)
}

func TestFormatJoinContext(t *testing.T) {
	msg := FormatJoinContext("match-guid", "session-guid")
	assert.Equal(t, "JoinContext match-guid session-guid 38&38&38&\r\n", msg)
}

func TestFormatStateIncludesHexLength(t *testing.T) {
	msg := FormatState("match-guid", "<x/>")
	assert.Contains(t, msg, "STATE match-guid\r\n")
	assert.Contains(t, msg, "Length: 4\r\n\r\n<x/>\r\n")
}

func TestParseEventSendRequiresMessageRoot(t *testing.T) {
	_, _, err := ParseEventSend("<NotMessage><Play/></NotMessage>")
	assert.Error(t, err)
}

func TestParseEventSendExtractsEventName(t *testing.T) {
	name, xmlBody, err := ParseEventSend("<Message><Play seat=\"1\"/></Message>")
	require.NoError(t, err)
	assert.Equal(t, "Play", name)
	assert.Contains(t, xmlBody, "Play")
}

func TestValidateChatTextSystemMarkers(t *testing.T) {
	assert.NoError(t, ValidateChatText("SYS_CHATON", 100, 110, nil))
	assert.NoError(t, ValidateChatText("SYS_CHATOFF", 100, 110, nil))
}

func TestValidateChatTextNumericRanges(t *testing.T) {
	assert.NoError(t, ValidateChatText("10", 100, 110, nil))
	assert.NoError(t, ValidateChatText("105", 100, 110, nil))
	assert.Error(t, ValidateChatText("50", 100, 110, nil))
}

func TestValidateChatTextAllowlist(t *testing.T) {
	assert.NoError(t, ValidateChatText("nice move", 100, 110, []string{"nice move"}))
	assert.Error(t, ValidateChatText("free text", 100, 110, []string{"nice move"}))
}
