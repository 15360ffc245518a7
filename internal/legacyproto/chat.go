package legacyproto

import (
	"fmt"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/errkind"
)

// ChatTag carries the fixed chat fields of a Legacy "CALL Chat" message.
type ChatTag struct {
	UserID      string
	Nickname    string
	Text        string
	FontFace    string
	FontFlags   string
	FontColor   string
	FontCharSet string
}

// ValidateChatText enforces spec.md §4.3 "Chat": text must be SYS_CHATON,
// SYS_CHATOFF, one of the game's custom nudge-message allowlist, or a
// numeric ID in the common range or the game's custom range.
func ValidateChatText(text string, customRangeMin, customRangeMax int, allowlist []string) error {
	if text == "SYS_CHATON" || text == "SYS_CHATOFF" {
		return nil
	}
	for _, allowed := range allowlist {
		if text == allowed {
			return nil
		}
	}

	id, err := parseChatID(text)
	if err != nil {
		return fmt.Errorf("%w: chat text %q is neither a system marker, allowlisted nudge, nor numeric ID", errkind.ProtocolError, text)
	}
	if id >= constants.ChatCommonIDMin && id <= constants.ChatCommonIDMax {
		return nil
	}
	if id >= customRangeMin && id <= customRangeMax {
		return nil
	}
	return fmt.Errorf("%w: chat ID %d out of range", errkind.ProtocolError, id)
}

func parseChatID(text string) (int, error) {
	var id int
	_, err := fmt.Sscanf(text, "%d", &id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
