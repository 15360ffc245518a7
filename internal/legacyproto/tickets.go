package legacyproto

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/errkind"
)

// SasTicket carries the PUID, per spec.md §4.2.1. The ticket-name prefix
// the original strips before parsing is removed by ParsePUID itself (via
// stripTicketPrefix) before the XML reaches Unmarshal.
type sasTicket struct {
	XMLName xml.Name `xml:"SasTicket"`
	Pub     struct {
		PUID string `xml:"PUID"`
	} `xml:"pub"`
}

// GasTicket carries the declared game token.
type gasTicket struct {
	XMLName xml.Name `xml:"GasTicket"`
	Pub     struct {
		Game string `xml:"Game"`
	} `xml:"pub"`
}

// PasTicket carries the declared ELO used to derive a skill level.
type pasTicket struct {
	XMLName     xml.Name `xml:"PasTicket"`
	MaskedStats struct {
		NewDataSet struct {
			Table struct {
				ZSPublicELO int `xml:"ZS_PublicELO"`
			} `xml:"Table"`
		} `xml:"NewDataSet"`
	} `xml:"MaskedStats"`
}

// stripTicketPrefix removes a leading "XxxTicket=" the way the original's
// xml.substr(10) does (every ticket field name is exactly 9 characters
// plus "=").
func stripTicketPrefix(field string) string {
	if idx := strings.IndexByte(field, '='); idx >= 0 {
		return field[idx+1:]
	}
	return field
}

// ParsePUID extracts the PUID from a SasTicket field.
func ParsePUID(field string) (string, error) {
	var t sasTicket
	if err := xml.Unmarshal([]byte(stripTicketPrefix(field)), &t); err != nil {
		return "", fmt.Errorf("%w: parsing SasTicket: %v", errkind.ProtocolError, err)
	}
	if t.Pub.PUID == "" {
		return "", fmt.Errorf("%w: SasTicket missing <PUID>", errkind.ProtocolError)
	}
	return t.Pub.PUID, nil
}

// ParseGame extracts the declared game token from a GasTicket field and
// resolves it against the fixed string table.
func ParseGame(field string) (constants.Game, error) {
	var t gasTicket
	if err := xml.Unmarshal([]byte(stripTicketPrefix(field)), &t); err != nil {
		return constants.GameUnknown, fmt.Errorf("%w: parsing GasTicket: %v", errkind.ProtocolError, err)
	}
	game, ok := constants.LegacyGameToken[t.Pub.Game]
	if !ok {
		return constants.GameUnknown, fmt.Errorf("%w: unrecognized game token %q", errkind.ProtocolError, t.Pub.Game)
	}
	return game, nil
}

// ParseSkillLevel extracts ZS_PublicELO from a PasTicket field and maps it
// to a skill level.
func ParseSkillLevel(field string) (constants.SkillLevel, error) {
	var t pasTicket
	if err := xml.Unmarshal([]byte(stripTicketPrefix(field)), &t); err != nil {
		return constants.SkillBeginner, fmt.Errorf("%w: parsing PasTicket: %v", errkind.ProtocolError, err)
	}
	return constants.LegacyELOToSkill(t.MaskedStats.NewDataSet.Table.ZSPublicELO), nil
}

// ParseSessionGUID extracts the GUID from "JOIN Session=<guid>".
func ParseSessionGUID(line string) (string, error) {
	fields := SplitLine(line)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "JOIN Session=") {
		return "", fmt.Errorf("%w: malformed JOIN line", errkind.ProtocolError)
	}
	parts := strings.SplitN(fields[0], "=", 2)
	return parts[1], nil
}

// FormatJoinContext builds the "JoinContext <match> <session> 38&38&38&"
// response to a JOIN, per ConstructJoinContextMessage.
func FormatJoinContext(matchGUID, sessionGUID string) string {
	return "JoinContext " + matchGUID + " " + sessionGUID + " 38&38&38&\r\n"
}

// FormatReady builds the "READY <match-guid>" response.
func FormatReady(matchGUID string) string {
	return "READY " + matchGUID + "\r\n"
}

// FormatState wraps xmlBody in the "STATE <match-guid>\r\nLength:
// <hex>\r\n\r\n<xml>\r\n" envelope, per ConstructStateMessage.
func FormatState(matchGUID, xmlBody string) string {
	return "STATE " + matchGUID + "\r\nLength: " + strconv.FormatInt(int64(len(xmlBody)), 16) + "\r\n\r\n" + xmlBody + "\r\n"
}
