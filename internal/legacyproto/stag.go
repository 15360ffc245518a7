package legacyproto

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/errkind"
)

// stateXML is the wrapper ConstructStateXML builds: nSeq/nRole are carried
// bit-for-bit unexplained, per the Open Question in spec.md §9 — do not
// invent meaning for them.
type stateXML struct {
	XMLName xml.Name `xml:"STATE"`
	NSeq    int      `xml:"nSeq"`
	NRole   int      `xml:"nRole"`
	Tags    []byte   `xml:",innerxml"`
}

// BuildStateXML wraps one or more raw STag XML fragments in the
// nSeq/nRole envelope.
func BuildStateXML(tagsXML ...string) (string, error) {
	var body []byte
	for _, t := range tagsXML {
		body = append(body, t...)
	}
	out, err := xml.Marshal(stateXML{
		NSeq:  constants.LegacyStateSeq,
		NRole: constants.LegacyStateRole,
		Tags:  body,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshaling STATE envelope: %v", errkind.ProtocolError, err)
	}
	return string(out), nil
}

// ReadyXML is the STag sent in response to "AT ", confirming the client
// may wait for opponents.
func ReadyXML() string {
	return "<MethodMessage><Method>Ready</Method></MethodMessage>"
}

// GameInitXML builds the GameInit STag: the roster of seated PUIDs plus
// the starting dealer/leader seat.
func GameInitXML(puids []string, dealerSeat int) string {
	out := "<GameInit><Players>"
	for _, puid := range puids {
		out += "<Player><PUID>" + puid + "</PUID></Player>"
	}
	out += "</Players><Dealer>" + strconv.Itoa(dealerSeat) + "</Dealer></GameInit>"
	return out
}

// GameStartXML builds the STag signaling the client to begin play.
func GameStartXML() string {
	return "<MethodMessage><Method>GameStart</Method></MethodMessage>"
}

// EventReceiveXML wraps a relayed event XML fragment in its STag.
func EventReceiveXML(eventXML string) string {
	return "<EventReceive>" + eventXML + "</EventReceive>"
}

// QueuedEvent is one outbound consequence of processing an EventSend,
// per spec.md §4.3 "Event relay (Legacy)".
type QueuedEvent struct {
	XML            string
	XMLSenderOnly  string
	IncludeSender  bool
}

// ParseEventSend validates an EventSend payload: its root must be
// "Message" containing exactly one child naming the event.
func ParseEventSend(payloadXML string) (eventName string, eventXML string, err error) {
	var env struct {
		XMLName xml.Name
		Inner   []byte `xml:",innerxml"`
	}
	if uErr := xml.Unmarshal([]byte(payloadXML), &env); uErr != nil {
		return "", "", fmt.Errorf("%w: parsing EventSend: %v", errkind.ProtocolError, uErr)
	}
	if env.XMLName.Local != "Message" {
		return "", "", fmt.Errorf("%w: EventSend root must be <Message>, got <%s>", errkind.ProtocolError, env.XMLName.Local)
	}

	decoder := xml.NewDecoder(bytes.NewReader(env.Inner))
	name := ""
	for {
		tok, tErr := decoder.Token()
		if tErr != nil {
			break
		}
		if start, ok := tok.(xml.StartElement); ok {
			if name != "" {
				return "", "", fmt.Errorf("%w: EventSend <Message> has more than one child element", errkind.ProtocolError)
			}
			name = start.Name.Local
			if sErr := decoder.Skip(); sErr != nil {
				return "", "", fmt.Errorf("%w: parsing EventSend child: %v", errkind.ProtocolError, sErr)
			}
		}
	}
	if name == "" {
		return "", "", fmt.Errorf("%w: EventSend <Message> has no child element", errkind.ProtocolError)
	}
	return name, string(env.Inner), nil
}
