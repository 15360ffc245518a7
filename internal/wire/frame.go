// Package wire implements the Modern-era binary frame codec (C1): the
// length-prefixed GenericBase/ApplicationBase/GameMessage/GenericFooter
// layout, its DWORD-wise XOR session cipher, and the checksum that covers
// ApplicationBase||payload in network-endian form.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/udisondev/boardlink/internal/errkind"
)

// Signature distinguishes the outer "proxy" framing used before the
// session is declared operational from the inner "lobby" framing used
// afterwards (spec §4.1).
type Signature uint32

const (
	ProxySignature Signature = 0x50584950
	LobbySignature Signature = 0x424F4C31
)

// Status is the GenericFooter.status field.
type Status uint32

const (
	StatusOK        Status = 0
	StatusCancelled Status = 1
)

// DefaultSessionKey is used for the initial ConnectionHi/ConnectionHello
// handshake, before the server hands out a per-session key.
const DefaultSessionKey uint32 = 0x5A5A5A5A

const (
	genericBaseSize     = 12
	applicationBaseSize = 12
	gameMessageSize     = 8
	genericFooterSize   = 4
)

// HeaderSize is the fixed GenericBase+ApplicationBase prefix every frame
// starts with; a reader must consume this many bytes before it can learn
// TotalLength and read the rest.
const HeaderSize = genericBaseSize + applicationBaseSize

// GenericBase is the outermost 12-byte record of every Modern frame.
type GenericBase struct {
	TotalLength uint32
	SequenceID  uint32
	Checksum    uint32
}

// ApplicationBase follows GenericBase.
type ApplicationBase struct {
	Signature   Signature
	MessageType uint16
	DataLength  uint16
}

// GameMessage is an optional sub-header inside the ApplicationBase payload
// when MessageType is a game message.
type GameMessage struct {
	GameID uint32
	Type   uint16
	Length uint16
	// Pad is not meaningful data and is not serialized: the 8-byte wire
	// sub-header is GameID, Type and Length only.
	Pad uint16
}

// GenericFooter is the trailing 4-byte record of every Modern frame.
type GenericFooter struct {
	Status Status
}

// Frame is a fully decoded Modern message: the two base records plus the
// raw application payload bytes (host byte order, footer already verified
// and stripped).
type Frame struct {
	Base        GenericBase
	Application ApplicationBase
	Payload     []byte
}

// xorKeyDwords applies the fixed DWORD-wise XOR schedule in-place: every
// 4-byte little-endian word of data is XORed with key, and key is rotated
// left by one byte after each word. The same function serves both
// directions because XOR is its own inverse.
func xorKeyDwords(data []byte, key uint32) {
	n := len(data) - len(data)%4
	for i := 0; i < n; i += 4 {
		word := binary.LittleEndian.Uint32(data[i : i+4])
		word ^= key
		binary.LittleEndian.PutUint32(data[i:i+4], word)
		key = (key << 8) | (key >> 24)
	}
	// Any trailing bytes (< 4) are XORed byte-wise against the low byte
	// of the rolling key so obfuscation covers the whole buffer.
	for i := n; i < len(data); i++ {
		data[i] ^= byte(key)
	}
}

// Obfuscate XORs everything except the footer with key — used for both
// encryption and decryption of the GenericBase+ApplicationBase+payload
// region of a frame, per spec §4.1.
func Obfuscate(data []byte, key uint32) {
	xorKeyDwords(data, key)
}

// checksum computes the checksum over ApplicationBase||payload in
// network-endian (big-endian) form, per spec §4.1.
func checksum(app ApplicationBase, payload []byte) uint32 {
	buf := make([]byte, applicationBaseSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(app.Signature))
	binary.BigEndian.PutUint16(buf[4:6], app.MessageType)
	binary.BigEndian.PutUint16(buf[6:8], app.DataLength)
	// bytes 8:12 of ApplicationBase are reserved/padding; left zero.
	copy(buf[applicationBaseSize:], payload)

	var sum uint32
	for i := 0; i+4 <= len(buf); i += 4 {
		sum += binary.BigEndian.Uint32(buf[i : i+4])
	}
	for i := len(buf) - len(buf)%4; i < len(buf); i++ {
		sum += uint32(buf[i])
	}
	return sum
}

// Encode serializes f into an obfuscated, checksummed, length-prefixed
// wire frame ready to write to the connection.
func Encode(f Frame, key uint32) ([]byte, error) {
	f.Application.DataLength = uint16(len(f.Payload))
	f.Base.Checksum = checksum(f.Application, f.Payload)
	total := genericBaseSize + applicationBaseSize + len(f.Payload) + genericFooterSize
	f.Base.TotalLength = uint32(total)

	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:4], f.Base.TotalLength)
	binary.LittleEndian.PutUint32(buf[4:8], f.Base.SequenceID)
	binary.LittleEndian.PutUint32(buf[8:12], f.Base.Checksum)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(f.Application.Signature))
	binary.LittleEndian.PutUint16(buf[16:18], f.Application.MessageType)
	binary.LittleEndian.PutUint16(buf[18:20], f.Application.DataLength)
	copy(buf[applicationBaseSize+genericBaseSize:], f.Payload)

	footerOff := total - genericFooterSize
	binary.LittleEndian.PutUint32(buf[footerOff:], uint32(StatusOK))

	Obfuscate(buf[:footerOff], key)
	return buf, nil
}

// Decode parses and validates a complete wire frame previously obfuscated
// with key, checking it against wantSignature.
func Decode(buf []byte, key uint32, wantSignature Signature) (Frame, error) {
	if len(buf) < genericBaseSize+applicationBaseSize+genericFooterSize {
		return Frame{}, fmt.Errorf("%w: frame too short (%d bytes)", errkind.ProtocolError, len(buf))
	}

	footerOff := len(buf) - genericFooterSize
	plain := make([]byte, footerOff)
	copy(plain, buf[:footerOff])
	Obfuscate(plain, key)

	var f Frame
	f.Base.TotalLength = binary.LittleEndian.Uint32(plain[0:4])
	f.Base.SequenceID = binary.LittleEndian.Uint32(plain[4:8])
	f.Base.Checksum = binary.LittleEndian.Uint32(plain[8:12])
	f.Application.Signature = Signature(binary.LittleEndian.Uint32(plain[12:16]))
	f.Application.MessageType = binary.LittleEndian.Uint16(plain[16:18])
	f.Application.DataLength = binary.LittleEndian.Uint16(plain[18:20])

	if f.Application.Signature != wantSignature {
		return Frame{}, fmt.Errorf("%w: signature mismatch: got %#x want %#x",
			errkind.ProtocolError, uint32(f.Application.Signature), uint32(wantSignature))
	}
	if int(f.Base.TotalLength) != len(buf) {
		return Frame{}, fmt.Errorf("%w: total_length %d does not match observed %d bytes",
			errkind.ProtocolError, f.Base.TotalLength, len(buf))
	}

	payloadStart := genericBaseSize + applicationBaseSize
	payloadEnd := payloadStart + int(f.Application.DataLength)
	if payloadEnd > footerOff {
		return Frame{}, fmt.Errorf("%w: data_length %d overruns frame", errkind.ProtocolError, f.Application.DataLength)
	}
	if payloadEnd > payloadStart {
		f.Payload = plain[payloadStart:payloadEnd]
	}
	if payloadEnd != footerOff {
		return Frame{}, fmt.Errorf("%w: %d trailing bytes before footer", errkind.ProtocolError, footerOff-payloadEnd)
	}

	wantChecksum := checksum(f.Application, f.Payload)
	if wantChecksum != f.Base.Checksum {
		return Frame{}, fmt.Errorf("%w: checksum mismatch: got %#x want %#x",
			errkind.ProtocolError, f.Base.Checksum, wantChecksum)
	}

	status := Status(binary.LittleEndian.Uint32(buf[footerOff:]))
	if status != StatusOK {
		return Frame{}, fmt.Errorf("%w: footer status %d (session cancelled)", errkind.ProtocolError, status)
	}

	return f, nil
}

// EncodeGameMessage packs a GameMessage sub-header and its payload into a
// single application payload byte slice.
func EncodeGameMessage(gm GameMessage, payload []byte) []byte {
	gm.Length = uint16(len(payload))
	buf := make([]byte, gameMessageSize+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], gm.GameID)
	binary.LittleEndian.PutUint16(buf[4:6], gm.Type)
	binary.LittleEndian.PutUint16(buf[6:8], gm.Length)
	copy(buf[gameMessageSize:], payload)
	return buf
}

// DecodeGameMessage splits a GameMessage sub-header off the front of an
// application payload.
func DecodeGameMessage(payload []byte) (GameMessage, []byte, error) {
	if len(payload) < gameMessageSize {
		return GameMessage{}, nil, fmt.Errorf("%w: game message sub-header truncated", errkind.ProtocolError)
	}
	var gm GameMessage
	gm.GameID = binary.LittleEndian.Uint32(payload[0:4])
	gm.Type = binary.LittleEndian.Uint16(payload[4:6])
	gm.Length = binary.LittleEndian.Uint16(payload[6:8])
	rest := payload[gameMessageSize:]
	if int(gm.Length) != len(rest) {
		return GameMessage{}, nil, fmt.Errorf("%w: game message length %d does not match remaining %d bytes",
			errkind.ProtocolError, gm.Length, len(rest))
	}
	return gm, rest, nil
}
