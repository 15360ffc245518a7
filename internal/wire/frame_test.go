package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		key     uint32
	}{
		{"empty payload, default key", nil, DefaultSessionKey},
		{"short payload", []byte("hi"), DefaultSessionKey},
		{"dword-aligned payload", []byte{1, 2, 3, 4, 5, 6, 7, 8}, 0xDEADBEEF},
		{"non-aligned payload", []byte{1, 2, 3, 4, 5}, 0x12345678},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Frame{
				Base:        GenericBase{SequenceID: 7},
				Application: ApplicationBase{Signature: LobbySignature, MessageType: MsgGameMessageForTest},
				Payload:     tt.payload,
			}

			encoded, err := Encode(in, tt.key)
			require.NoError(t, err)

			out, err := Decode(encoded, tt.key, LobbySignature)
			require.NoError(t, err)

			assert.Equal(t, in.Base.SequenceID, out.Base.SequenceID)
			assert.Equal(t, in.Application.Signature, out.Application.Signature)
			assert.Equal(t, in.Application.MessageType, out.Application.MessageType)
			assert.Equal(t, tt.payload, out.Payload)
		})
	}
}

// MsgGameMessageForTest avoids importing constants (would create an import
// cycle with a package that might one day import wire for framing helpers).
const MsgGameMessageForTest uint16 = 9

func TestDecodeRejectsSignatureMismatch(t *testing.T) {
	encoded, err := Encode(Frame{Application: ApplicationBase{Signature: ProxySignature}}, DefaultSessionKey)
	require.NoError(t, err)

	_, err = Decode(encoded, DefaultSessionKey, LobbySignature)
	assert.ErrorContains(t, err, "signature mismatch")
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, DefaultSessionKey, LobbySignature)
	assert.ErrorContains(t, err, "too short")
}

func TestDecodeRejectsTamperedChecksum(t *testing.T) {
	encoded, err := Encode(Frame{
		Application: ApplicationBase{Signature: LobbySignature},
		Payload:     []byte("payload"),
	}, DefaultSessionKey)
	require.NoError(t, err)

	// Flip a bit inside the (still obfuscated) checksum field.
	encoded[8] ^= 0xFF

	_, err = Decode(encoded, DefaultSessionKey, LobbySignature)
	assert.ErrorContains(t, err, "checksum mismatch")
}

func TestSequencerMonotonic(t *testing.T) {
	var s Sequencer
	for want := uint32(0); want < 5; want++ {
		assert.Equal(t, want, s.Next())
	}
}

func TestGameMessageRoundTrip(t *testing.T) {
	payload := []byte("deal-the-cards")
	encoded := EncodeGameMessage(GameMessage{GameID: 42, Type: 3}, payload)

	gm, rest, err := DecodeGameMessage(encoded)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), gm.GameID)
	assert.Equal(t, uint16(3), gm.Type)
	assert.Equal(t, payload, rest)
}

func TestDecodeGameMessageRejectsLengthMismatch(t *testing.T) {
	encoded := EncodeGameMessage(GameMessage{GameID: 1}, []byte("abc"))
	encoded[6] = 99 // corrupt the declared length byte
	_, _, err := DecodeGameMessage(encoded)
	assert.Error(t, err)
}
