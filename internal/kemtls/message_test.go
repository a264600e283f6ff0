package kemtls

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageEncodeIsByteExact(t *testing.T) {
	t.Parallel()

	msg := &Message{Type: TypeClientHello, Payload: []byte("payload")}
	encoded := msg.Encode()

	require.Equal(t, byte(0x01), encoded[0])
	require.Equal(t, uint32(7), binary.BigEndian.Uint32(encoded[1:5]))
	require.Equal(t, []byte("payload"), encoded[5:])
}

func TestReadWriteMessageRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	msg := &Message{Type: TypeServerHello, Payload: []byte{0xde, 0xad, 0xbe, 0xef}}
	require.NoError(t, WriteMessage(&buf, msg))

	got, err := ReadMessage(&buf)
	require.NoError(t, err)
	require.Equal(t, msg.Type, got.Type)
	require.Equal(t, msg.Payload, got.Payload)
}

func TestReadMessageRejectsOversizedFrame(t *testing.T) {
	t.Parallel()

	header := make([]byte, headerSize)
	header[0] = byte(TypeEncryptedData)
	binary.BigEndian.PutUint32(header[1:], MaxPayloadSize+1)

	_, err := ReadMessage(bytes.NewReader(header))
	require.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestReadMessageRejectsTruncatedFrame(t *testing.T) {
	t.Parallel()

	msg := &Message{Type: TypeClientFinished, Payload: make([]byte, 32)}
	encoded := msg.Encode()

	_, err := ReadMessage(bytes.NewReader(encoded[:len(encoded)-5]))
	require.Error(t, err)
}

func TestClientHelloPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	in := &clientHelloPayload{
		KEMAlgorithm: "ML-KEM-768",
		Nonce:        bytes.Repeat([]byte{0xab}, NonceSize),
		PublicKey:    bytes.Repeat([]byte{0x42}, 1184),
	}

	encoded, err := in.encode()
	require.NoError(t, err)

	out, err := parseClientHello(encoded)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestServerHelloPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	in := &serverHelloPayload{
		Nonce:       bytes.Repeat([]byte{0x01}, NonceSize),
		Ciphertext:  bytes.Repeat([]byte{0x02}, 1088),
		Certificate: []byte(`{"subject":"CN=localhost"}`),
	}

	encoded, err := in.encode()
	require.NoError(t, err)

	out, err := parseServerHello(encoded)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestParsePayloadRejectsTrailingBytes(t *testing.T) {
	t.Parallel()

	in := &finishedPayload{TranscriptHash: bytes.Repeat([]byte{0x11}, transcriptHashSize)}
	encoded, err := in.encode()
	require.NoError(t, err)

	_, err = parseFinished(append(encoded, 0x00))
	require.ErrorIs(t, err, ErrProtocol)
}

func TestParseClientHelloRejectsTruncatedPayload(t *testing.T) {
	t.Parallel()

	in := &clientHelloPayload{
		KEMAlgorithm: "ML-KEM-512",
		Nonce:        bytes.Repeat([]byte{0x07}, NonceSize),
		PublicKey:    bytes.Repeat([]byte{0x08}, 800),
	}
	encoded, err := in.encode()
	require.NoError(t, err)

	_, err = parseClientHello(encoded[:len(encoded)-1])
	require.ErrorIs(t, err, ErrProtocol)
}
