// Package kemtls implements a TLS-like handshake whose authentication rests on
// a key-encapsulation mechanism instead of a signature over the transcript.
// The four-message exchange (ClientHello, ServerHello, ServerFinished,
// ClientFinished) yields a per-connection session with symmetric keys derived
// on both sides from the encapsulated shared secret.
//
// The package owns the handshake state machines and the wire framing only.
// Socket dialing, timeouts and what happens to the derived keys afterwards are
// the caller's business.
package kemtls

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MessageType identifies a handshake frame.
type MessageType uint8

const (
	TypeClientHello       MessageType = 0x01
	TypeServerHello       MessageType = 0x02
	TypeServerCertificate MessageType = 0x03
	TypeServerKEMTLSAuth  MessageType = 0x04
	TypeClientFinished    MessageType = 0x05
	TypeServerFinished    MessageType = 0x06
	TypeEncryptedData     MessageType = 0x10
	TypeAlert             MessageType = 0xFF
)

func (t MessageType) String() string {
	switch t {
	case TypeClientHello:
		return "client_hello"
	case TypeServerHello:
		return "server_hello"
	case TypeServerCertificate:
		return "server_certificate"
	case TypeServerKEMTLSAuth:
		return "server_kemtls_auth"
	case TypeClientFinished:
		return "client_finished"
	case TypeServerFinished:
		return "server_finished"
	case TypeEncryptedData:
		return "encrypted_data"
	case TypeAlert:
		return "alert"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(t))
	}
}

// MaxPayloadSize bounds a single frame. Certificates carrying ML-DSA-87 keys
// and signatures stay well under this.
const MaxPayloadSize = 1 << 20

// headerSize is type (1 byte) plus big-endian payload length (4 bytes).
const headerSize = 5

// Message is one handshake frame: type, length, payload.
type Message struct {
	Type    MessageType
	Payload []byte
}

// Encode serialises the frame as type(1) ‖ length(4, big-endian) ‖ payload.
func (m *Message) Encode() []byte {
	buf := make([]byte, headerSize+len(m.Payload))
	buf[0] = byte(m.Type)
	binary.BigEndian.PutUint32(buf[1:headerSize], uint32(len(m.Payload)))
	copy(buf[headerSize:], m.Payload)
	return buf
}

// WriteMessage writes one frame to w.
func WriteMessage(w io.Writer, m *Message) error {
	if len(m.Payload) > MaxPayloadSize {
		return ErrMessageTooLarge
	}
	if _, err := w.Write(m.Encode()); err != nil {
		return fmt.Errorf("kemtls: write %s: %w", m.Type, err)
	}
	return nil
}

// ReadMessage reads exactly one frame from r, enforcing MaxPayloadSize before
// allocating the payload buffer.
func ReadMessage(r io.Reader) (*Message, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("kemtls: read frame header: %w", err)
	}

	length := binary.BigEndian.Uint32(header[1:])
	if length > MaxPayloadSize {
		return nil, ErrMessageTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("kemtls: read frame payload: %w", err)
	}

	return &Message{Type: MessageType(header[0]), Payload: payload}, nil
}

// Payload fields are length-prefixed byte strings (uint16, big-endian) so the
// wire format stays unambiguous and testable byte-for-byte without dragging a
// text serialisation format into the handshake.

const maxFieldSize = 1<<16 - 1

func appendField(buf, field []byte) ([]byte, error) {
	if len(field) > maxFieldSize {
		return nil, fmt.Errorf("%w: field of %d bytes", ErrMessageTooLarge, len(field))
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(field)))
	return append(buf, field...), nil
}

// fieldReader consumes length-prefixed fields from a payload in order.
type fieldReader struct {
	buf []byte
}

func (fr *fieldReader) next() ([]byte, error) {
	if len(fr.buf) < 2 {
		return nil, fmt.Errorf("%w: truncated field length", ErrProtocol)
	}
	n := int(binary.BigEndian.Uint16(fr.buf))
	fr.buf = fr.buf[2:]
	if len(fr.buf) < n {
		return nil, fmt.Errorf("%w: truncated field body", ErrProtocol)
	}
	field := fr.buf[:n]
	fr.buf = fr.buf[n:]
	return field, nil
}

// fixed consumes exactly n unprefixed bytes (used for nonces and digests).
func (fr *fieldReader) fixed(n int) ([]byte, error) {
	if len(fr.buf) < n {
		return nil, fmt.Errorf("%w: truncated fixed field", ErrProtocol)
	}
	field := fr.buf[:n]
	fr.buf = fr.buf[n:]
	return field, nil
}

func (fr *fieldReader) done() error {
	if len(fr.buf) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrProtocol, len(fr.buf))
	}
	return nil
}

// clientHelloPayload is kem_alg ‖ nonce(16) ‖ public_key, the first two fields
// length-prefixed, the nonce fixed-width.
type clientHelloPayload struct {
	KEMAlgorithm string
	Nonce        []byte
	PublicKey    []byte
}

func (p *clientHelloPayload) encode() ([]byte, error) {
	if len(p.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: client nonce must be %d bytes", ErrState, NonceSize)
	}
	buf, err := appendField(nil, []byte(p.KEMAlgorithm))
	if err != nil {
		return nil, err
	}
	buf = append(buf, p.Nonce...)
	return appendField(buf, p.PublicKey)
}

func parseClientHello(payload []byte) (*clientHelloPayload, error) {
	fr := fieldReader{buf: payload}

	alg, err := fr.next()
	if err != nil {
		return nil, err
	}
	nonce, err := fr.fixed(NonceSize)
	if err != nil {
		return nil, err
	}
	pk, err := fr.next()
	if err != nil {
		return nil, err
	}
	if err := fr.done(); err != nil {
		return nil, err
	}

	return &clientHelloPayload{
		KEMAlgorithm: string(alg),
		Nonce:        nonce,
		PublicKey:    pk,
	}, nil
}

// serverHelloPayload is nonce(16) ‖ ciphertext ‖ certificate.
type serverHelloPayload struct {
	Nonce       []byte
	Ciphertext  []byte
	Certificate []byte
}

func (p *serverHelloPayload) encode() ([]byte, error) {
	if len(p.Nonce) != NonceSize {
		return nil, fmt.Errorf("%w: server nonce must be %d bytes", ErrState, NonceSize)
	}
	buf := make([]byte, 0, NonceSize+4+len(p.Ciphertext)+len(p.Certificate))
	buf = append(buf, p.Nonce...)
	buf, err := appendField(buf, p.Ciphertext)
	if err != nil {
		return nil, err
	}
	return appendField(buf, p.Certificate)
}

func parseServerHello(payload []byte) (*serverHelloPayload, error) {
	fr := fieldReader{buf: payload}

	nonce, err := fr.fixed(NonceSize)
	if err != nil {
		return nil, err
	}
	ct, err := fr.next()
	if err != nil {
		return nil, err
	}
	cert, err := fr.next()
	if err != nil {
		return nil, err
	}
	if err := fr.done(); err != nil {
		return nil, err
	}

	return &serverHelloPayload{Nonce: nonce, Ciphertext: ct, Certificate: cert}, nil
}

// finishedPayload carries the 32-byte transcript digest.
type finishedPayload struct {
	TranscriptHash []byte
}

func (p *finishedPayload) encode() ([]byte, error) {
	if len(p.TranscriptHash) != transcriptHashSize {
		return nil, fmt.Errorf("%w: transcript hash must be %d bytes", ErrState, transcriptHashSize)
	}
	return append([]byte(nil), p.TranscriptHash...), nil
}

func parseFinished(payload []byte) (*finishedPayload, error) {
	fr := fieldReader{buf: payload}

	hash, err := fr.fixed(transcriptHashSize)
	if err != nil {
		return nil, err
	}
	if err := fr.done(); err != nil {
		return nil, err
	}
	return &finishedPayload{TranscriptHash: hash}, nil
}
