package kemtls

import "errors"

var (
	// ErrProtocol reports a message of the wrong type or out of protocol
	// order. It is fatal to the handshake; the connection must be
	// re-established from scratch.
	ErrProtocol = errors.New("kemtls: protocol violation")

	// ErrCertificate reports a certificate whose embedded signature does not
	// verify. Never retried.
	ErrCertificate = errors.New("kemtls: invalid certificate")

	// ErrState reports an operation invoked before its prerequisite state was
	// reached (e.g. building a Finished message with no derived keys). This is
	// a usage error, not a peer failure.
	ErrState = errors.New("kemtls: invalid handshake state")

	// ErrMessageTooLarge reports a frame whose declared payload length exceeds
	// MaxPayloadSize.
	ErrMessageTooLarge = errors.New("kemtls: message too large")
)
