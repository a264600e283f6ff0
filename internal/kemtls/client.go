package kemtls

import (
	"context"
	"fmt"
	"io"

	"github.com/aussiebroadwan/pqauth/pkg/pqcrypto"
)

// State tracks a handshake's progress. Any protocol failure moves the machine
// to StateAborted permanently; there is no recovery short of a new connection.
type State int

const (
	StateStart State = iota
	StateClientHelloSent
	StateServerHelloReceived
	StateComplete
	StateAborted
)

// Client is the initiating side of a handshake. One Client per connection
// attempt: the ephemeral KEM private key generated for the ClientHello lives
// only here and is discarded with the Client.
type Client struct {
	kem   *pqcrypto.KEM
	state State

	ephemeralPrivateKey []byte
	clientNonce         []byte

	session    *Session
	serverCert *Certificate
}

// NewClient builds a client for the given KEM algorithm. An unrecognised
// algorithm fails here, before any handshake traffic.
func NewClient(kemAlgorithm string) (*Client, error) {
	kem, err := pqcrypto.NewKEM(kemAlgorithm)
	if err != nil {
		return nil, err
	}
	return &Client{kem: kem, state: StateStart, session: &Session{}}, nil
}

// Session returns the derived session, valid once the handshake completed.
func (c *Client) Session() *Session { return c.session }

// ServerCertificate returns the verified peer certificate, set after
// HandleServerHello succeeds.
func (c *Client) ServerCertificate() *Certificate { return c.serverCert }

// CreateClientHello generates the ephemeral KEM keypair and client nonce and
// packages them as the opening message. The private key never leaves the
// Client.
func (c *Client) CreateClientHello() (*Message, error) {
	if c.state != StateStart {
		return nil, fmt.Errorf("%w: client hello already sent", ErrState)
	}

	publicKey, privateKey, err := c.kem.GenerateKeyPair()
	if err != nil {
		return nil, c.abort(err)
	}
	nonce, err := newNonce()
	if err != nil {
		return nil, c.abort(err)
	}

	c.ephemeralPrivateKey = privateKey
	c.clientNonce = nonce

	payload, err := (&clientHelloPayload{
		KEMAlgorithm: c.kem.Name(),
		Nonce:        nonce,
		PublicKey:    publicKey,
	}).encode()
	if err != nil {
		return nil, c.abort(err)
	}

	c.state = StateClientHelloSent
	return &Message{Type: TypeClientHello, Payload: payload}, nil
}

// HandleServerHello decapsulates the server's ciphertext with the ephemeral
// private key, parses and verifies the embedded certificate, and derives the
// session keys. A certificate that does not verify aborts the handshake with
// ErrCertificate; nothing about the session is kept.
func (c *Client) HandleServerHello(msg *Message) error {
	if c.state != StateClientHelloSent {
		return c.abort(fmt.Errorf("%w: server hello in state %d", ErrState, c.state))
	}
	if msg.Type != TypeServerHello {
		return c.abort(fmt.Errorf("%w: expected server_hello, got %s", ErrProtocol, msg.Type))
	}

	hello, err := parseServerHello(msg.Payload)
	if err != nil {
		return c.abort(err)
	}

	sharedSecret, err := c.kem.Decapsulate(hello.Ciphertext, c.ephemeralPrivateKey)
	if err != nil {
		return c.abort(fmt.Errorf("%w: %v", ErrProtocol, err))
	}

	cert, err := ParseCertificate(hello.Certificate)
	if err != nil {
		return c.abort(err)
	}
	if !cert.Verify() {
		return c.abort(fmt.Errorf("%w: server certificate signature did not verify", ErrCertificate))
	}

	if err := c.session.DeriveKeys(sharedSecret, c.clientNonce, hello.Nonce); err != nil {
		return c.abort(err)
	}

	c.serverCert = cert
	c.state = StateServerHelloReceived
	return nil
}

// HandleServerFinished checks the server's transcript digest against our own.
func (c *Client) HandleServerFinished(msg *Message) error {
	if c.state != StateServerHelloReceived {
		return c.abort(fmt.Errorf("%w: server finished in state %d", ErrState, c.state))
	}
	if msg.Type != TypeServerFinished {
		return c.abort(fmt.Errorf("%w: expected server_finished, got %s", ErrProtocol, msg.Type))
	}

	finished, err := parseFinished(msg.Payload)
	if err != nil {
		return c.abort(err)
	}
	if !constantTimeEqual(finished.TranscriptHash, c.session.transcriptHash()) {
		return c.abort(fmt.Errorf("%w: transcript hash mismatch", ErrProtocol))
	}
	return nil
}

// CreateClientFinished packages our transcript digest. It requires the fully
// derived session; calling it earlier is a usage error.
func (c *Client) CreateClientFinished() (*Message, error) {
	if !c.session.Ready() {
		return nil, fmt.Errorf("%w: session keys not derived", ErrState)
	}

	payload, err := (&finishedPayload{TranscriptHash: c.session.transcriptHash()}).encode()
	if err != nil {
		return nil, err
	}

	c.state = StateComplete
	return &Message{Type: TypeClientFinished, Payload: payload}, nil
}

// Handshake drives the full client side of the exchange over rw. The caller
// owns the connection and any read/write deadlines; ctx is checked between
// protocol steps so an abandoned handshake does not keep going.
func (c *Client) Handshake(ctx context.Context, rw io.ReadWriter) (*Session, error) {
	hello, err := c.CreateClientHello()
	if err != nil {
		return nil, err
	}
	if err := WriteMessage(rw, hello); err != nil {
		return nil, c.abort(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, c.abort(err)
	}
	serverHello, err := ReadMessage(rw)
	if err != nil {
		return nil, c.abort(err)
	}
	if err := c.HandleServerHello(serverHello); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, c.abort(err)
	}
	serverFinished, err := ReadMessage(rw)
	if err != nil {
		return nil, c.abort(err)
	}
	if err := c.HandleServerFinished(serverFinished); err != nil {
		return nil, err
	}

	clientFinished, err := c.CreateClientFinished()
	if err != nil {
		return nil, err
	}
	if err := WriteMessage(rw, clientFinished); err != nil {
		return nil, c.abort(err)
	}

	return c.session, nil
}

func (c *Client) abort(err error) error {
	c.state = StateAborted
	c.session = &Session{}
	c.ephemeralPrivateKey = nil
	return err
}
