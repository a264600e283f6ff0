package kemtls

import (
	"context"
	"fmt"
	"io"
)

// Server is the responding side of a handshake. One Server per connection; the
// long-lived Identity it holds is shared and read-only.
type Server struct {
	identity *Identity
	state    State

	clientNonce []byte
	serverNonce []byte
	session     *Session
}

// NewServer builds a per-connection handshake server around a shared identity.
func NewServer(identity *Identity) *Server {
	return &Server{identity: identity, state: StateStart, session: &Session{}}
}

// Session returns the derived session, valid once the handshake completed.
func (s *Server) Session() *Session { return s.session }

// HandleClientHello validates the opening message and extracts the peer's
// ephemeral public key and nonce. A KEM algorithm we do not advertise is
// rejected before any secret is derived.
func (s *Server) HandleClientHello(msg *Message) ([]byte, error) {
	if s.state != StateStart {
		return nil, s.abort(fmt.Errorf("%w: client hello in state %d", ErrState, s.state))
	}
	if msg.Type != TypeClientHello {
		return nil, s.abort(fmt.Errorf("%w: expected client_hello, got %s", ErrProtocol, msg.Type))
	}

	hello, err := parseClientHello(msg.Payload)
	if err != nil {
		return nil, s.abort(err)
	}
	if hello.KEMAlgorithm != s.identity.KEMAlgorithm() {
		return nil, s.abort(fmt.Errorf("%w: client offered %s, server requires %s",
			ErrProtocol, hello.KEMAlgorithm, s.identity.KEMAlgorithm()))
	}

	s.clientNonce = hello.Nonce
	s.state = StateClientHelloSent
	return hello.PublicKey, nil
}

// CreateServerHello encapsulates against the client's ephemeral public key,
// derives the session keys and emits ciphertext, server nonce and certificate.
func (s *Server) CreateServerHello(clientPublicKey []byte) (*Message, error) {
	if s.state != StateClientHelloSent {
		return nil, s.abort(fmt.Errorf("%w: server hello in state %d", ErrState, s.state))
	}

	ciphertext, sharedSecret, err := s.identity.kem.Encapsulate(clientPublicKey)
	if err != nil {
		return nil, s.abort(fmt.Errorf("%w: %v", ErrProtocol, err))
	}
	nonce, err := newNonce()
	if err != nil {
		return nil, s.abort(err)
	}
	s.serverNonce = nonce

	if err := s.session.DeriveKeys(sharedSecret, s.clientNonce, s.serverNonce); err != nil {
		return nil, s.abort(err)
	}

	certBytes, err := s.identity.Certificate.Marshal()
	if err != nil {
		return nil, s.abort(err)
	}

	payload, err := (&serverHelloPayload{
		Nonce:       nonce,
		Ciphertext:  ciphertext,
		Certificate: certBytes,
	}).encode()
	if err != nil {
		return nil, s.abort(err)
	}

	s.state = StateServerHelloReceived
	return &Message{Type: TypeServerHello, Payload: payload}, nil
}

// CreateServerFinished packages the server's transcript digest. Requires fully
// derived session keys.
func (s *Server) CreateServerFinished() (*Message, error) {
	if !s.session.Ready() {
		return nil, fmt.Errorf("%w: session keys not derived", ErrState)
	}

	payload, err := (&finishedPayload{TranscriptHash: s.session.transcriptHash()}).encode()
	if err != nil {
		return nil, err
	}
	return &Message{Type: TypeServerFinished, Payload: payload}, nil
}

// HandleClientFinished checks the client's transcript digest and completes the
// handshake.
func (s *Server) HandleClientFinished(msg *Message) error {
	if s.state != StateServerHelloReceived {
		return s.abort(fmt.Errorf("%w: client finished in state %d", ErrState, s.state))
	}
	if msg.Type != TypeClientFinished {
		return s.abort(fmt.Errorf("%w: expected client_finished, got %s", ErrProtocol, msg.Type))
	}

	finished, err := parseFinished(msg.Payload)
	if err != nil {
		return s.abort(err)
	}
	if !constantTimeEqual(finished.TranscriptHash, s.session.transcriptHash()) {
		return s.abort(fmt.Errorf("%w: transcript hash mismatch", ErrProtocol))
	}

	s.state = StateComplete
	return nil
}

// Handshake drives the full server side of the exchange over rw.
func (s *Server) Handshake(ctx context.Context, rw io.ReadWriter) (*Session, error) {
	clientHello, err := ReadMessage(rw)
	if err != nil {
		return nil, s.abort(err)
	}
	clientPublicKey, err := s.HandleClientHello(clientHello)
	if err != nil {
		return nil, err
	}

	serverHello, err := s.CreateServerHello(clientPublicKey)
	if err != nil {
		return nil, err
	}
	if err := WriteMessage(rw, serverHello); err != nil {
		return nil, s.abort(err)
	}

	serverFinished, err := s.CreateServerFinished()
	if err != nil {
		return nil, err
	}
	if err := WriteMessage(rw, serverFinished); err != nil {
		return nil, s.abort(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, s.abort(err)
	}
	clientFinished, err := ReadMessage(rw)
	if err != nil {
		return nil, s.abort(err)
	}
	if err := s.HandleClientFinished(clientFinished); err != nil {
		return nil, err
	}

	return s.session, nil
}

func (s *Server) abort(err error) error {
	s.state = StateAborted
	s.session = &Session{}
	return err
}
