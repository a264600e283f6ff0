package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to actively stop people from accidentally doing transactions
// within transactions.
type Store interface {
	Users() Users
	Clients() Clients
	Sessions() Sessions
	AuthorizationCodes() AuthorizationCodes
	AccessTokens() AccessTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., code
	// redemption). The caller MUST call Commit() or Rollback() on the
	// returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during interactive login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// DeleteUser cascades to sessions and tokens (per schema).
	DeleteUser(ctx context.Context, userID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Clients interface {
	// GetClientByID fetches a client when validating authorization and
	// token requests.
	GetClientByID(ctx context.Context, id string) (domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]domain.Client, error)

	// CreateClient inserts a new client (id is ULID).
	CreateClient(ctx context.Context, c domain.Client) error

	UpdateClientSecretHash(ctx context.Context, clientID, secretHash string) error
	UpdateClientRedirectURIs(ctx context.Context, clientID string, uris []string) error

	// DeleteClient cascades to authorization_codes and access_tokens (per schema).
	DeleteClient(ctx context.Context, clientID string) error

	// IsEmpty returns true if there are no clients.
	IsEmpty(ctx context.Context) (bool, error)
}

type Sessions interface {
	// CreateSession stores a fresh login session.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash resolves a cookie fingerprint to its session.
	// Expired sessions are not returned.
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// DeleteSession removes a session (logout).
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context) error
}

type AuthorizationCodes interface {
	// CreateAuthorizationCode stores a freshly minted authorization code.
	CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error

	// GetAuthorizationCodeByHash fetches a code by its hashed value when redeeming.
	GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error)

	// ConsumeAuthorizationCode marks a code used if and only if it is still
	// unused. Returns ErrNotFound when the code was already consumed, so a
	// concurrent double redemption loses cleanly.
	ConsumeAuthorizationCode(ctx context.Context, id string) error

	// DeleteExpiredAuthorizationCodes removes any codes that are no longer valid.
	DeleteExpiredAuthorizationCodes(ctx context.Context) error
}

type AccessTokens interface {
	// CreateAccessToken stores a new access token record.
	CreateAccessToken(ctx context.Context, t domain.AccessToken) error

	// GetAccessTokenByHash returns a live (unrevoked, unexpired) token by
	// its fingerprint.
	GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error)

	// RevokeAccessToken flips revoked=1.
	RevokeAccessToken(ctx context.Context, hash string) error

	// RevokeAllUserClientAccessTokens bulk revocation for a user+client pair
	// (e.g., password reset).
	RevokeAllUserClientAccessTokens(ctx context.Context, userID, clientID string) error

	// DeleteExpiredAccessTokens is housekeeping.
	DeleteExpiredAccessTokens(ctx context.Context) error
}
