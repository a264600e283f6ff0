package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/pqauth/internal/auth/domain"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, name, secret_hash, redirect_uris, grant_types, response_types, scopes, protected, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (domain.Client, error) {
	var c domain.Client
	var uris, grants, responses, scopes string
	var created, updated int64
	err := row.Scan(
		&c.ID, &c.Name, &c.SecretHash, &uris, &grants, &responses, &scopes,
		&c.Protected, &created, &updated,
	)
	if err != nil {
		return domain.Client{}, err
	}
	c.RedirectURIs = splitScopes(uris)
	c.GrantTypes = splitScopes(grants)
	c.ResponseTypes = splitScopes(responses)
	c.Scopes = splitScopes(scopes)
	c.CreatedAt = fromUnix(created)
	c.UpdatedAt = fromUnix(updated)
	return c, nil
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	now := toUnix(time.Now())
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, secret_hash, redirect_uris, grant_types, response_types, scopes, protected, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.SecretHash,
		joinScopes(c.RedirectURIs), joinScopes(c.GrantTypes), joinScopes(c.ResponseTypes), joinScopes(c.Scopes),
		c.Protected, now, now)
	return mapConstraint(err)
}

func (r *clientsRepo) UpdateClientSecretHash(ctx context.Context, clientID, secretHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE clients SET secret_hash = ?, updated_at = ? WHERE id = ?`,
		secretHash, toUnix(time.Now()), clientID)
	return err
}

func (r *clientsRepo) UpdateClientRedirectURIs(ctx context.Context, clientID string, uris []string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE clients SET redirect_uris = ?, updated_at = ? WHERE id = ?`,
		joinScopes(uris), toUnix(time.Now()), clientID)
	return err
}

func (r *clientsRepo) DeleteClient(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM clients WHERE id = ? AND protected = 0`, clientID)
	return err
}

func (r *clientsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
