package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/oauth2"
)

// ProviderGoogle labels tokens issued by Google's OAuth2 endpoint.
const ProviderGoogle = "google"

// CredentialRepository persists a single OAuth2 token in the credentials table.
type CredentialRepository struct {
	db       *sql.DB
	provider string
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db, provider: ProviderGoogle}
}

// Load returns the stored token, or [shared.ErrNoToken] when none is saved.
func (r *CredentialRepository) Load(ctx context.Context) (*oauth2.Token, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT token FROM credentials WHERE id = 1").Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	}
	return &token, nil
}

// Save upserts the token into the single credentials row.
func (r *CredentialRepository) Save(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", shared.ErrInvalidToken)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	var expiresAt sql.NullTime
	if !token.Expiry.IsZero() {
		expiresAt = sql.NullTime{Time: token.Expiry.UTC(), Valid: true}
	}

	query := `
		INSERT INTO credentials (id, provider, token, expires_at, updated_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider = excluded.provider,
			token = excluded.token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, r.provider, string(data), expiresAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Clear deletes the stored token. Clearing an empty table is not an error.
func (r *CredentialRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// UpdatedAt reports when the token was last written.
func (r *CredentialRepository) UpdatedAt(ctx context.Context) (time.Time, error) {
	var updated time.Time
	err := r.db.QueryRowContext(ctx, "SELECT updated_at FROM credentials WHERE id = 1").Scan(&updated)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, shared.ErrNoToken
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read credentials: %w", err)
	}
	return updated, nil
}
