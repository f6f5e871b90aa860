package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spotkit/internal/auth"
	"github.com/desertthunder/spotkit/internal/shared"
)

// RefreshEvent is one recorded renewal attempt.
type RefreshEvent struct {
	ID         string
	ClientID   string
	Succeeded  bool
	Error      string
	OccurredAt time.Time
}

// TokenRepository persists [auth.TokenRecord] values per client ID.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save inserts or replaces the token for clientID. An empty refresh token keeps the stored one.
func (r *TokenRepository) Save(clientID string, rec auth.TokenRecord) error {
	if clientID == "" {
		return fmt.Errorf("%w: client id", shared.ErrMissingArgument)
	}
	if rec.AccessToken == "" {
		return fmt.Errorf("%w: access token", shared.ErrMissingArgument)
	}

	query := `
		INSERT INTO tokens (id, client_id, access_token, refresh_token, token_type, scope, granted_at, expires_in_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = COALESCE(NULLIF(excluded.refresh_token, ''), tokens.refresh_token),
			token_type = excluded.token_type,
			scope = excluded.scope,
			granted_at = excluded.granted_at,
			expires_in_seconds = excluded.expires_in_seconds,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	_, err := r.db.Exec(query,
		shared.GenerateID(), clientID, rec.AccessToken, rec.RefreshToken, rec.TokenType, rec.Scope,
		rec.GrantTime.UTC(), int64(rec.ExpiresIn/time.Second), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Load returns the stored token for clientID, or [shared.ErrTokenNotFound].
func (r *TokenRepository) Load(clientID string) (auth.TokenRecord, error) {
	query := `
		SELECT access_token, refresh_token, token_type, scope, granted_at, expires_in_seconds
		FROM tokens
		WHERE client_id = ?
	`

	var (
		rec       auth.TokenRecord
		grantedAt time.Time
		expiresIn int64
	)
	err := r.db.QueryRow(query, clientID).Scan(&rec.AccessToken, &rec.RefreshToken, &rec.TokenType, &rec.Scope, &grantedAt, &expiresIn)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.TokenRecord{}, fmt.Errorf("%w: %s", shared.ErrTokenNotFound, clientID)
	}
	if err != nil {
		return auth.TokenRecord{}, fmt.Errorf("failed to query token: %w", err)
	}

	rec.GrantTime = grantedAt
	rec.ExpiresIn = time.Duration(expiresIn) * time.Second
	return rec, nil
}

// Delete removes the token for clientID and its refresh history.
func (r *TokenRepository) Delete(clientID string) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM tokens WHERE client_id = ?", clientID)
		if err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		} else if n == 0 {
			return fmt.Errorf("%w: %s", shared.ErrTokenNotFound, clientID)
		}

		if _, err := tx.Exec("DELETE FROM refresh_events WHERE client_id = ?", clientID); err != nil {
			return fmt.Errorf("failed to delete refresh events: %w", err)
		}
		return nil
	})
}

// RecordRefresh appends a renewal attempt. A nil cause records a success.
func (r *TokenRepository) RecordRefresh(clientID string, cause error) error {
	var msg string
	if cause != nil {
		msg = cause.Error()
	}

	query := `INSERT INTO refresh_events (id, client_id, succeeded, error, occurred_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.Exec(query, shared.GenerateID(), clientID, cause == nil, msg, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record refresh: %w", err)
	}
	return nil
}

// RecentEvents returns up to limit refresh events for clientID, newest first.
func (r *TokenRepository) RecentEvents(clientID string, limit int) ([]RefreshEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, client_id, succeeded, error, occurred_at
		FROM refresh_events
		WHERE client_id = ?
		ORDER BY occurred_at DESC, rowid DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh events: %w", err)
	}
	defer rows.Close()

	var events []RefreshEvent
	for rows.Next() {
		var e RefreshEvent
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Succeeded, &e.Error, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan refresh event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh events: %w", err)
	}
	return events, nil
}

// PruneEvents keeps the newest keep events for clientID and deletes the rest.
func (r *TokenRepository) PruneEvents(clientID string, keep int) (int64, error) {
	query := `
		DELETE FROM refresh_events
		WHERE client_id = ? AND id NOT IN (
			SELECT id FROM refresh_events WHERE client_id = ? ORDER BY occurred_at DESC, rowid DESC LIMIT ?
		)
	`

	result, err := r.db.Exec(query, clientID, clientID, max(keep, 0))
	if err != nil {
		return 0, fmt.Errorf("failed to prune refresh events: %w", err)
	}
	return result.RowsAffected()
}
