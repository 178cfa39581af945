package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	err := scanner.Scan(&s.ID, &s.SessionID, &s.UserID, &s.Token, &s.Active, &s.ExpireAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const sessionCols = `id, session_id, user_id, token, active, expire_at, created_at`

// NewSessionID returns a fresh random session identifier (UUIDv4, 128-bit).
func NewSessionID() string {
	return uuid.NewString()
}

// Create persists a session row for an issued token. ExpireAt must equal the
// token's exp claim; the ledger row and the claim expire together.
func (s *SessionStore) Create(userID int64, sessionID, token string, expireAt int64) (*model.Session, error) {
	result, err := s.db.Exec(
		`INSERT INTO session (session_id, user_id, token, active, expire_at) VALUES (?, ?, ?, 1, ?)`,
		sessionID, userID, token, expireAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM session WHERE id = ?`, id)
	return scanSession(row)
}

// GetActive returns the session for the given identifier only while it is
// active and its stored expiry is in the future. Revoked, expired, and
// unknown sessions all come back nil.
func (s *SessionStore) GetActive(sessionID string) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionCols+` FROM session WHERE session_id = ? AND active = 1 AND expire_at > ?`,
		sessionID, time.Now().Unix(),
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Revoke marks the session inactive. The row stays; a still-valid token
// referencing it is rejected from the next request on.
func (s *SessionStore) Revoke(sessionID string) error {
	_, err := s.db.Exec(`UPDATE session SET active = 0 WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// PurgeExpired removes rows whose stored expiry has passed. Runs from the
// background cleanup loop, never from request handling.
func (s *SessionStore) PurgeExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM session WHERE expire_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}
