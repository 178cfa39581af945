package model

import "time"

// Session is the server-side row backing an issued token. A token is honored
// only while its session row is active and expire_at is in the future.
type Session struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"-"`
	Active    bool      `json:"active"`
	ExpireAt  int64     `json:"expire_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the stored expiry is at or before the given unix time.
func (s *Session) Expired(now int64) bool {
	return s.ExpireAt <= now
}
