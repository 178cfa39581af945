package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/model"
	"taskboard/internal/store"
)

type UserHandler struct {
	users       *store.UserStore
	sessions    *store.SessionStore
	jwtSecret   []byte
	jwtLifetime time.Duration
	pwMinLength int
	bcryptCost  int
	dev         bool
	logger      *slog.Logger
}

func NewUserHandler(us *store.UserStore, ss *store.SessionStore, jwtSecret []byte, jwtLifetime time.Duration, pwMinLength, bcryptCost int, dev bool, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:       us,
		sessions:    ss,
		jwtSecret:   jwtSecret,
		jwtLifetime: jwtLifetime,
		pwMinLength: pwMinLength,
		bcryptCost:  bcryptCost,
		dev:         dev,
		logger:      logger,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a normal-user account. Role is never caller-settable.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, h.logger, h.dev, apperr.Validation("All fields are required."))
		return
	}
	if len(req.Password) < h.pwMinLength {
		writeError(w, h.logger, h.dev, apperr.Validation(
			fmt.Sprintf("Password must be at least %d characters long.", h.pwMinLength)))
		return
	}
	if len(req.Username) > 40 {
		writeError(w, h.logger, h.dev, apperr.Validation("Username must be at most 40 characters long."))
		return
	}

	taken, err := h.users.UsernameExists(req.Username)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	if taken {
		writeError(w, h.logger, h.dev, apperr.Validation("The username already exists."))
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	user, err := h.users.Create(req.Username, hash, model.RoleUser)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
		},
	})
}

// Auth issues a token for valid credentials. Unknown username and wrong
// password are indistinguishable to the caller. Prior sessions are left
// untouched.
func (h *UserHandler) Auth(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, h.logger, h.dev, apperr.Validation("All fields are required."))
		return
	}

	invalid := apperr.Authentication("Invalid credentials.")

	user, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("auth lookup", "error", err)
		writeError(w, h.logger, h.dev, invalid)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, h.logger, h.dev, invalid)
		return
	}

	sessionID := store.NewSessionID()
	token, claims, err := auth.GenerateToken(user, sessionID, h.jwtSecret, h.jwtLifetime)
	if err != nil {
		h.logger.Error("sign token", "error", err)
		writeError(w, h.logger, h.dev, invalid)
		return
	}

	// The ledger row carries the token's own exp so the gate's database
	// check and the crypto check agree on expiry.
	if _, err := h.sessions.Create(user.ID, sessionID, token, claims.ExpiresAt.Unix()); err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, h.logger, h.dev, invalid)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"auth_token": map[string]any{
			"token":      token,
			"expires_in": claims.ExpiresAt.Unix() - time.Now().Unix(),
		},
		"user": map[string]any{
			"username": user.Username,
			"role":     user.Role.String(),
		},
	})
}

// Logout burns the caller's session: the row goes inactive and the token is
// rejected from the next request on, expiry claim notwithstanding.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, h.logger, h.dev, apperr.Authentication("Unauthorized."))
		return
	}
	if err := h.sessions.Revoke(ac.SessionID); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
