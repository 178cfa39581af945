package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/database"
	"taskboard/internal/model"
	"taskboard/internal/store"
)

var testSecret = []byte("middleware-test-secret")

func setupGate(t *testing.T) (*sql.DB, *store.SessionStore, http.Handler) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions := store.NewSessionStore(db)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); !ok {
			t.Error("handler reached without auth context")
		}
		w.WriteHeader(http.StatusOK)
	})
	return db, sessions, RequireAuth(testSecret, sessions)(inner)
}

func issueToken(t *testing.T, db *sql.DB, sessions *store.SessionStore, role model.Role, lifetime time.Duration) string {
	t.Helper()
	us := store.NewUserStore(db)
	u, err := us.Create("user-"+role.String(), "hash", role)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sid := store.NewSessionID()
	token, claims, err := auth.GenerateToken(u, sid, testSecret, lifetime)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := sessions.Create(u.ID, sid, token, claims.ExpiresAt.Unix()); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return token
}

func TestGateMissingHeader(t *testing.T) {
	_, _, gate := setupGate(t)

	req := httptest.NewRequest(http.MethodGet, "/project", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGateMalformedHeader(t *testing.T) {
	_, _, gate := setupGate(t)

	for _, header := range []string{"bearer", "bearer abc", "bearer a.b", "token a.b.c"} {
		req := httptest.NewRequest(http.MethodGet, "/project", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("header %q: status = %d, want 400", header, rec.Code)
		}
	}
}

func TestGateBadSignature(t *testing.T) {
	db, sessions, gate := setupGate(t)

	us := store.NewUserStore(db)
	u, _ := us.Create("mallory", "hash", model.RoleUser)
	sid := store.NewSessionID()
	token, claims, err := auth.GenerateToken(u, sid, []byte("some-other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := sessions.Create(u.ID, sid, token, claims.ExpiresAt.Unix()); err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/project", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGateValidTokenAdmitted(t *testing.T) {
	db, sessions, gate := setupGate(t)
	token := issueToken(t, db, sessions, model.RoleUser, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/project", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGateRevokedSessionRejected(t *testing.T) {
	db, sessions, gate := setupGate(t)
	token := issueToken(t, db, sessions, model.RoleUser, time.Hour)

	// Valid before revocation.
	req := httptest.NewRequest(http.MethodGet, "/project", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("pre-revocation status = %d, want 200", rec.Code)
	}

	claims, err := auth.VerifyToken(token, testSecret)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := sessions.Revoke(claims.SessionID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	// The token still verifies cryptographically, but the gate must now
	// reject it on the ledger check.
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("post-revocation status = %d, want 401", rec.Code)
	}
}

func TestGateExpiredStoredSessionRejected(t *testing.T) {
	db, sessions, gate := setupGate(t)

	// Token is cryptographically fine for an hour, but the ledger row says
	// it already expired.
	us := store.NewUserStore(db)
	u, _ := us.Create("early", "hash", model.RoleUser)
	sid := store.NewSessionID()
	token, _, err := auth.GenerateToken(u, sid, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := sessions.Create(u.ID, sid, token, time.Now().Add(-time.Minute).Unix()); err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/project", nil)
	req.Header.Set("Authorization", "bearer "+token)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGateHeaderEscapeCheck(t *testing.T) {
	_, _, gate := setupGate(t)

	req := httptest.NewRequest(http.MethodGet, "/project", nil)
	req.Header.Set("Authorization", `bearer <script>.b.c`)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate := RequireRole(model.RoleAdministrator, model.RoleEditor)(ok)

	tests := []struct {
		role model.Role
		want int
	}{
		{model.RoleAdministrator, http.StatusOK},
		{model.RoleEditor, http.StatusOK},
		{model.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/project", nil)
		ctx := auth.WithAuth(req.Context(), auth.AuthContext{UserID: 1, Role: tt.role})
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req.WithContext(ctx))

		if rec.Code != tt.want {
			t.Errorf("role %s: status = %d, want %d", tt.role, rec.Code, tt.want)
		}
	}
}

func TestRequireRoleNoContext(t *testing.T) {
	gate := RequireRole(model.RoleAdministrator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/project", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
