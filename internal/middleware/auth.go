package middleware

import (
	"encoding/json"
	"html"
	"net/http"

	"taskboard/internal/auth"
	"taskboard/internal/model"
	"taskboard/internal/store"
)

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message},
	})
}

// RequireAuth is the token gate. A request is admitted only when all of the
// following hold, checked in order:
//
//  1. an Authorization header is present (absence is its own failure),
//  2. it matches the bearer <a.b.c> shape,
//  3. the token's signature and expiry claim verify under the configured secret,
//  4. the referenced session row is active and its stored expiry is in the future.
//
// The gate mutates nothing; it only attaches the verified identity to the
// request context.
func RequireAuth(secret []byte, sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "'Authorization' is missing.")
				return
			}
			if html.EscapeString(header) != header {
				writeAuthError(w, http.StatusBadRequest, "The request couldn't be processed.")
				return
			}

			token, ok := auth.ParseBearer(header)
			if !ok {
				writeAuthError(w, http.StatusBadRequest, "Invalid token format.")
				return
			}

			claims, err := auth.VerifyToken(token, secret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized.")
				return
			}

			// Cryptographic validity alone is not enough: the session row
			// must still be active and unexpired, so a token can be burned
			// server-side before its exp claim runs out.
			sess, err := sessions.GetActive(claims.SessionID)
			if err != nil || sess == nil {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized.")
				return
			}

			ac := auth.AuthContext{
				UserID:    sess.UserID,
				Username:  claims.Username,
				Role:      claims.Role,
				SessionID: claims.SessionID,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

// RequireRole is the role gate: the token's embedded role must appear in the
// route's allowlist. Pure check, no state.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := auth.FromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "Unauthorized.")
				return
			}
			for _, role := range roles {
				if ac.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeAuthError(w, http.StatusForbidden, "Forbidden.")
		})
	}
}
