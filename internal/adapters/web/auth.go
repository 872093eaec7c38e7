package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"cakeflow-backend/internal/core"
)

type identityKey struct{}

// identityFromContext returns the authenticated identity stored in ctx, or nil.
func identityFromContext(ctx context.Context) *core.Identity {
	v, _ := ctx.Value(identityKey{}).(*core.Identity)
	return v
}

// jwtClaims is the payload of the identity provider's access token. The
// metadata block carries optional display-name fields.
type jwtClaims struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	UserMetadata struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// bearerToken extracts the access token from the Authorization header,
// falling back to the auth_token cookie for browser clients.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth validates the identity provider's token and injects the caller
// identity into the request context. Returns 401 if the token is absent or
// invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		identity := &core.Identity{
			ID:        claims.Subject,
			Email:     claims.Email,
			FirstName: claims.UserMetadata.FirstName,
			LastName:  claims.UserMetadata.LastName,
			Role:      claims.Role,
		}
		ctx := context.WithValue(r.Context(), identityKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// me handles GET /api/auth/me. The profile row is refreshed from the token on
// every call so a renamed user shows up without a separate sync step.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	if identity == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	profile, err := h.profiles.UpsertProfile(r.Context(), *identity)
	if err != nil {
		writeError(w, r, "failed to load profile", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, profile)
}
