// Package bearer enforces bearer token auth in front of protected
// resource handlers, per RFC 6750. Token verification itself is delegated
// through the TokenVerifier interface.
package bearer

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/obot-platform/mcp-auth-routes/pkg/handlerutils"
	"github.com/obot-platform/mcp-auth-routes/pkg/routes"
	"github.com/obot-platform/mcp-auth-routes/pkg/types"
)

// TokenVerifier checks an access token and reports what it is good for.
// How verification happens (storage lookup, signature check, upstream
// introspection) is the implementation's business.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*types.AuthInfo, error)
}

type authInfoKey struct{}

// GetAuthInfo returns the validated token info stored by WithBearerAuth,
// or nil if the request did not pass through it.
func GetAuthInfo(r *http.Request) *types.AuthInfo {
	info, _ := r.Context().Value(authInfoKey{}).(*types.AuthInfo)
	return info
}

// WithBearerAuth requires a valid bearer token in the Authorization
// header before next runs. Missing, malformed, unverifiable, or expired
// tokens get a 401 with a WWW-Authenticate challenge pointing at the
// protected resource metadata; a token lacking one of requiredScopes gets
// a 403. On success the token info is placed on the request context.
func WithBearerAuth(verifier TokenVerifier, requiredScopes []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, r, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			unauthorized(w, r, "Invalid Authorization header format, expected 'Bearer TOKEN'")
			return
		}

		info, err := verifier.VerifyAccessToken(r.Context(), parts[1])
		if err != nil {
			unauthorized(w, r, "Invalid or expired token")
			return
		}

		if info.ExpiresAt != 0 && info.ExpiresAt < time.Now().Unix() {
			unauthorized(w, r, "Token has expired")
			return
		}

		for _, scope := range requiredScopes {
			if !slices.Contains(info.Scopes, scope) {
				forbidden(w, requiredScopes)
				return
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authInfoKey{}, info)))
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, description string) {
	resourceMetadataURL := handlerutils.GetBaseURL(r) + routes.ProtectedResourceMetadataPath
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(
		`Bearer error="invalid_token", error_description=%q, resource_metadata=%q`,
		description, resourceMetadataURL,
	))
	handlerutils.JSON(w, http.StatusUnauthorized, types.OAuthError{
		Error:            "invalid_token",
		ErrorDescription: description,
	})
}

func forbidden(w http.ResponseWriter, requiredScopes []string) {
	description := "Token is missing required scopes: " + strings.Join(requiredScopes, " ")
	w.Header().Set("WWW-Authenticate", fmt.Sprintf(
		`Bearer error="insufficient_scope", error_description=%q`,
		description,
	))
	handlerutils.JSON(w, http.StatusForbidden, types.OAuthError{
		Error:            "insufficient_scope",
		ErrorDescription: description,
	})
}
