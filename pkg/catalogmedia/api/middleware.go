package api

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mercaba/catalog-media/pkg/catalogmedia"
)

// Context keys for middleware
type contextKey string

const identityKey contextKey = "identity"

// Identity headers set by the session layer in front of this service.
const (
	HeaderUserID      = "X-User-Id"
	HeaderUsername    = "X-User-Name"
	HeaderEmail       = "X-User-Email"
	HeaderDisplayName = "X-User-Display-Name"
	HeaderRole        = "X-User-Role"
)

// WithIdentity builds the request's Identity Context once from the
// session headers and stores it on the request context. The identity is
// read-only for the rest of the request.
func WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := catalogmedia.Identity{
			UserID:      r.Header.Get(HeaderUserID),
			Username:    r.Header.Get(HeaderUsername),
			Email:       r.Header.Get(HeaderEmail),
			DisplayName: r.Header.Get(HeaderDisplayName),
			Role:        catalogmedia.RoleStandard,
		}
		if r.Header.Get(HeaderRole) == string(catalogmedia.RoleAdmin) {
			identity.Role = catalogmedia.RoleAdmin
		}

		if identity.UserID == "" && identity.Username == "" && identity.Email == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireIdentity rejects requests that carry no identity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (catalogmedia.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(catalogmedia.Identity)
	return identity, ok
}
