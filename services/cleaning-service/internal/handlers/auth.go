package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/propdesk/backoffice/libs/auth"
	"github.com/propdesk/backoffice/libs/httpx"
)

type ctxKey int

const ctxKeyPrincipal ctxKey = iota

// Principal is the authenticated caller.
type Principal struct {
	UserID     string
	Role       string
	BuildingID string
}

func (p Principal) IsAdmin() bool { return p.Role == auth.RoleAdmin }

// CanManage reports whether p may administer schedules of buildingID.
func (p Principal) CanManage(buildingID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == auth.RoleManager && p.BuildingID != "" && p.BuildingID == buildingID
}

// CanAccess reports whether p may read and book schedules of buildingID.
func (p Principal) CanAccess(buildingID string) bool {
	return p.IsAdmin() || (p.BuildingID != "" && p.BuildingID == buildingID)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(Principal)
	return p, ok
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// Authenticate resolves the caller from a bearer token. With headerIdentity set (local development
// only) the X-User-Id, X-Role and X-Building-Id headers are trusted instead.
func Authenticate(v TokenVerifier, headerIdentity bool) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var p Principal
			if headerIdentity {
				p = Principal{
					UserID:     strings.TrimSpace(r.Header.Get("X-User-Id")),
					Role:       strings.ToLower(strings.TrimSpace(r.Header.Get("X-Role"))),
					BuildingID: strings.TrimSpace(r.Header.Get("X-Building-Id")),
				}
			} else {
				token, ok := auth.BearerToken(r.Header.Get("Authorization"))
				if !ok {
					httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
					return
				}
				claims, err := v.Verify(r.Context(), token)
				if err != nil {
					httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
					return
				}
				p = Principal{UserID: claims.Subject, Role: strings.ToLower(claims.Role), BuildingID: claims.BuildingID}
			}
			if p.UserID == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
				return
			}
			if p.Role == "" {
				p.Role = auth.RoleTenant
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// PrincipalKey buckets rate limits per caller.
func PrincipalKey(r *http.Request) string {
	if p, ok := PrincipalFrom(r.Context()); ok {
		return p.UserID
	}
	return httpx.ClientIP(r)
}
