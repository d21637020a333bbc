package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/careline-api/internal/model"
	apperrors "github.com/jwalitptl/careline-api/pkg/errors"
	"github.com/jwalitptl/careline-api/pkg/httputil"
	"github.com/jwalitptl/careline-api/pkg/identity"
)

const (
	contextIdentity = "identity"
	contextUser     = "user"
)

// ProfileResolver maps a verified identity to its stored profile.
type ProfileResolver interface {
	Resolve(ctx context.Context, id *identity.Identity) (*model.User, error)
}

type AuthMiddleware struct {
	verifier identity.Verifier
	resolver ProfileResolver
}

func NewAuthMiddleware(verifier identity.Verifier, resolver ProfileResolver) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		resolver: resolver,
	}
}

func (m *AuthMiddleware) verify(c *gin.Context) (*identity.Identity, error) {
	token, err := identity.BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		return nil, apperrors.Unauthenticated("", err)
	}
	id, err := m.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		return nil, apperrors.Unauthenticated("", err)
	}
	return id, nil
}

// VerifyIdentity checks the bearer token only. Used by routes that run
// before a profile exists, such as registration.
func (m *AuthMiddleware) VerifyIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.verify(c)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		c.Set(contextIdentity, id)
		c.Next()
	}
}

// Authenticate verifies the token and loads the caller's profile.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.verify(c)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		user, err := m.resolver.Resolve(c.Request.Context(), id)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		c.Set(contextIdentity, id)
		c.Set(contextUser, user)
		c.Next()
	}
}

// OptionalAuthenticate behaves like Authenticate when an Authorization header
// is present and lets anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	authenticate := m.Authenticate()
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		authenticate(c)
	}
}

// RequireRole rejects callers whose role is not listed. Must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			httputil.RespondWithError(c, apperrors.Unauthenticated("", errors.New("no authenticated user")))
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden("operation not permitted for role "+string(user.Role)))
	}
}

// CurrentUser returns the authenticated profile, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(contextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

func CurrentIdentity(c *gin.Context) *identity.Identity {
	v, ok := c.Get(contextIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*identity.Identity)
	return id
}
