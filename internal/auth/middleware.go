package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/room-rental-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/room-rental-backend/internal/pkg/response"
)

var (
	ErrMissingToken   = apperror.New(apperror.KindUnauthorized, "missing Authorization header")
	ErrMalformedToken = apperror.New(apperror.KindUnauthorized, "invalid Authorization header format")
	ErrUnknownUser    = apperror.New(apperror.KindUnauthorized, "user not found")
)

// RoleResolver returns the current role of an active user.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (string, error)
}

// RoleResolverFunc adapts a function to RoleResolver.
type RoleResolverFunc func(ctx context.Context, userID string) (string, error)

func (f RoleResolverFunc) ResolveRole(ctx context.Context, userID string) (string, error) {
	return f(ctx, userID)
}

// AuthRequired validates the bearer token and loads the caller's current role.
// The role is resolved on every request so demotions apply before the token expires.
func AuthRequired(jwtManager *JWTManager, roles RoleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, ErrMissingToken)
			return
		}

		scheme, tokenStr, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || tokenStr == "" {
			abort(c, ErrMalformedToken)
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			abort(c, err)
			return
		}

		role, err := roles.ResolveRole(c.Request.Context(), claims.UserID())
		if err != nil {
			abort(c, apperror.Wrap(err, apperror.KindUnauthorized, ErrUnknownUser.Message))
			return
		}

		setUserID(c, claims.UserID())
		SetRole(c, role)
		c.Next()
	}
}

// RequireRole rejects callers whose resolved role is not role. It must run after AuthRequired.
func RequireRole(role string) gin.HandlerFunc {
	denied := apperror.Forbidden("forbidden: " + role + " access required")
	return func(c *gin.Context) {
		if GetRole(c) != role {
			abort(c, denied)
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
