// File: internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ShIIIrochka/SecondStagePROD/internal/auth"
	"github.com/ShIIIrochka/SecondStagePROD/internal/common"
)

// AuthRequired creates a Gin middleware that authenticates requests with a
// Bearer token of the given principal kind. The token must also match the
// whitelisted session for its subject, so tokens issued before the most
// recent sign-in stop working.
func AuthRequired(kind string, tokenService auth.TokenService, sessions auth.SessionStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(common.AuthorizationHeader)
		if authHeader == "" {
			logger.Debug("Authorization header missing")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header is required."))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], common.AuthorizationTypeBearer) {
			logger.Debug("Authorization header format invalid")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		tokenString := parts[1]
		claims, err := tokenService.ValidateToken(tokenString, kind)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Token is invalid or expired."))
			return
		}

		active, err := sessions.Matches(c.Request.Context(), claims.SubjectID, tokenString)
		if err != nil {
			logger.Error("Session whitelist lookup failed",
				zap.Error(err),
				zap.String("subjectID", claims.SubjectID.String()),
			)
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Session could not be verified."))
			return
		}
		if !active {
			logger.Debug("Token superseded by a newer sign-in",
				zap.String("subjectID", claims.SubjectID.String()))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Session is no longer active."))
			return
		}

		c.Set(common.SubjectIDKey, claims.SubjectID)
		c.Set(common.SubjectKindKey, claims.Kind)

		c.Next()
	}
}
