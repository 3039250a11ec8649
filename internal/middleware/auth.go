package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/corvid-labs/taskline-backend/internal/handlers"
	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/pkg/ctxutil"
	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
)

// AuthMiddleware verifies bearer tokens and attaches the authenticated
// actor to the request context. Verification failures are
// authentication-kind errors and go through the same boundary
// translator as everything else.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
	issuer string
}

func NewAuthMiddleware(baseLog *logger.Logger, secret, issuer string) *AuthMiddleware {
	return &AuthMiddleware{
		log:    baseLog.With("middleware", "AuthMiddleware"),
		secret: []byte(secret),
		issuer: issuer,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			am.abort(c, apperrors.NewAuthentication("missing or invalid token"))
			return
		}

		userID, err := am.verify(tokenString)
		if err != nil {
			am.abort(c, err)
			return
		}

		ctx := ctxutil.WithActor(c.Request.Context(), &ctxutil.Actor{
			UserID: userID,
			Token:  tokenString,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// verify parses and validates the token, returning the subject user id.
func (am *AuthMiddleware) verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return am.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(am.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return uuid.Nil, apperrors.NewAuthentication("missing or invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperrors.NewAuthentication("missing or invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, apperrors.NewAuthentication("token has no subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, apperrors.NewAuthentication("token subject is not a user id")
	}
	return userID, nil
}

func (am *AuthMiddleware) abort(c *gin.Context, err error) {
	handlers.RespondError(c, am.log, err)
	c.Abort()
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}

// IssueToken mints an HS256 token for the given user. Exposed for local
// development and tests; there is no credential store in this service.
func IssueToken(secret, issuer string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"iss": issuer,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
