package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gatherly-app/backend-rsvp/pkg/response"
)

var (
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// HostAuth validates a host bearer token and stores host_id in the gin
// context. Guest-facing RSVP endpoints stay unauthenticated; only event
// administration and check-in require a host token.
func HostAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", "")
			c.Abort()
			return
		}

		hostID, err := validateToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			code := "UNAUTHORIZED"
			if errors.Is(err, errTokenExpired) {
				code = "TOKEN_EXPIRED"
			}
			response.Error(c, http.StatusUnauthorized, code, err.Error(), "")
			c.Abort()
			return
		}

		c.Set("host_id", hostID)
		c.Next()
	}
}

func validateToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errTokenExpired
		}
		return "", errInvalidToken
	}
	if !token.Valid {
		return "", errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidToken
	}
	hostID, ok := claims["host_id"].(string)
	if !ok || hostID == "" {
		return "", errInvalidToken
	}
	return hostID, nil
}
