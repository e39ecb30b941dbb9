package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const userIDKey = "user_id"

var errNoSecret = errors.New("token verification not configured")

// RequireJWT verifies an HS256 bearer token and stores its subject as the
// caller's user id. Any failure ends the request with 401.
func RequireJWT(secret []byte, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abortUnauthorized(c, "Authorization header is required. Use: Bearer <token>")
			return
		}
		sub, err := verify(parser, secret, strings.TrimSpace(raw))
		if err != nil {
			abortUnauthorized(c, "invalid token: "+err.Error())
			return
		}
		c.Set(userIDKey, sub)
		c.Next()
	}
}

func verify(parser *jwt.Parser, secret []byte, raw string) (string, error) {
	if len(secret) == 0 {
		return "", errNoSecret
	}
	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return secret, nil })
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": msg})
}

func userID(c *gin.Context) string { return c.GetString(userIDKey) }
