package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

// ContextUserID is the gin context key holding the verified identity id.
const ContextUserID = "user_id"

// Verifier checks a bearer token and returns the identity id it was issued
// for.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

var ErrNoSubject = errors.New("token has no subject")

// HMACVerifier accepts HS256/384/512 tokens signed with a shared secret. The
// identity is the "sub" claim, or "user_id" for older tokens.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(_ context.Context, tokenString string) (string, error) {
	if len(v.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	if sub, _ := claims.GetSubject(); sub != "" {
		return sub, nil
	}
	switch id := claims["user_id"].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		return fmt.Sprintf("%.0f", id), nil
	}
	return "", ErrNoSubject
}

// OIDCVerifier accepts ID tokens from the hosted auth provider.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's keys. An empty clientID skips the
// audience check.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init oidc provider %s: %w", issuer, err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: clientID == "",
	})}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, raw string) (string, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("invalid id_token: %w", err)
	}
	if idToken.Subject == "" {
		return "", ErrNoSubject
	}
	return idToken.Subject, nil
}

// AnyVerifier tries each verifier in order.
type AnyVerifier []Verifier

func (vs AnyVerifier) Verify(ctx context.Context, token string) (string, error) {
	err := errors.New("no token verifier configured")
	for _, v := range vs {
		var id string
		if id, err = v.Verify(ctx, token); err == nil {
			return id, nil
		}
	}
	return "", err
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", false
	}
	tokenString = strings.TrimSpace(tokenString)
	return tokenString, tokenString != ""
}

func AuthMiddleware(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token malformed"})
			return
		}

		userID, err := v.Verify(c.Request.Context(), tokenString)
		if err != nil {
			log.WithError(err).Debug("rejected bearer token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// OptionalAuth sets the identity when a valid bearer token is present and
// lets the request through either way.
func OptionalAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if userID, err := v.Verify(c.Request.Context(), tokenString); err == nil {
				c.Set(ContextUserID, userID)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the verified identity id of the request, or "" when
// the caller is not signed in.
func CurrentUser(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
