package middleware

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CookieName  = "vvd_session"
	HeaderName  = "X-Session-Token"
	tokenIssuer = "vivid"
)

var ErrInvalidToken = errors.New("invalid session token")

type contextKey struct{}

type sessionClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionTokens issues and checks the signed token naming an interaction
// context. It identifies a browser tab or client, not a user.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
	secure bool
	logger *zap.Logger
}

// NewSessionTokens signs with secret, or with a random per-process key when
// secret is empty. Tokens then stop verifying after a restart.
func NewSessionTokens(secret string, ttl time.Duration, secureCookie bool, logger *zap.Logger) (*SessionTokens, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("SESSION_SECRET not set, using an ephemeral key")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionTokens{secret: key, ttl: ttl, secure: secureCookie, logger: logger}, nil
}

func (t *SessionTokens) Mint(sid string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse returns the context id carried by a valid token.
func (t *SessionTokens) Parse(tokenStr string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.SID == "" {
		return "", ErrInvalidToken
	}
	return claims.SID, nil
}

// Middleware attaches the interaction-context id to the request context,
// minting a new context and token when the request carries none or a bad one.
func (t *SessionTokens) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := t.Parse(tokenFromRequest(r))
		if err != nil {
			sid = uuid.NewString()
			token, err := t.Mint(sid)
			if err != nil {
				t.logger.Error("mint session token", zap.Error(err))
				http.Error(w, "could not start session", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(t.ttl.Seconds()),
				HttpOnly: true,
				Secure:   t.secure,
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(HeaderName, token)
		}

		next.ServeHTTP(w, r.WithContext(WithContextID(r.Context(), sid)))
	})
}

func tokenFromRequest(r *http.Request) string {
	if v := r.Header.Get(HeaderName); v != "" {
		return v
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func WithContextID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// ContextID returns the interaction-context id set by Middleware.
func ContextID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}
