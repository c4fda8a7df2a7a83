// Package auth identifies players. The terminal client signs in a fixed
// local player; the HTTP server issues and verifies signed tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tatianab/backrooms/internal/session"
)

// UserID derives a stable player id from a display name.
func UserID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("backrooms:"+strings.ToLower(strings.TrimSpace(name)))).String()
}

// Static always reports the same player. The zero value is signed out.
type Static struct {
	User session.User
}

// Player returns a Static provider for the named player.
func Player(name string) Static {
	name = strings.TrimSpace(name)
	if name == "" {
		return Static{}
	}
	return Static{User: session.User{ID: UserID(name), Name: name}}
}

func (s Static) CurrentUser(context.Context) (session.User, error) {
	if s.User.ID == "" {
		return session.User{}, session.ErrUnauthenticated
	}
	return s.User, nil
}

type userKey struct{}

// WithUser returns a context carrying the signed in player.
func WithUser(ctx context.Context, u session.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// FromContext reports the player stored by WithUser.
func FromContext(ctx context.Context) (session.User, bool) {
	u, ok := ctx.Value(userKey{}).(session.User)
	return u, ok && u.ID != ""
}

// Context resolves the player from the request context.
type Context struct{}

func (Context) CurrentUser(ctx context.Context) (session.User, error) {
	if u, ok := FromContext(ctx); ok {
		return u, nil
	}
	return session.User{}, session.ErrUnauthenticated
}

const issuer = "backrooms"

type claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Tokens issues and verifies HMAC-signed player tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("token secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for the named player.
func (t *Tokens) Issue(name string) (string, session.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", session.User{}, errors.New("player name is required")
	}
	user := session.User{ID: UserID(name), Name: name}
	now := t.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.NewString(),
		},
		Name: name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", session.User{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, user, nil
}

// Verify checks a token and returns its player. Every failure wraps
// session.ErrUnauthenticated.
func (t *Tokens) Verify(token string) (session.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return session.User{}, session.ErrUnauthenticated
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return session.User{}, fmt.Errorf("%w: %v", session.ErrUnauthenticated, err)
	}
	if c.Subject == "" {
		return session.User{}, fmt.Errorf("%w: token has no subject", session.ErrUnauthenticated)
	}
	return session.User{ID: c.Subject, Name: c.Name}, nil
}
