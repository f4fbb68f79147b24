// Package token issues and verifies the signed identity tokens handed out at
// login. A token carries the user id, username and role; once its signature
// checks out those claims are trusted as-is.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/redasGoluenko/Errando/database/models"
)

const DefaultTTL = 7 * 24 * time.Hour

var (
	ErrNoSecret     = errors.New("token signing secret is not set")
	ErrInvalidToken = errors.New("invalid token")
)

// Config is the issuer's immutable configuration.
type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Claims is the payload of an identity token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// Identity is a verified token's subject.
type Identity struct {
	UserID    uint
	Username  string
	Role      models.Role
	SessionID string
	ExpiresAt time.Time
}

// Issuer signs and verifies HS256 tokens with a fixed secret.
type Issuer struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewIssuer returns an issuer for cfg. An empty secret is an error.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		key:    []byte(cfg.Secret),
		ttl:    ttl,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// TTL is how long issued tokens stay valid.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for user. sessionID becomes the token id (jti).
func (i *Issuer) Issue(user models.User, sessionID string) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	claims := Claims{
		Username: user.Username,
		Role:     user.Role.String(),
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Id:        sessionID,
			Issuer:    i.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Verify checks the signature and expiry of raw and returns its identity.
// A token whose subject is not a positive integer or whose role is unknown
// is rejected.
func (i *Issuer) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.key, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if i.issuer != "" && !claims.VerifyIssuer(i.issuer, true) {
		return Identity{}, fmt.Errorf("%w: wrong issuer", ErrInvalidToken)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Identity{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Identity{
		UserID:    uint(id),
		Username:  claims.Username,
		Role:      role,
		SessionID: claims.Id,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
	}, nil
}
