// Package admin implements the shared-secret gate in front of the admin
// view. Authentication is a plain string comparison against a configured
// password; a successful login is carried as a short-lived signed token
// whose secret is generated per process start, so sessions do not survive
// a restart.
package admin

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// ErrWrongPassword carries the inline error message the login form shows.
var ErrWrongPassword = errors.New("비밀번호가 틀렸습니다!")

// ErrInvalidToken is returned for missing, malformed or expired session
// tokens.
var ErrInvalidToken = errors.New("invalid admin session")

// sessionTTL bounds how long an admin session token stays valid.
const sessionTTL = 12 * time.Hour

// Gate issues and verifies admin session tokens.
type Gate struct {
	password string
	secret   []byte
	now      func() time.Time
}

// NewGate creates a gate for the configured shared password. The signing
// secret is random per process, which resets all sessions on restart.
func NewGate(password string) *Gate {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("admin: cannot seed session secret: %v", err))
	}
	return &Gate{password: password, secret: secret, now: time.Now}
}

// Login checks the password and returns a session token. No lockout and
// no rate limiting: the gate mirrors a kiosk touch screen, not an
// internet-facing login.
func (g *Gate) Login(password string) (string, error) {
	if password != g.password {
		return "", ErrWrongPassword
	}
	now := g.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   "admin",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(sessionTTL).Unix(),
	})
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks a session token issued by this gate.
func (g *Gate) Verify(tokenString string) error {
	if tokenString == "" {
		return ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &jwt.StandardClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
