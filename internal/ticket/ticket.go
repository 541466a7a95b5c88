// Package ticket mints and verifies the short opaque game ticket spec.md
// §6.3 describes: a credential minted by the (out-of-scope) lobby service,
// presented on WebSocket upgrade, containing username and room_id, signed
// with an HMAC secret shared between lobby and game server. Grounded on
// the teacher's common/jwts package — same golang-jwt/jwt/v5 HS256 shape,
// generalized from a bare userID claim to the {username, room_id} pair
// this spec's ticket carries, plus jti-based replay protection the
// teacher's jwts package didn't need (it never authenticates a duplex
// connection upgrade, just an HTTP session).
package ticket

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrExpired      = errors.New("ticket: expired")
	ErrMalformed    = errors.New("ticket: malformed or wrong signing method")
	ErrBadSignature = errors.New("ticket: signature verification failed")
	ErrReplayed     = errors.New("ticket: already used")
)

// Claims is the game ticket's payload — username and room_id per spec.md
// §6.3, plus the registered jti/exp/iat fields golang-jwt always carries.
type Claims struct {
	Username string `json:"username"`
	RoomID   string `json:"room_id"`
	jwt.RegisteredClaims
}

// Minter signs tickets with the shared HMAC secret. The lobby service
// (out of scope per spec.md §1) is this package's only intended caller in
// production, but keeping Mint here lets tests and local tooling issue
// tickets without standing up the lobby.
type Minter struct {
	secret []byte
	ttl    time.Duration
}

func NewMinter(secret string, ttl time.Duration) *Minter {
	return &Minter{secret: []byte(secret), ttl: ttl}
}

func (m *Minter) Mint(username, roomID string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		RoomID:   roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verifier checks ticket signatures on WebSocket upgrade and rejects a jti
// that has already been redeemed, defeating replay of a captured ticket
// within its validity window.
type Verifier struct {
	secret []byte
	seen   ReplayCache
}

// ReplayCache tracks jtis already redeemed. Implemented by
// *RistrettoReplayCache in production; a map-backed fake suffices in
// tests.
type ReplayCache interface {
	CheckAndMark(jti string, ttl time.Duration) (alreadySeen bool)
}

func NewVerifier(secret string, seen ReplayCache) *Verifier {
	return &Verifier{secret: []byte(secret), seen: seen}
}

// Verify parses and validates raw, enforcing HS256, expiry, and
// single-use redemption. Returns the claims on success.
func (v *Verifier) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrMalformed
	}
	if !token.Valid {
		return Claims{}, ErrBadSignature
	}
	if claims.ID == "" {
		return Claims{}, ErrMalformed
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return Claims{}, ErrExpired
	}
	if v.seen.CheckAndMark(claims.ID, ttl) {
		return Claims{}, ErrReplayed
	}
	return claims, nil
}
