package auth

import (
	"crypto/ed25519"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/PY0226H/aicomm/domain"
	"github.com/PY0226H/aicomm/errors"
)

const issuer = "chat-server"

// Claims defines the identity fields minted into every token.
type Claims struct {
	UserID   uint64 `json:"id"`
	WsID     int64  `json:"ws_id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// EncodingKey signs identity tokens with the process-wide Ed25519 private key.
// The CRUD layer is the only signer in production; this side exists for the
// tokenctl tool and for tests.
type EncodingKey struct {
	key ed25519.PrivateKey
	ttl time.Duration
}

// NewEncodingKey parses a PEM-encoded Ed25519 private key.
// A zero ttl mints tokens without an expiry claim.
func NewEncodingKey(pemBytes []byte, ttl time.Duration) (EncodingKey, error) {
	key, err := jwt.ParseEdPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return EncodingKey{}, err
	}
	priv, ok := key.(ed25519.PrivateKey)
	if !ok {
		return EncodingKey{}, jwt.ErrInvalidKeyType
	}
	return EncodingKey{key: priv, ttl: ttl}, nil
}

// Sign mints a token for the given user. Deterministic given the key and
// clock; fails only on signing-key misconfiguration.
func (k EncodingKey) Sign(user domain.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		WsID:     user.WsID,
		Fullname: user.Fullname,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if k.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(k.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(k.key)
}

// DecodingKey verifies identity tokens with the process-wide Ed25519 public
// key. Read-only after startup, safe for concurrent use.
type DecodingKey struct {
	key ed25519.PublicKey
}

// NewDecodingKey parses a PEM-encoded Ed25519 public key.
func NewDecodingKey(pemBytes []byte) (DecodingKey, error) {
	key, err := jwt.ParseEdPublicKeyFromPEM(pemBytes)
	if err != nil {
		return DecodingKey{}, err
	}
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return DecodingKey{}, jwt.ErrInvalidKeyType
	}
	return DecodingKey{key: pub}, nil
}

// Verify validates the signature and, when present, the expiry claim.
// Bad signature, malformed structure and expiry all collapse into
// ErrInvalidToken; callers only learn that verification failed.
func (k DecodingKey) Verify(tokenString string) (domain.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (any, error) { return k.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return domain.User{}, errors.ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.User{}, errors.ErrInvalidToken
	}
	return domain.User{
		ID:       claims.UserID,
		WsID:     claims.WsID,
		Fullname: claims.Fullname,
		Email:    claims.Email,
	}, nil
}
