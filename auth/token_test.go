package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/PY0226H/aicomm/domain"
	"github.com/PY0226H/aicomm/errors"
)

// testKeyPair generates a fresh Ed25519 key pair in PEM form.
func testKeyPair(t *testing.T) (privPEM, pubPEM []byte, priv ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)

	privPEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})
	pubPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privPEM, pubPEM, priv
}

func TestToken_SignVerify_RoundTrip(t *testing.T) {
	req := require.New(t)
	privPEM, pubPEM, _ := testKeyPair(t)

	ek, err := NewEncodingKey(privPEM, time.Hour)
	req.NoError(err)
	dk, err := NewDecodingKey(pubPEM)
	req.NoError(err)

	user := domain.User{ID: 1, WsID: 42, Fullname: "Alice Wang", Email: "alice@acme.org"}

	// When a signed token is verified with the matching public key
	token, err := ek.Sign(user)
	req.NoError(err)
	got, err := dk.Verify(token)

	// Then the original identity comes back untouched
	req.NoError(err)
	req.Equal(user, got)
}

func TestToken_NoExpiryWhenTTLZero(t *testing.T) {
	req := require.New(t)
	privPEM, pubPEM, _ := testKeyPair(t)

	ek, err := NewEncodingKey(privPEM, 0)
	req.NoError(err)
	dk, err := NewDecodingKey(pubPEM)
	req.NoError(err)

	token, err := ek.Sign(domain.User{ID: 7})
	req.NoError(err)

	_, err = dk.Verify(token)
	req.NoError(err)
}

func TestToken_TamperedSignatureFails(t *testing.T) {
	req := require.New(t)
	privPEM, pubPEM, _ := testKeyPair(t)

	ek, err := NewEncodingKey(privPEM, time.Hour)
	req.NoError(err)
	dk, err := NewDecodingKey(pubPEM)
	req.NoError(err)

	token, err := ek.Sign(domain.User{ID: 1, Fullname: "Alice Wang"})
	req.NoError(err)

	parts := strings.Split(token, ".")
	req.Len(parts, 3)

	// When any byte of the signature segment is altered
	sig := []byte(parts[2])
	for i := range sig {
		mutated := append([]byte(nil), sig...)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		bad := parts[0] + "." + parts[1] + "." + string(mutated)

		// Then verification fails with the single opaque error
		_, err := dk.Verify(bad)
		req.ErrorIs(err, errors.ErrInvalidToken, "signature byte %d", i)
	}
}

func TestToken_ExpiredFails(t *testing.T) {
	req := require.New(t)
	_, pubPEM, priv := testKeyPair(t)

	dk, err := NewDecodingKey(pubPEM)
	req.NoError(err)

	// Given a token signed with the right key but already expired
	claims := Claims{
		UserID:   1,
		Fullname: "Alice Wang",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	req.NoError(err)

	_, err = dk.Verify(token)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestToken_ForeignKeyFails(t *testing.T) {
	req := require.New(t)
	privPEM, _, _ := testKeyPair(t)
	_, otherPubPEM, _ := testKeyPair(t)

	ek, err := NewEncodingKey(privPEM, time.Hour)
	req.NoError(err)
	dk, err := NewDecodingKey(otherPubPEM)
	req.NoError(err)

	token, err := ek.Sign(domain.User{ID: 1})
	req.NoError(err)

	_, err = dk.Verify(token)
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestToken_GarbageFails(t *testing.T) {
	req := require.New(t)
	_, pubPEM, _ := testKeyPair(t)

	dk, err := NewDecodingKey(pubPEM)
	req.NoError(err)

	for _, bad := range []string{"", "not-a-token", "a.b.c", strings.Repeat("x", 512)} {
		_, err := dk.Verify(bad)
		req.ErrorIs(err, errors.ErrInvalidToken, lo.Ellipsis(bad, 16))
	}
}
