package auth

import (
	"fmt"
	"os"
	"time"
)

// LoadDecodingKey reads the verification key from a PEM file.
// Called once at startup; the key never rotates at runtime.
func LoadDecodingKey(path string) (DecodingKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return DecodingKey{}, fmt.Errorf("read public key %s: %w", path, err)
	}
	dk, err := NewDecodingKey(pemBytes)
	if err != nil {
		return DecodingKey{}, fmt.Errorf("parse public key %s: %w", path, err)
	}
	return dk, nil
}

// LoadEncodingKey reads the signing key from a PEM file.
func LoadEncodingKey(path string, ttl time.Duration) (EncodingKey, error) {
	pemBytes, err := os.ReadFile(path)
	if err != nil {
		return EncodingKey{}, fmt.Errorf("read private key %s: %w", path, err)
	}
	ek, err := NewEncodingKey(pemBytes, ttl)
	if err != nil {
		return EncodingKey{}, fmt.Errorf("parse private key %s: %w", path, err)
	}
	return ek, nil
}
