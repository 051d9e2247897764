package xdm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainPayload prefixes outbound payload hashes.
// Version suffix enables future algorithm migration.
const DomainPayload = "herald/payload/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PayloadHash computes the content-addressed hash of an outbound payload.
// Identical payloads hash identically regardless of map iteration order,
// which is what the journal replay check compares.
// Returns an error if the payload cannot be canonically marshaled.
func PayloadHash(data map[string]any) (string, error) {
	canonical, err := MarshalCanonical(data)
	if err != nil {
		return "", fmt.Errorf("PayloadHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPayload, canonical), nil
}

// MustPayloadHash is like PayloadHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPayloadHash(data map[string]any) string {
	hash, err := PayloadHash(data)
	if err != nil {
		panic(err)
	}
	return hash
}
