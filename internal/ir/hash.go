package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for future algorithm migration.
const (
	DomainHistory = "scribe/history/v1"
	DomainEntry   = "scribe/entry/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HistoryHash computes the content hash of a compiled history document.
// doc is canonicalized first, so key order and string normalization in the
// input do not affect the result.
func HistoryHash(doc IRObject) (string, error) {
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("HistoryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainHistory, canonical), nil
}

// EntryHash computes the content hash of a single history entry.
func EntryHash(entry IRObject) (string, error) {
	canonical, err := MarshalCanonical(entry)
	if err != nil {
		return "", fmt.Errorf("EntryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEntry, canonical), nil
}

// MustHistoryHash is like HistoryHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustHistoryHash(doc IRObject) string {
	hash, err := HistoryHash(doc)
	if err != nil {
		panic(err)
	}
	return hash
}
