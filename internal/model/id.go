package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	idSeparator = "|"
	idLength    = 16
)

// MakeDealID derives the external identifier of a deal from its identity
// fields. Case and surrounding whitespace do not affect the result.
func MakeDealID(restaurant, market, title, sourceURL string) string {
	parts := []string{restaurant, market, title, sourceURL}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, idSeparator)))
	return hex.EncodeToString(sum[:])[:idLength]
}

// ID returns the derived identifier of the deal
func (d Deal) ID() string {
	return MakeDealID(d.Restaurant, d.Market, d.Title, d.SourceURL)
}
