// Package cachekey derives deterministic cache keys for row sources.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Version is bumped when the cached payload encoding changes.
const Version = "v1"

// ForSource computes a cache key for a source and its parameters.
// Formula: name ":" SHA256(version|name|param1|param2|...)
// Parameter order matters.
func ForSource(name string, params ...string) string {
	var sb strings.Builder
	sb.WriteString(Version)
	sb.WriteString("|")
	sb.WriteString(name)
	for _, p := range params {
		sb.WriteString("|")
		sb.WriteString(p)
	}

	hash := sha256.Sum256([]byte(sb.String()))
	return sanitize(name) + ":" + hex.EncodeToString(hash[:])
}

// sanitize keeps the readable prefix free of separators used by Redis tooling.
func sanitize(name string) string {
	if name == "" {
		return "source"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '/', '?', '&', '=':
			return '_'
		}
		return r
	}, name)
}
