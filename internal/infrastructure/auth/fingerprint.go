package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// NormalizeUserAgent collapses user-agent strings to a comparable form.
func NormalizeUserAgent(ua string) string {
	return strings.ToLower(strings.TrimSpace(ua))
}

// NormalizeIP reduces an address to a coarse network prefix: the first
// three octets for IPv4, the first four groups for IPv6. Coarse on purpose
// so a session survives minor NAT/proxy drift while staying bound to a
// device class.
func NormalizeIP(ip string) string {
	if ip == "" {
		return ""
	}
	if strings.Contains(ip, ":") {
		groups := strings.Split(ip, ":")
		if len(groups) > 4 {
			groups = groups[:4]
		}
		return strings.Join(groups, ":")
	}
	octets := strings.Split(ip, ".")
	if len(octets) == 4 {
		return strings.Join(octets[:3], ".")
	}
	return ip
}

// HashFingerprint hashes a normalized fingerprint component. Empty input
// yields an empty hash, meaning "not bound".
func HashFingerprint(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// HashToken digests an opaque token for storage. The raw token is never
// persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// FingerprintsEqual compares two fingerprint hashes in constant time.
func FingerprintsEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
