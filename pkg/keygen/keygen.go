// Package keygen produces the identifiers used throughout the system:
// API keys, hub license keys, hub serials and URL slugs.
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// APIKeyPrefix marks tenant API keys
	APIKeyPrefix = "ak_"
	// LicenseKeyPrefix marks hub license keys
	LicenseKeyPrefix = "lk_"
	// SerialPrefix marks hub serials
	SerialPrefix = "AO"

	// tokenBytes is the random payload of a generated key. 16 bytes
	// gives 128 bits of entropy; the store still enforces uniqueness
	// at write time.
	tokenBytes = 16
)

// GenerateAPIKey returns a new tenant API key, e.g. "ak_9f86d08188...".
func GenerateAPIKey() (string, error) {
	return generateToken(APIKeyPrefix)
}

// GenerateLicenseKey returns a new hub license key, e.g. "lk_4355a46b19...".
func GenerateLicenseKey() (string, error) {
	return generateToken(LicenseKeyPrefix)
}

func generateToken(prefix string) (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return prefix + hex.EncodeToString(b), nil
}

// GenerateHubSerial returns a human-legible, sortable hub serial such as
// "AO-ACME-001-lz5k3q9p". The base-36 timestamp keeps collision risk low
// without a central counter.
func GenerateHubSerial(tenantSlug string, sequence int) string {
	slug := sanitizeSlugForSerial(tenantSlug)
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return fmt.Sprintf("%s-%s-%03d-%s", SerialPrefix, slug, sequence, ts)
}

// sanitizeSlugForSerial uppercases the slug and strips everything that is
// not a letter or digit, so serials stay free of separator ambiguity.
func sanitizeSlugForSerial(slug string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(slug) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "TENANT"
	}
	return b.String()
}

// Slugify derives a URL-safe slug from a display name: lowercased, runs of
// non-alphanumerics collapsed to single hyphens, trimmed. Collision
// disambiguation is the caller's job.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
