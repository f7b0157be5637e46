package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

// Wire values arrive as strings (query strings, multipart fields, loosely
// typed JSON). Everything below turns them into range-checked values in one
// place before they reach the similarity engine.

// ParseLimit parses a result limit. Missing, non-numeric and zero values
// fall back to fallback; the result is clamped to [1, 50], so negative
// input becomes 1.
func ParseLimit(raw string, fallback int) int {
	n, ok := parseNumber(raw)
	limit := int(math.Max(math.Min(n, domain.MaxSearchLimit), -1))
	if !ok || limit == 0 {
		limit = fallback
	}
	return ClampLimit(limit)
}

// ParseMinSimilarity parses a similarity threshold. Missing and
// non-numeric values fall back to fallback; the result is clamped to [0, 1].
func ParseMinSimilarity(raw string, fallback float64) float64 {
	v, ok := parseNumber(raw)
	if !ok {
		v = fallback
	}
	return math.Min(math.Max(v, 0), 1)
}

// ParseLength parses a declared fingerprint length in hex digits.
// Missing, non-numeric and non-positive values resolve to the length of
// the fingerprint itself.
func ParseLength(raw, fingerprint string) int {
	n, ok := parseNumber(raw)
	if !ok || n < 1 {
		return len(fingerprint)
	}
	return int(math.Min(n, math.MaxInt32))
}

// SplitTags accepts either a JSON array of strings or a comma separated
// list and returns the trimmed, non-empty tags.
func SplitTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			parts = strings.Split(strings.Trim(raw, "[]"), ",")
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.Trim(strings.TrimSpace(p), `"`); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// parseNumber parses an integer or decimal string. Decimal values are
// truncated by integer callers.
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return float64(n), true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
