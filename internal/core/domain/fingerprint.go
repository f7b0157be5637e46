package domain

import (
	"fmt"
	"strings"
)

// AlgorithmAverageHash tags fingerprints produced by the average hash
// extractor. It is the default when a caller omits the algorithm.
const AlgorithmAverageHash = "ahash"

// DefaultGridSize is the side length of the downsampling grid. An 8x8
// grid yields 64 bits packed into 16 hex digits.
const DefaultGridSize = 8

// Grid size bounds accepted by the extractor.
const (
	MinGridSize = 2
	MaxGridSize = 64
)

// Fingerprint is the output of the fingerprint extractor.
type Fingerprint struct {
	// Hex is the packed fingerprint, four bits per lower-case hex digit.
	Hex string `json:"fingerprint"`

	// Bits holds one 0/1 entry per grid cell in row-major order.
	Bits []uint8 `json:"bits"`

	// Length is the number of hex digits in Hex.
	Length int `json:"length"`

	// Algorithm identifies the hashing scheme.
	Algorithm string `json:"algorithm"`

	// Size is the grid side length used during extraction.
	Size int `json:"size"`
}

// NormalizeFingerprint trims and lower-cases a hex fingerprint and checks
// that only hex digits remain.
func NormalizeFingerprint(raw string) (string, error) {
	fp := strings.ToLower(strings.TrimSpace(raw))
	if fp == "" {
		return "", fmt.Errorf("%w: fingerprint is required", ErrValidation)
	}
	for i := 0; i < len(fp); i++ {
		if !isHexDigit(fp[i]) {
			return "", fmt.Errorf("%w: fingerprint must be hexadecimal", ErrValidation)
		}
	}
	return fp, nil
}

// NormalizeAlgorithm lower-cases an algorithm tag, falling back to
// AlgorithmAverageHash when empty.
func NormalizeAlgorithm(raw string) string {
	alg := strings.ToLower(strings.TrimSpace(raw))
	if alg == "" {
		return AlgorithmAverageHash
	}
	return alg
}

// HexLength returns the number of hex digits needed for a grid of the
// given side length.
func HexLength(gridSize int) int {
	return (gridSize*gridSize + 3) / 4
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
}
