// Package domain defines the core business entities for brandlens.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ReferenceImage: An indexed brand asset with its perceptual fingerprint
//   - Fingerprint: The output of the fingerprint extractor
//   - SearchQuery: A typed, range-checked similarity query
//   - MatchResult: A reference image scored against a query
//   - Settings: Runtime configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
