// Package mcp provides an MCP (Model Context Protocol) server adapter for brandlens.
// It lets AI assistants fingerprint images and look up visually similar
// brand assets in the reference library.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrNoQuery is returned when a search supplies neither a fingerprint nor an image.
var ErrNoQuery = errors.New("either fingerprint or image_path is required")

// ErrNoFingerprintService is returned when a tool needs local extraction
// but the server was built without it.
var ErrNoFingerprintService = errors.New("image fingerprinting is not available")
