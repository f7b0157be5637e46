package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates a missing or malformed field, such as a
	// fingerprint that is absent or not hexadecimal.
	ErrValidation = errors.New("validation failed")

	// ErrStorage indicates the durable store could not be read or written.
	ErrStorage = errors.New("storage error")

	// Extraction Errors.

	// ErrNoImageData indicates the extractor was given no bytes.
	ErrNoImageData = errors.New("no image data")

	// ErrDecode indicates the image bytes could not be decoded or rasterised.
	ErrDecode = errors.New("image decode failed")

	// ErrIO indicates the image source could not be read.
	ErrIO = errors.New("image read failed")
)

// IsClientError reports whether err stems from bad caller input.
// Decode failures count as client errors because they are caused by the
// supplied bytes, not by the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDecode) ||
		errors.Is(err, ErrNoImageData)
}
