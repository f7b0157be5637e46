package domain

// Search limits.
const (
	// DefaultSearchLimit is used when a caller omits the limit or sends
	// something that is not a number.
	DefaultSearchLimit = 10

	// MaxSearchLimit is the hard upper bound on returned matches.
	MaxSearchLimit = 50
)

// SearchQuery is a typed, range-checked similarity query. It only exists
// for the duration of one search call.
type SearchQuery struct {
	// Fingerprint is the normalised hex fingerprint to match.
	Fingerprint string

	// Algorithm is the lower-cased algorithm tag.
	Algorithm string

	// Length is the declared hex digit count of Fingerprint.
	Length int

	// MinSimilarity drops matches scoring below it. Range [0,1].
	MinSimilarity float64

	// Limit bounds the number of matches. Range [1,50].
	Limit int
}

// MatchResult is a reference image scored against a query.
type MatchResult struct {
	ReferenceEntry

	// Similarity is 1 - Distance/BitCount rounded to four decimals.
	Similarity float64 `json:"similarity"`

	// Distance is the Hamming distance over the compared window.
	Distance int `json:"distance"`

	// BitCount is the number of bits actually compared.
	BitCount int `json:"bitCount"`
}

// SearchSummary reports execution statistics for a search.
type SearchSummary struct {
	// TotalCandidates counts references that share the query algorithm.
	TotalCandidates int `json:"totalCandidates"`

	// Evaluated counts references that were scored.
	Evaluated int `json:"evaluated"`

	MinSimilarity float64 `json:"minSimilarity"`

	// Limit is the clamped limit actually applied.
	Limit int `json:"limit"`

	ExecutionTimeMs int64 `json:"executionTimeMs"`
}

// QueryEcho repeats the normalised query back to the caller.
type QueryEcho struct {
	Fingerprint string `json:"fingerprint"`
	Algorithm   string `json:"algorithm"`
	Length      int    `json:"length"`
}

// SearchResponse is the envelope returned by a search.
type SearchResponse struct {
	Query   QueryEcho     `json:"query"`
	Matches []MatchResult `json:"matches"`
	Summary SearchSummary `json:"summary"`
}
