package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

// nibbleBits maps a 4-bit value to its population count.
var nibbleBits = [16]int{0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 4}

// Comparison is the outcome of scoring one candidate against a query.
type Comparison struct {
	Similarity float64
	Distance   int
	BitCount   int
}

// HammingDistance counts differing bits over the first length hex digits
// of a and b. Either string is right-padded with '0' digits when shorter
// than the window. Digits that are not hex count as zero. Padding never
// differs, so the scan stops at the end of the longer string.
func HammingDistance(a, b string, length int) int {
	length = min(length, max(len(a), len(b)))
	distance := 0
	for i := 0; i < length; i++ {
		distance += nibbleBits[nibbleAt(a, i)^nibbleAt(b, i)]
	}
	return distance
}

func nibbleAt(s string, i int) byte {
	if i >= len(s) {
		return 0
	}
	c := s[i]
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// Compare scores a candidate against a normalised query. The compared
// window is the shorter of the query's declared length and the
// candidate's declared (or actual) length.
func Compare(query domain.SearchQuery, candidate *domain.ReferenceImage) Comparison {
	queryLen := query.Length
	if queryLen <= 0 {
		queryLen = len(query.Fingerprint)
	}
	window := min(queryLen, candidate.EffectiveLength())
	bits := window * 4
	if bits <= 0 {
		return Comparison{}
	}

	distance := HammingDistance(query.Fingerprint, candidate.Fingerprint, window)
	return Comparison{
		Similarity: roundSimilarity(1 - float64(distance)/float64(bits)),
		Distance:   distance,
		BitCount:   bits,
	}
}

// roundSimilarity rounds to four decimal places.
func roundSimilarity(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// SimilarityEngine ranks a candidate set against a query by linear scan.
// At library sizes of a few thousand references the scan is cheap; larger
// libraries need a bucketed index behind driven.CandidateSource.
type SimilarityEngine struct{}

// Rank scores every candidate sharing the query's algorithm, keeps those at
// or above MinSimilarity, sorts them by descending similarity (ties keep
// candidate order) and truncates to the query limit.
func (SimilarityEngine) Rank(
	query domain.SearchQuery, candidates []domain.ReferenceImage,
) ([]domain.MatchResult, domain.SearchSummary, error) {
	fp, err := domain.NormalizeFingerprint(query.Fingerprint)
	if err != nil {
		return nil, domain.SearchSummary{}, err
	}
	query.Fingerprint = fp
	query.Algorithm = domain.NormalizeAlgorithm(query.Algorithm)
	query.Limit = ClampLimit(query.Limit)

	var (
		matches   []domain.MatchResult
		evaluated int
	)
	for i := range candidates {
		candidate := &candidates[i]
		// Other algorithms are skipped, not scored as zero.
		if domain.NormalizeAlgorithm(candidate.FingerprintAlgorithm) != query.Algorithm {
			continue
		}
		evaluated++

		cmp := Compare(query, candidate)
		if cmp.Similarity < query.MinSimilarity {
			continue
		}
		matches = append(matches, domain.MatchResult{
			ReferenceEntry: domain.ReferenceEntry{ReferenceImage: *candidate},
			Similarity:     cmp.Similarity,
			Distance:       cmp.Distance,
			BitCount:       cmp.BitCount,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > query.Limit {
		matches = matches[:query.Limit]
	}
	if matches == nil {
		matches = []domain.MatchResult{}
	}

	return matches, domain.SearchSummary{
		TotalCandidates: evaluated,
		Evaluated:       evaluated,
		MinSimilarity:   query.MinSimilarity,
		Limit:           query.Limit,
	}, nil
}

// ClampLimit bounds a limit to [1, domain.MaxSearchLimit].
func ClampLimit(limit int) int {
	return min(max(limit, 1), domain.MaxSearchLimit)
}

