package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

func ref(id, fp string) domain.ReferenceImage {
	return domain.ReferenceImage{
		ID:                   id,
		Fingerprint:          fp,
		FingerprintAlgorithm: domain.AlgorithmAverageHash,
		FingerprintLength:    len(fp),
	}
}

func TestNibbleBits(t *testing.T) {
	for v := 0; v < 16; v++ {
		want := 0
		for b := v; b > 0; b >>= 1 {
			want += b & 1
		}
		assert.Equal(t, want, nibbleBits[v], "nibble %x", v)
	}
}

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		length int
		want   int
	}{
		{"identical", "ff00ff00", "ff00ff00", 8, 0},
		{"one bit", "ff00ff00", "ff00ff01", 8, 1},
		{"all bits", "0000", "ffff", 4, 16},
		{"window shorter than strings", "ff00ff00", "00000000", 2, 8},
		{"shorter string padded with zero", "ff", "ffff", 4, 8},
		{"upper case digits", "FF", "ff", 2, 0},
		{"empty window", "ff", "00", 0, 0},
		{"window past both strings", "f0", "0f", 1 << 30, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HammingDistance(tt.a, tt.b, tt.length))
			assert.Equal(t, tt.want, HammingDistance(tt.b, tt.a, tt.length), "distance is symmetric")
		})
	}
}

func TestCompare_LengthClampsToShorterSide(t *testing.T) {
	query := domain.SearchQuery{Fingerprint: "ffffffff", Length: 8}
	candidate := ref("a", "ffffffff")
	candidate.FingerprintLength = 4

	cmp := Compare(query, &candidate)

	assert.Equal(t, 16, cmp.BitCount)
	assert.Equal(t, 0, cmp.Distance)
	assert.Equal(t, 1.0, cmp.Similarity)
}

func TestCompare_ZeroBitsScoresZero(t *testing.T) {
	query := domain.SearchQuery{Fingerprint: "ff", Length: 2}
	candidate := domain.ReferenceImage{FingerprintAlgorithm: domain.AlgorithmAverageHash}

	cmp := Compare(query, &candidate)

	assert.Equal(t, 0, cmp.BitCount)
	assert.Equal(t, 0.0, cmp.Similarity)
}

func TestCompare_RoundsToFourDecimals(t *testing.T) {
	query := domain.SearchQuery{Fingerprint: "ff00ff00", Length: 8}
	candidate := ref("b", "ff00ff01")

	cmp := Compare(query, &candidate)

	assert.Equal(t, 32, cmp.BitCount)
	assert.Equal(t, 1, cmp.Distance)
	assert.Equal(t, 0.9688, cmp.Similarity)
}

func TestCompare_HugeDeclaredLengths(t *testing.T) {
	query := domain.SearchQuery{Fingerprint: "ff00ff00", Length: 1_000_000_000}
	candidate := ref("a", "ff00ff00")
	candidate.FingerprintLength = 1_000_000_000

	cmp := Compare(query, &candidate)

	assert.Equal(t, 4_000_000_000, cmp.BitCount)
	assert.Equal(t, 0, cmp.Distance)
	assert.Equal(t, 1.0, cmp.Similarity)
}

func TestSimilarityEngine_Rank_ThresholdIsMonotonic(t *testing.T) {
	candidates := []domain.ReferenceImage{
		ref("exact", "ff00ff00"),
		ref("one", "ff00ff01"),
		ref("byte", "ff00ffff"),
		ref("half", "ffff0000"),
		ref("inverse", "00ff00ff"),
		ref("short", "ff00"),
		ref("long", "ff00ff00ff00ff00"),
	}

	prev := map[string]bool{}
	for _, c := range candidates {
		prev[c.ID] = true
	}
	for step := 0; step <= 20; step++ {
		threshold := float64(step) / 20
		matches, _, err := SimilarityEngine{}.Rank(domain.SearchQuery{
			Fingerprint:   "ff00ff00",
			MinSimilarity: threshold,
			Limit:         domain.MaxSearchLimit,
		}, candidates)
		require.NoError(t, err)
		require.LessOrEqual(t, len(matches), len(prev), "threshold %.2f", threshold)

		current := map[string]bool{}
		for _, m := range matches {
			assert.GreaterOrEqual(t, m.Similarity, threshold)
			assert.True(t, prev[m.ID], "%s reappeared at threshold %.2f", m.ID, threshold)
			current[m.ID] = true
		}
		prev = current
	}
	assert.Equal(t, map[string]bool{"exact": true, "short": true, "long": true}, prev)
}

func TestSimilarityEngine_Rank_OrdersAndFilters(t *testing.T) {
	candidates := []domain.ReferenceImage{
		ref("b", "ff00ff01"),
		ref("a", "ff00ff00"),
		ref("c", "00ff00ff"),
	}

	matches, summary, err := SimilarityEngine{}.Rank(domain.SearchQuery{
		Fingerprint:   "FF00FF00",
		MinSimilarity: 0.9,
		Limit:         6,
	}, candidates)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, 1.0, matches[0].Similarity)
	assert.Equal(t, "b", matches[1].ID)
	assert.Equal(t, 0.9688, matches[1].Similarity)
	assert.Equal(t, 3, summary.Evaluated)
	assert.Equal(t, 3, summary.TotalCandidates)
	assert.Equal(t, 6, summary.Limit)
	assert.Equal(t, 0.9, summary.MinSimilarity)
}

func TestSimilarityEngine_Rank_ExactThreshold(t *testing.T) {
	candidates := []domain.ReferenceImage{ref("a", "ff00ff00"), ref("b", "ff00ff01")}

	matches, _, err := SimilarityEngine{}.Rank(domain.SearchQuery{
		Fingerprint:   "ff00ff00",
		MinSimilarity: 1.0,
		Limit:         10,
	}, candidates)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

func TestSimilarityEngine_Rank_SkipsOtherAlgorithms(t *testing.T) {
	other := ref("p", "ff00ff00")
	other.FingerprintAlgorithm = "phash"
	candidates := []domain.ReferenceImage{other, ref("a", "00000000")}

	matches, summary, err := SimilarityEngine{}.Rank(domain.SearchQuery{
		Fingerprint: "ff00ff00",
		Limit:       10,
	}, candidates)

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, 1, summary.Evaluated)
}

func TestSimilarityEngine_Rank_AlgorithmCaseInsensitive(t *testing.T) {
	candidate := ref("a", "ff")
	candidate.FingerprintAlgorithm = "AHASH"

	matches, _, err := SimilarityEngine{}.Rank(domain.SearchQuery{
		Fingerprint: "ff",
		Algorithm:   "AHash",
		Limit:       10,
	}, []domain.ReferenceImage{candidate})

	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestSimilarityEngine_Rank_StableTies(t *testing.T) {
	candidates := []domain.ReferenceImage{
		ref("first", "ff"),
		ref("second", "ff"),
		ref("third", "ff"),
	}

	matches, _, err := SimilarityEngine{}.Rank(domain.SearchQuery{Fingerprint: "ff", Limit: 10}, candidates)

	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "first", matches[0].ID)
	assert.Equal(t, "second", matches[1].ID)
	assert.Equal(t, "third", matches[2].ID)
}

func TestSimilarityEngine_Rank_LimitBounds(t *testing.T) {
	var candidates []domain.ReferenceImage
	for i := 0; i < 60; i++ {
		candidates = append(candidates, ref(fmt.Sprintf("r%d", i), fmt.Sprintf("%02x", i)))
	}

	tests := []struct {
		limit int
		want  int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{7, 7},
		{50, 50},
		{500, 50},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit %d", tt.limit), func(t *testing.T) {
			matches, summary, err := SimilarityEngine{}.Rank(domain.SearchQuery{
				Fingerprint: "00",
				Limit:       tt.limit,
			}, candidates)
			require.NoError(t, err)
			assert.Len(t, matches, tt.want)
			assert.Equal(t, tt.want, summary.Limit)
		})
	}
}

func TestSimilarityEngine_Rank_DescendingSimilarity(t *testing.T) {
	var candidates []domain.ReferenceImage
	for i := 0; i < 16; i++ {
		candidates = append(candidates, ref(fmt.Sprintf("r%d", i), fmt.Sprintf("%x0", i)))
	}

	matches, _, err := SimilarityEngine{}.Rank(domain.SearchQuery{Fingerprint: "00", Limit: 50}, candidates)

	require.NoError(t, err)
	require.Len(t, matches, 16)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
	}
}

func TestSimilarityEngine_Rank_EmptyResultIsNotNil(t *testing.T) {
	matches, summary, err := SimilarityEngine{}.Rank(domain.SearchQuery{
		Fingerprint:   "ff",
		MinSimilarity: 1,
		Limit:         10,
	}, nil)

	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
	assert.Equal(t, 0, summary.Evaluated)
}

func TestSimilarityEngine_Rank_InvalidFingerprint(t *testing.T) {
	_, _, err := SimilarityEngine{}.Rank(domain.SearchQuery{Fingerprint: "zz"}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 1, ClampLimit(-10))
	assert.Equal(t, 1, ClampLimit(0))
	assert.Equal(t, 25, ClampLimit(25))
	assert.Equal(t, domain.MaxSearchLimit, ClampLimit(1000))
}
