package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
	"github.com/custodia-labs/brandlens/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService validates search requests, runs the similarity engine over
// the reference library and assembles the response envelope.
type SearchService struct {
	candidates driven.CandidateSource
	assets     driven.AssetStore
	engine     SimilarityEngine

	mu       sync.RWMutex
	defaults domain.SearchSettings
}

// NewSearchService creates a new search service.
// The assets parameter is optional (can be nil); without it matches carry
// no asset URL.
func NewSearchService(candidates driven.CandidateSource, assets driven.AssetStore) *SearchService {
	return &SearchService{
		candidates: candidates,
		assets:     assets,
		defaults:   domain.DefaultAppSettings().Search,
	}
}

// SetDefaults replaces the parameters applied when a request omits them.
// Safe to call while searches are running.
func (s *SearchService) SetDefaults(defaults domain.SearchSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = defaults
}

// Defaults returns the current default parameters.
func (s *SearchService) Defaults() domain.SearchSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// Search ranks the reference library against the request.
func (s *SearchService) Search(ctx context.Context, req driving.SearchRequest) (*domain.SearchResponse, error) {
	logger.Section("Similarity Search")
	start := time.Now()

	query, err := s.buildQuery(req)
	if err != nil {
		logger.Debug("Rejected query: %v", err)
		return nil, err
	}
	logger.Debug("Query: fingerprint=%s algorithm=%s length=%d min=%.4f limit=%d",
		query.Fingerprint, query.Algorithm, query.Length, query.MinSimilarity, query.Limit)

	candidates, err := s.candidates.List(ctx)
	if err != nil {
		logger.Warn("Listing reference library failed: %v", err)
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	logger.Debug("Library size: %d", len(candidates))

	matches, summary, err := s.engine.Rank(query, candidates)
	if err != nil {
		return nil, err
	}

	for i := range matches {
		matches[i].AssetURL = assetURL(s.assets, matches[i].FileName)
	}
	summary.ExecutionTimeMs = time.Since(start).Milliseconds()

	logger.Info("Search evaluated %d candidates, returned %d matches in %dms",
		summary.Evaluated, len(matches), summary.ExecutionTimeMs)

	return &domain.SearchResponse{
		Query: domain.QueryEcho{
			Fingerprint: query.Fingerprint,
			Algorithm:   query.Algorithm,
			Length:      query.Length,
		},
		Matches: matches,
		Summary: summary,
	}, nil
}

// buildQuery is the single place where wire parameters become a typed query.
func (s *SearchService) buildQuery(req driving.SearchRequest) (domain.SearchQuery, error) {
	fp, err := domain.NormalizeFingerprint(req.Fingerprint)
	if err != nil {
		return domain.SearchQuery{}, err
	}

	defaults := s.Defaults()
	return domain.SearchQuery{
		Fingerprint:   fp,
		Algorithm:     domain.NormalizeAlgorithm(req.Algorithm),
		Length:        ParseLength(req.Length, fp),
		MinSimilarity: ParseMinSimilarity(req.MinSimilarity, defaults.MinSimilarity),
		Limit:         ParseLimit(req.Limit, defaults.Limit),
	}, nil
}

// assetURL resolves the public URL of an asset, or "" when unknown.
func assetURL(assets driven.AssetStore, fileName string) string {
	if assets == nil || fileName == "" {
		return ""
	}
	return assets.URL(fileName)
}
