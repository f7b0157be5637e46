package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	resp    *domain.SearchResponse
	err     error
	lastReq driving.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req driving.SearchRequest) (*domain.SearchResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &domain.SearchResponse{
			Query:   domain.QueryEcho{Fingerprint: req.Fingerprint, Algorithm: domain.NormalizeAlgorithm(req.Algorithm)},
			Matches: []domain.MatchResult{},
		}, nil
	}
	return m.resp, nil
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	entries []domain.ReferenceEntry
	err     error
}

func (m *mockLibraryService) List(_ context.Context) ([]domain.ReferenceEntry, error) {
	return m.entries, m.err
}

func (m *mockLibraryService) Get(_ context.Context, id string) (*domain.ReferenceEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.entries {
		if m.entries[i].ID == id {
			return &m.entries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockLibraryService) Add(_ context.Context, _ driving.AddReferenceRequest) (*domain.ReferenceEntry, error) {
	return nil, m.err
}

func (m *mockLibraryService) Delete(_ context.Context, _ string) (*domain.ReferenceImage, error) {
	return nil, m.err
}

func (m *mockLibraryService) Purge(_ context.Context) (int64, error) {
	return 0, m.err
}

// mockFingerprintService is a mock implementation of driving.FingerprintService.
type mockFingerprintService struct {
	fp       *domain.Fingerprint
	err      error
	lastPath string
}

func (m *mockFingerprintService) Fingerprint(_ context.Context, _ io.Reader) (*domain.Fingerprint, error) {
	return m.fp, m.err
}

func (m *mockFingerprintService) FingerprintFile(_ context.Context, path string) (*domain.Fingerprint, error) {
	m.lastPath = path
	return m.fp, m.err
}
