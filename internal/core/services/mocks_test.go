package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockAssetStore implements driven.AssetStore in memory.
type mockAssetStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	seq     int
	saveErr error
}

func newMockAssetStore() *mockAssetStore {
	return &mockAssetStore{files: make(map[string][]byte)}
}

func (m *mockAssetStore) Save(_ context.Context, _ string, r io.Reader) (*domain.StoredAsset, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	name := fmt.Sprintf("asset-%d.png", m.seq)
	m.files[name] = data
	return &domain.StoredAsset{FileName: name, Size: int64(len(data))}, nil
}

func (m *mockAssetStore) Remove(_ context.Context, fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[fileName]; !ok {
		return domain.ErrNotFound
	}
	delete(m.files, fileName)
	return nil
}

func (m *mockAssetStore) URL(fileName string) string {
	return "/uploads/reference-images/" + fileName
}

func (m *mockAssetStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// failingReferenceStore wraps a store and fails writes or reads on demand.
type failingReferenceStore struct {
	driven.ReferenceStore
	addErr  error
	listErr error
}

func (f *failingReferenceStore) Add(ctx context.Context, fields domain.ReferenceFields) (*domain.ReferenceImage, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	return f.ReferenceStore.Add(ctx, fields)
}

func (f *failingReferenceStore) List(ctx context.Context) ([]domain.ReferenceImage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ReferenceStore.List(ctx)
}

// mockExtractor implements driven.FingerprintExtractor with a fixed result.
type mockExtractor struct {
	hex     string
	err     error
	lastLen int
}

func (m *mockExtractor) Extract(_ context.Context, r io.Reader) (*domain.Fingerprint, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.lastLen = len(data)
	return &domain.Fingerprint{
		Hex:       m.hex,
		Length:    len(m.hex),
		Algorithm: domain.AlgorithmAverageHash,
		Size:      domain.DefaultGridSize,
	}, nil
}

func (m *mockExtractor) ExtractFile(ctx context.Context, _ string) (*domain.Fingerprint, error) {
	return m.Extract(ctx, bytes.NewReader(nil))
}

func (m *mockExtractor) Algorithm() string {
	return domain.AlgorithmAverageHash
}

var errBoom = errors.New("boom")

// purgingReferenceStore adds driven.Purger to a store.
type purgingReferenceStore struct {
	driven.ReferenceStore
	purged   int64
	purgeErr error
}

func (p *purgingReferenceStore) Purge(context.Context) (int64, error) {
	if p.purgeErr != nil {
		return 0, p.purgeErr
	}
	return p.purged, nil
}
