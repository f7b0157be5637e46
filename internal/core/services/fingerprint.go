package services

import (
	"context"
	"io"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
	"github.com/custodia-labs/brandlens/internal/logger"
)

// Ensure FingerprintService implements the interface.
var _ driving.FingerprintService = (*FingerprintService)(nil)

// FingerprintService exposes the extractor to driving adapters.
type FingerprintService struct {
	extractor driven.FingerprintExtractor
}

// NewFingerprintService creates a new fingerprint service.
func NewFingerprintService(extractor driven.FingerprintExtractor) *FingerprintService {
	return &FingerprintService{extractor: extractor}
}

// Fingerprint computes the fingerprint of an encoded image.
func (s *FingerprintService) Fingerprint(ctx context.Context, r io.Reader) (*domain.Fingerprint, error) {
	fp, err := s.extractor.Extract(ctx, r)
	if err != nil {
		return nil, err
	}
	logger.Debug("Fingerprint %s (%s, %dx%d grid)", fp.Hex, fp.Algorithm, fp.Size, fp.Size)
	return fp, nil
}

// FingerprintFile computes the fingerprint of the image at path.
func (s *FingerprintService) FingerprintFile(ctx context.Context, path string) (*domain.Fingerprint, error) {
	fp, err := s.extractor.ExtractFile(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("Fingerprint of %s: %s", path, fp.Hex)
	return fp, nil
}
