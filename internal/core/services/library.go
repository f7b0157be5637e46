package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
	"github.com/custodia-labs/brandlens/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.LibraryService = (*LibraryService)(nil)

// LibraryService indexes, lists and removes reference images. It owns the
// pairing between a record in the reference store and its binary asset.
type LibraryService struct {
	store     driven.ReferenceStore
	assets    driven.AssetStore
	extractor driven.FingerprintExtractor
	verify    bool
}

// NewLibraryService creates a new library service.
func NewLibraryService(store driven.ReferenceStore, assets driven.AssetStore) *LibraryService {
	return &LibraryService{
		store:  store,
		assets: assets,
	}
}

// SetExtractor configures server side fingerprinting. When verify is true,
// Add recomputes the fingerprint from the uploaded bytes instead of
// trusting the client value.
func (s *LibraryService) SetExtractor(extractor driven.FingerprintExtractor, verify bool) {
	s.extractor = extractor
	s.verify = verify && extractor != nil
}

// List returns all references, newest first.
func (s *LibraryService) List(ctx context.Context) ([]domain.ReferenceEntry, error) {
	refs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}

	entries := make([]domain.ReferenceEntry, len(refs))
	for i := range refs {
		entries[i] = s.entry(&refs[i])
	}
	return entries, nil
}

// Get returns a single reference.
func (s *LibraryService) Get(ctx context.Context, id string) (*domain.ReferenceEntry, error) {
	ref, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := s.entry(ref)
	return &entry, nil
}

// Add indexes a new reference image.
func (s *LibraryService) Add(ctx context.Context, req driving.AddReferenceRequest) (*domain.ReferenceEntry, error) {
	logger.Section("Index Reference")

	if req.Asset == nil || req.Asset.Reader == nil {
		return nil, fmt.Errorf("%w: image file is required", domain.ErrValidation)
	}

	fields := domain.ReferenceFields{
		Title:                req.Title,
		Description:          req.Description,
		SourceURL:            req.SourceURL,
		Tags:                 req.Tags,
		FingerprintAlgorithm: req.FingerprintAlgorithm,
		MimeType:             req.Asset.MimeType,
		UploadedBy:           req.UploadedBy,
	}
	if fields.MimeType == "" {
		fields.MimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(req.Asset.OriginalName)))
	}

	body := req.Asset.Reader
	if s.verify {
		data, err := s.fingerprintUpload(ctx, req, &fields)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	} else {
		fp, err := domain.NormalizeFingerprint(req.Fingerprint)
		if err != nil {
			return nil, err
		}
		fields.Fingerprint = fp
		fields.FingerprintLength = ParseLength(req.FingerprintLength, fp)
	}

	asset, err := s.assets.Save(ctx, req.Asset.OriginalName, body)
	if err != nil {
		return nil, fmt.Errorf("saving asset: %w", err)
	}
	logger.Debug("Asset written: %s (%d bytes)", asset.FileName, asset.Size)

	// The asset exists on disk now; finish the add even if the caller goes
	// away so that record and asset end up either both present or both gone.
	ctx = context.WithoutCancel(ctx)

	fields.FileName = asset.FileName
	fields.FileSize = asset.Size

	ref, err := s.store.Add(ctx, fields)
	if err != nil {
		s.discardAsset(ctx, asset.FileName)
		return nil, fmt.Errorf("persisting reference: %w", err)
	}

	logger.Info("Indexed reference %s (%s, %d hex digits)", ref.ID, ref.FingerprintAlgorithm, ref.FingerprintLength)
	entry := s.entry(ref)
	return &entry, nil
}

// Delete removes a reference and its asset.
func (s *LibraryService) Delete(ctx context.Context, id string) (*domain.ReferenceImage, error) {
	ref, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("deleting reference: %w", err)
	}
	if ref == nil {
		logger.Debug("Delete: reference %s not found", id)
		return nil, nil
	}

	if ref.FileName != "" {
		if err := s.assets.Remove(context.WithoutCancel(ctx), ref.FileName); err != nil {
			logger.Warn("Reference %s deleted but asset %s could not be removed: %v", ref.ID, ref.FileName, err)
		}
	}
	logger.Info("Deleted reference %s", ref.ID)
	return ref, nil
}

// Purge permanently removes soft deleted references.
func (s *LibraryService) Purge(ctx context.Context) (int64, error) {
	purger, ok := s.store.(driven.Purger)
	if !ok {
		logger.Debug("Purge: store deletes immediately, nothing to purge")
		return 0, nil
	}

	n, err := purger.Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("purging references: %w", err)
	}
	logger.Info("Purged %d deleted references", n)
	return n, nil
}

// fingerprintUpload buffers the upload, computes its fingerprint and
// stores the server value in fields.
func (s *LibraryService) fingerprintUpload(
	ctx context.Context, req driving.AddReferenceRequest, fields *domain.ReferenceFields,
) ([]byte, error) {
	data, err := io.ReadAll(req.Asset.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}

	fp, err := s.extractor.Extract(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if claimed, err := domain.NormalizeFingerprint(req.Fingerprint); err == nil && claimed != fp.Hex {
		logger.Warn("Client fingerprint %s differs from computed %s for %q; storing computed value",
			claimed, fp.Hex, req.Asset.OriginalName)
	}

	fields.Fingerprint = fp.Hex
	fields.FingerprintAlgorithm = fp.Algorithm
	fields.FingerprintLength = fp.Length
	return data, nil
}

// discardAsset removes an asset written for a failed add.
func (s *LibraryService) discardAsset(ctx context.Context, fileName string) {
	if err := s.assets.Remove(ctx, fileName); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("Failed to remove orphaned asset %s: %v", fileName, err)
	}
}

func (s *LibraryService) entry(ref *domain.ReferenceImage) domain.ReferenceEntry {
	return domain.ReferenceEntry{
		ReferenceImage: *ref,
		AssetURL:       assetURL(s.assets, ref.FileName),
	}
}
