package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/custodia-labs/brandlens/internal/adapters/driven/assets/disk"
	"github.com/custodia-labs/brandlens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/brandlens/internal/adapters/driven/fingerprint"
	"github.com/custodia-labs/brandlens/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/brandlens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/brandlens/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/brandlens/internal/adapters/driving/cli"
	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
	"github.com/custodia-labs/brandlens/internal/core/services"
	"github.com/custodia-labs/brandlens/internal/logger"
)

// bootstrap wires driven adapters into the core services.
func bootstrap(configDir string) (*cli.Services, error) {
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolving config directory: %w", err)
		}
		configDir = dir
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if settings.Storage.DataDir == "" {
		settings.Storage.DataDir = filepath.Join(configDir, "data")
	}
	logger.Debug("Config: %s", configStore.Path())
	logger.Debug("Data dir: %s (%s)", settings.Storage.DataDir, settings.Storage.Backend)

	store, err := openReferenceStore(settings.Storage)
	if err != nil {
		return nil, err
	}

	assets, err := disk.NewStore(settings.Storage.ResolvedAssetDir())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("opening asset directory: %w", err)
	}

	extractor, err := fingerprint.NewAverageHash(settings.Fingerprint.GridSize)
	if err != nil {
		store.Close()
		return nil, err
	}

	searchService := services.NewSearchService(store, assets)
	searchService.SetDefaults(settings.Search)

	libraryService := services.NewLibraryService(store, assets)
	libraryService.SetExtractor(extractor, settings.Library.VerifyFingerprints)

	return &cli.Services{
		Search:      searchService,
		Library:     libraryService,
		Fingerprint: services.NewFingerprintService(extractor),
		Settings:    settingsService,
		WatchConfig: func(ctx context.Context, onChange func()) (io.Closer, error) {
			w, err := file.NewWatcher(configStore, onChange)
			if err != nil {
				return nil, err
			}
			if err := w.Start(ctx); err != nil {
				w.Close()
				return nil, err
			}
			return w, nil
		},
		Close: store.Close,
	}, nil
}

// openReferenceStore opens the configured reference library backend.
func openReferenceStore(cfg domain.StorageSettings) (driven.ReferenceStore, error) {
	switch cfg.Backend {
	case domain.StorageJSON:
		store, err := jsonfile.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening reference library: %w", err)
		}
		return store, nil
	case domain.StorageMemory:
		logger.Warn("Using in-memory reference library; references are lost on exit")
		return memory.NewReferenceStore(), nil
	default:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening reference library: %w", err)
		}
		return store, nil
	}
}
