package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyStorageBackend    = "storage.backend"
	keyStorageDataDir    = "storage.data_dir"
	keyStorageAssetDir   = "storage.asset_dir"
	keyGridSize          = "fingerprint.grid_size"
	keyMinSimilarity     = "search.min_similarity"
	keySearchLimit       = "search.limit"
	keyServerAddr        = "server.addr"
	keyRequestsPerSecond = "server.requests_per_second"
	keyBurst             = "server.burst"
	keyMaxUploadMB       = "server.max_upload_mb"
	keyVerify            = "library.verify_fingerprints"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
	kindBool
)

// settingKeys lists every recognised key in display order.
var settingKeys = []struct {
	key  string
	kind settingKind
}{
	{keyStorageBackend, kindString},
	{keyStorageDataDir, kindString},
	{keyStorageAssetDir, kindString},
	{keyGridSize, kindInt},
	{keyMinSimilarity, kindFloat},
	{keySearchLimit, kindInt},
	{keyServerAddr, kindString},
	{keyRequestsPerSecond, kindFloat},
	{keyBurst, kindInt},
	{keyMaxUploadMB, kindInt},
	{keyVerify, kindBool},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Missing keys take their default; the result is validated.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Storage: domain.StorageSettings{
			Backend:  domain.StorageBackend(s.getString(keyStorageBackend, defaults.Storage.Backend.String())),
			DataDir:  s.configStore.GetString(keyStorageDataDir),
			AssetDir: s.configStore.GetString(keyStorageAssetDir),
		},
		Fingerprint: domain.FingerprintSettings{
			GridSize: s.getInt(keyGridSize, defaults.Fingerprint.GridSize),
		},
		Search: domain.SearchSettings{
			MinSimilarity: s.getFloat(keyMinSimilarity, defaults.Search.MinSimilarity),
			Limit:         s.getInt(keySearchLimit, defaults.Search.Limit),
		},
		Server: domain.ServerSettings{
			Addr:              s.getString(keyServerAddr, defaults.Server.Addr),
			RequestsPerSecond: s.getFloat(keyRequestsPerSecond, defaults.Server.RequestsPerSecond),
			Burst:             s.getInt(keyBurst, defaults.Server.Burst),
			MaxUploadMB:       s.getInt(keyMaxUploadMB, defaults.Server.MaxUploadMB),
		},
		Library: domain.LibrarySettings{
			VerifyFingerprints: s.getBool(keyVerify, defaults.Library.VerifyFingerprints),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// Set parses value according to the key's type, checks that the resulting
// settings are valid and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := kindOf(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	typed, err := parseSetting(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	previous, existed := s.configStore.Get(key)
	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	if _, err := s.Get(); err != nil {
		s.restore(key, previous, existed)
		return err
	}
	return nil
}

// Unset removes a key so that its default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := kindOf(key); !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Delete(key)
}

// Keys returns the recognised setting keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// restore puts back a value overwritten by a rejected Set.
func (s *SettingsService) restore(key string, previous any, existed bool) {
	if existed {
		_ = s.configStore.Set(key, previous)
		return
	}
	_ = s.configStore.Delete(key)
}

func kindOf(key string) (settingKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

func parseSetting(kind settingKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		return int64(n), nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", value)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", value)
		}
		return b, nil
	default:
		return value, nil
	}
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	switch val.(type) {
	case float64, float32, int64, int:
		return s.configStore.GetFloat(key)
	default:
		return defaultVal
	}
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}
	if _, ok := val.(bool); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
