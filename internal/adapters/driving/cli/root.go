// Package cli provides the brandlens command line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driving"
	"github.com/custodia-labs/brandlens/internal/logger"
)

// version is set at build time via -ldflags "-X ...cli.version=...".
var version = "dev"

// Services holds the driving ports the commands operate on.
type Services struct {
	Search      driving.SearchService
	Library     driving.LibraryService
	Fingerprint driving.FingerprintService
	Settings    driving.SettingsService

	// WatchConfig starts watching the configuration file and calls onChange
	// after every successful reload. Optional.
	WatchConfig func(ctx context.Context, onChange func()) (io.Closer, error)

	// Close releases stores opened by the bootstrap. Optional.
	Close func() error
}

// Bootstrap builds the services once flags are parsed.
type Bootstrap func(configDir string) (*Services, error)

// defaultsSetter is implemented by search services whose defaults can be
// replaced at runtime.
type defaultsSetter interface {
	SetDefaults(domain.SearchSettings)
}

var (
	verbose   bool
	configDir string

	bootstrap Bootstrap
	closeFn   func() error

	searchService      driving.SearchService
	libraryService     driving.LibraryService
	fingerprintService driving.FingerprintService
	settingsService    driving.SettingsService
	watchConfig        func(ctx context.Context, onChange func()) (io.Closer, error)
)

var rootCmd = &cobra.Command{
	Use:   "brandlens",
	Short: "Find visually similar brand assets",
	Long: `brandlens keeps a library of reference brand images, each indexed by a
perceptual fingerprint, and finds the references most similar to a query
image or fingerprint.

Run 'brandlens serve' to expose the HTTP API, or use the ref and search
commands to work with the library directly.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.brandlens)")
}

// Execute runs the root command with services built by b.
func Execute(b Bootstrap) error {
	bootstrap = b
	defer teardown() //nolint:errcheck

	rootCmd.SetOut(os.Stdout)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// setup enables logging and builds services unless they are already
// injected.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations["bootstrap"] == "skip" || bootstrap == nil || libraryService != nil {
		return nil
	}

	svc, err := bootstrap(configDir)
	if err != nil {
		return err
	}
	setServices(svc)
	return nil
}

func setServices(svc *Services) {
	searchService = svc.Search
	libraryService = svc.Library
	fingerprintService = svc.Fingerprint
	settingsService = svc.Settings
	watchConfig = svc.WatchConfig
	closeFn = svc.Close
}

func teardown() error {
	if closeFn == nil {
		return nil
	}
	fn := closeFn
	closeFn = nil
	return fn()
}

var (
	errSearchNotConfigured      = errors.New("search service not configured")
	errLibraryNotConfigured     = errors.New("library service not configured")
	errFingerprintNotConfigured = errors.New("fingerprint service not configured")
	errSettingsNotConfigured    = errors.New("settings service not configured")
)
