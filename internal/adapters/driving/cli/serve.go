package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brandlens/internal/adapters/driving/rest"
	"github.com/custodia-labs/brandlens/internal/logger"
)

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the reference image API and uploaded assets over HTTP.

Routes:
  GET    /api/health
  GET    /api/reference-images
  POST   /api/reference-images
  DELETE /api/reference-images/{id}
  POST   /api/reference-images/search
  GET    /uploads/reference-images/{file}

Search defaults are reloaded when config.toml changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload configuration changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	server, err := rest.NewServer(libraryService, searchService, rest.OptionsFromSettings(settings))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger.SetTimestamps(true)

	if watchConfig != nil && !serveNoWatch {
		watcher, err := watchConfig(ctx, reloadSearchDefaults)
		if err != nil {
			logger.Warn("Configuration changes will not be picked up: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "brandlens listening on %s\n", addr)
	return server.Run(ctx, addr)
}

// reloadSearchDefaults applies search defaults from freshly loaded settings.
// Other settings need a restart.
func reloadSearchDefaults() {
	setter, ok := searchService.(defaultsSetter)
	if !ok || settingsService == nil {
		return
	}

	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("Ignoring configuration change: %v", err)
		return
	}
	setter.SetDefaults(settings.Search)
	logger.Info("Search defaults now min_similarity=%g limit=%d",
		settings.Search.MinSimilarity, settings.Search.Limit)
}
