package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change brandlens configuration.

Values are stored in config.toml in the configuration directory. A running
'brandlens serve' picks up search defaults without a restart.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [key]",
	Short: "Restore a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	st := stylesFor(cmd.OutOrStdout())
	section := func(name string) {
		cmd.Println(st.Title.Render("[" + name + "]"))
	}

	section("Storage")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	if settings.Storage.DataDir == "" {
		cmd.Println("  Data dir: (default)")
	} else {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
		cmd.Printf("  Asset dir: %s\n", settings.Storage.ResolvedAssetDir())
	}
	cmd.Println()

	section("Fingerprint")
	cmd.Printf("  Grid size: %d\n", settings.Fingerprint.GridSize)
	cmd.Println()

	section("Search")
	cmd.Printf("  Min similarity: %g\n", settings.Search.MinSimilarity)
	cmd.Printf("  Limit: %d\n", settings.Search.Limit)
	cmd.Println()

	section("Server")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  Rate limit: %g req/s (burst %d)\n", settings.Server.RequestsPerSecond, settings.Server.Burst)
	cmd.Printf("  Max upload: %d MB\n", settings.Server.MaxUploadMB)
	cmd.Println()

	section("Library")
	cmd.Printf("  Verify fingerprints: %t\n", settings.Library.VerifyFingerprints)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		if !isKnownKey(args[0]) {
			cmd.PrintErrf("Known keys: %s\n", strings.Join(settingsService.Keys(), ", "))
		}
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	if err := settingsService.Unset(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}
	cmd.Printf("%s restored to default\n", args[0])
	return nil
}

func isKnownKey(key string) bool {
	return slices.Contains(settingsService.Keys(), key)
}
