package cli

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brandlens/internal/adapters/driven/assets/disk"
	"github.com/custodia-labs/brandlens/internal/adapters/driven/fingerprint"
	"github.com/custodia-labs/brandlens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/brandlens/internal/core/services"
)

// testStack is a fully wired in-memory service set.
type testStack struct {
	search   *services.SearchService
	library  *services.LibraryService
	settings *services.SettingsService
	assetDir string
}

func setupTestServices(t *testing.T) *testStack {
	t.Helper()

	store := memory.NewReferenceStore()
	assetDir := t.TempDir()
	assets, err := disk.NewStore(assetDir)
	require.NoError(t, err)
	extractor, err := fingerprint.NewAverageHash(0)
	require.NoError(t, err)

	stack := &testStack{
		search:   services.NewSearchService(store, assets),
		library:  services.NewLibraryService(store, assets),
		settings: services.NewSettingsService(memory.NewConfigStore()),
		assetDir: assetDir,
	}
	stack.library.SetExtractor(extractor, false)

	setServices(&Services{
		Search:      stack.search,
		Library:     stack.library,
		Fingerprint: services.NewFingerprintService(extractor),
		Settings:    stack.settings,
	})
	t.Cleanup(func() {
		setServices(&Services{})
	})
	return stack
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// writePNG writes a w x h image filled by fill and returns its path.
func writePNG(t *testing.T, name string, w, h int, fill func(x, y int) color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill(x, y))
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func white(int, int) color.Color { return color.White }

// splitHalves is black on the left half and white on the right.
func splitHalves(x, _ int) color.Color {
	if x < 8 {
		return color.Black
	}
	return color.White
}
