package disk

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brandlens/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "uploads", "reference-images"))
	require.NoError(t, err)
	return store
}

func TestNewStore_RequiresDir(t *testing.T) {
	_, err := NewStore("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Save(t *testing.T) {
	store := newTestStore(t)

	asset, err := store.Save(context.Background(), "Logo.PNG", strings.NewReader("image-bytes"))

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(asset.FileName, ".png"))
	assert.Len(t, asset.FileName, 36+len(".png"))
	assert.Equal(t, int64(len("image-bytes")), asset.Size)

	data, err := os.ReadFile(filepath.Join(store.Dir(), asset.FileName))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestStore_Save_UniqueNames(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Save(context.Background(), "x.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save(context.Background(), "x.jpg", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.FileName, b.FileName)
}

func TestStore_Save_DropsOddExtensions(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"noext", "weird.p/ng", "../../etc/passwd", "a.ex$e", ""} {
		asset, err := store.Save(context.Background(), name, strings.NewReader("x"))
		require.NoError(t, err)
		assert.NotContains(t, asset.FileName, ".", "name %q", name)
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStore_Save_ReadFailureLeavesNoFile(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(context.Background(), "x.png", io.MultiReader(strings.NewReader("part"), brokenReader{}))

	assert.ErrorIs(t, err, domain.ErrStorage)
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Save_CancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "x.png", strings.NewReader("x"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	asset, err := store.Save(ctx, "x.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, asset.FileName))
	assert.NoFileExists(t, filepath.Join(store.Dir(), asset.FileName))

	// Idempotent.
	assert.NoError(t, store.Remove(ctx, asset.FileName))
}

func TestStore_Remove_RejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	outside := filepath.Join(filepath.Dir(store.Dir()), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0600))

	for _, name := range []string{"../secret.txt", "..", ".", "", "a/b.png", `a\b.png`} {
		err := store.Remove(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "name %q", name)
	}
	assert.FileExists(t, outside)
}

func TestStore_URL(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, "/uploads/reference-images/abc.png", store.URL("abc.png"))
}
