package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brandlens/internal/adapters/driven/assets/disk"
	"github.com/custodia-labs/brandlens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
	"github.com/custodia-labs/brandlens/internal/core/services"
)

type testEnv struct {
	server *Server
	store  driven.ReferenceStore
	assets *disk.Store
}

func setupServer(t *testing.T, opts Options) *testEnv {
	t.Helper()

	store := memory.NewReferenceStore()
	assets, err := disk.NewStore(t.TempDir())
	require.NoError(t, err)
	opts.AssetDir = assets.Dir()

	server, err := NewServer(
		services.NewLibraryService(store, assets),
		services.NewSearchService(store, assets),
		opts,
	)
	require.NoError(t, err)

	return &testEnv{server: server, store: store, assets: assets}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadRequest builds a multipart upload. A nil image omits the file part.
func uploadRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="logo.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reference-images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func searchRequestBody(t *testing.T, v any) *http.Request {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/reference-images/search", bytes.NewReader(data))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func seed(t *testing.T, store driven.ReferenceStore, title, fp string) *domain.ReferenceImage {
	t.Helper()
	ref, err := store.Add(context.Background(), domain.ReferenceFields{Title: title, Fingerprint: fp})
	require.NoError(t, err)
	return ref
}

func TestNewServer_RequiresServices(t *testing.T) {
	store := memory.NewReferenceStore()

	_, err := NewServer(nil, services.NewSearchService(store, nil), Options{})
	assert.ErrorIs(t, err, ErrMissingLibraryService)

	_, err = NewServer(services.NewLibraryService(store, nil), nil, Options{})
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestHealth(t *testing.T) {
	env := setupServer(t, Options{})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAddReference(t *testing.T) {
	env := setupServer(t, Options{})
	req := uploadRequest(t, map[string]string{
		"title":             "Acme",
		"description":       "Primary mark",
		"sourceUrl":         "https://example.com",
		"tags":              "acme, logo",
		"fingerprint":       "FF00FF00",
		"fingerprintLength": "8",
	}, pngBytes(t))
	req.Header.Set(HeaderPrincipalID, "user-1")
	req.Header.Set(HeaderPrincipalEmail, "ops@example.com")

	rec := env.do(t, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[addResponse](t, rec)
	require.NotNil(t, resp.Image)
	assert.Equal(t, "Acme", resp.Image.Title)
	assert.Equal(t, []string{"acme", "logo"}, resp.Image.Tags)
	assert.Equal(t, "ff00ff00", resp.Image.Fingerprint)
	assert.Equal(t, "image/png", resp.Image.MimeType)
	require.NotNil(t, resp.Image.UploadedBy)
	assert.Equal(t, "user-1", resp.Image.UploadedBy.ID)
	assert.True(t, strings.HasPrefix(resp.Image.AssetURL, disk.URLPrefix))

	// The stored asset is served back.
	assetRec := env.do(t, httptest.NewRequest(http.MethodGet, resp.Image.AssetURL, nil))
	assert.Equal(t, http.StatusOK, assetRec.Code)
	assert.Equal(t, pngBytes(t), assetRec.Body.Bytes())
}

func TestAddReference_MissingFingerprint(t *testing.T) {
	env := setupServer(t, Options{})

	rec := env.do(t, uploadRequest(t, map[string]string{"title": "x"}, pngBytes(t)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "fingerprint is required")
	refs, err := env.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestAddReference_MissingImage(t *testing.T) {
	env := setupServer(t, Options{})

	rec := env.do(t, uploadRequest(t, map[string]string{"fingerprint": "ff"}, nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "image file is required")
}

func TestAddReference_NotMultipart(t *testing.T) {
	env := setupServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/reference-images", strings.NewReader(`{"fingerprint":"ff"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddReference_TooLarge(t *testing.T) {
	env := setupServer(t, Options{MaxUploadBytes: 16})

	rec := env.do(t, uploadRequest(t, map[string]string{"fingerprint": "ff"}, bytes.Repeat([]byte{1}, 1024)))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestListReferences(t *testing.T) {
	env := setupServer(t, Options{})
	seed(t, env.store, "one", "aa")
	seed(t, env.store, "two", "bb")

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/reference-images", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[listResponse](t, rec)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Images, 2)
}

func TestListReferences_EmptyIsArray(t *testing.T) {
	env := setupServer(t, Options{})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/reference-images", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"images":[],"count":0}`, rec.Body.String())
}

func TestDeleteReference(t *testing.T) {
	env := setupServer(t, Options{})
	ref := seed(t, env.store, "Acme", "ff")

	rec := env.do(t, httptest.NewRequest(http.MethodDelete, "/api/reference-images/"+ref.ID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[deleteResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, ref.ID, resp.Removed.ID)
	assert.Equal(t, "Acme", resp.Removed.Title)

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/reference-images/"+ref.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch(t *testing.T) {
	env := setupServer(t, Options{})
	seed(t, env.store, "A", "ff00ff00")
	seed(t, env.store, "B", "ff00ff01")
	seed(t, env.store, "C", "00ff00ff")

	rec := env.do(t, searchRequestBody(t, map[string]any{
		"fingerprint":   "ff00ff00",
		"minSimilarity": 0.9,
		"limit":         "6",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[domain.SearchResponse](t, rec)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "A", resp.Matches[0].Title)
	assert.Equal(t, 1.0, resp.Matches[0].Similarity)
	assert.Equal(t, "B", resp.Matches[1].Title)
	assert.Equal(t, 0.9688, resp.Matches[1].Similarity)
	assert.Equal(t, 6, resp.Summary.Limit)
	assert.Equal(t, 3, resp.Summary.Evaluated)
	assert.Equal(t, "ff00ff00", resp.Query.Fingerprint)
}

func TestSearch_ExactThreshold(t *testing.T) {
	env := setupServer(t, Options{})
	seed(t, env.store, "A", "ff00ff00")
	seed(t, env.store, "B", "ff00ff01")

	rec := env.do(t, searchRequestBody(t, map[string]any{"fingerprint": "ff00ff00", "minSimilarity": 1}))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[domain.SearchResponse](t, rec)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "A", resp.Matches[0].Title)
}

func TestSearch_MissingFingerprint(t *testing.T) {
	env := setupServer(t, Options{})

	rec := env.do(t, searchRequestBody(t, map[string]any{"limit": 5}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch_InvalidJSON(t *testing.T) {
	env := setupServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/reference-images/search", strings.NewReader("{"))
	rec := env.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsset_RejectsHiddenAndMissing(t *testing.T) {
	env := setupServer(t, Options{})

	for _, p := range []string{"/uploads/reference-images/.upload-123", "/uploads/reference-images/missing.png"} {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, p)
	}
}

func TestRateLimit(t *testing.T) {
	env := setupServer(t, Options{RequestsPerSecond: 0.001, Burst: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	env := setupServer(t, Options{})

	for i := 0; i < 50; i++ {
		rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

// failingLibrary returns a storage error from List.
type failingLibrary struct {
	*services.LibraryService
}

func (failingLibrary) List(context.Context) ([]domain.ReferenceEntry, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestListReferences_StorageFailureIsGeneric(t *testing.T) {
	store := memory.NewReferenceStore()
	server, err := NewServer(
		failingLibrary{services.NewLibraryService(store, nil)},
		services.NewSearchService(store, nil),
		Options{},
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reference-images", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
