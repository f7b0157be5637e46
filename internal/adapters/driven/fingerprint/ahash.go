package fingerprint

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/custodia-labs/brandlens/internal/core/domain"
	"github.com/custodia-labs/brandlens/internal/core/ports/driven"
)

// Ensure AverageHash implements the interface.
var _ driven.FingerprintExtractor = (*AverageHash)(nil)

const hexDigits = "0123456789abcdef"

// MaxPixels bounds the declared canvas of an image accepted for decoding.
// Compressed formats can declare far more pixels than their byte size
// suggests, and the decoder allocates the full canvas up front.
const MaxPixels = 50_000_000

// AverageHash is the "ahash" fingerprint extractor.
type AverageHash struct {
	gridSize int
}

// NewAverageHash creates an extractor with the given grid side length.
// Zero selects domain.DefaultGridSize.
func NewAverageHash(gridSize int) (*AverageHash, error) {
	if gridSize == 0 {
		gridSize = domain.DefaultGridSize
	}
	if gridSize < domain.MinGridSize || gridSize > domain.MaxGridSize {
		return nil, fmt.Errorf("%w: grid size must be between %d and %d",
			domain.ErrInvalidInput, domain.MinGridSize, domain.MaxGridSize)
	}
	return &AverageHash{gridSize: gridSize}, nil
}

// Algorithm returns the algorithm tag stored with every fingerprint.
func (h *AverageHash) Algorithm() string {
	return domain.AlgorithmAverageHash
}

// GridSize returns the grid side length.
func (h *AverageHash) GridSize() int {
	return h.gridSize
}

// ExtractFile fingerprints the image at path.
func (h *AverageHash) ExtractFile(ctx context.Context, path string) (*domain.Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	defer f.Close()
	return h.Extract(ctx, f)
}

// Extract fingerprints the encoded image read from r.
func (h *AverageHash) Extract(ctx context.Context, r io.Reader) (*domain.Fingerprint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrNoImageData
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %s image of %dx%d exceeds %d pixels",
			domain.ErrDecode, format, cfg.Width, cfg.Height, MaxPixels)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s image has no pixels", domain.ErrDecode, format)
	}

	bits := h.bits(src)
	hex := pack(bits)
	return &domain.Fingerprint{
		Hex:       hex,
		Bits:      bits,
		Length:    len(hex),
		Algorithm: domain.AlgorithmAverageHash,
		Size:      h.gridSize,
	}, nil
}

// bits scales src to the grid and thresholds each cell against the mean
// luminance. Luminance is kept in integer thousandths so that a uniform
// image yields all ones.
func (h *AverageHash) bits(src image.Image) []uint8 {
	n := h.gridSize
	grid := image.NewNRGBA(image.Rect(0, 0, n, n))
	draw.BiLinear.Scale(grid, grid.Bounds(), src, src.Bounds(), draw.Src, nil)

	lums := make([]int64, n*n)
	var sum int64
	for i := range lums {
		r, g, b := grid.Pix[i*4], grid.Pix[i*4+1], grid.Pix[i*4+2]
		lums[i] = 299*int64(r) + 587*int64(g) + 114*int64(b)
		sum += lums[i]
	}

	count := int64(len(lums))
	bits := make([]uint8, len(lums))
	for i, l := range lums {
		// l >= sum/count without the division.
		if l*count >= sum {
			bits[i] = 1
		}
	}
	return bits
}

// pack packs bits MSB first into hex digits. A trailing partial nibble is
// padded with zero bits.
func pack(bits []uint8) string {
	var b strings.Builder
	b.Grow((len(bits) + 3) / 4)
	for i := 0; i < len(bits); i += 4 {
		var nibble byte
		for j := 0; j < 4; j++ {
			nibble <<= 1
			if i+j < len(bits) {
				nibble |= bits[i+j]
			}
		}
		b.WriteByte(hexDigits[nibble])
	}
	return b.String()
}
