package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"sync"
)

// RotateSource decodes one JPEG and, for every frame, turns it 180 degrees
// and encodes it again. The output alternates between the two orientations
// and costs one full encode per frame, which makes it a useful load source.
type RotateSource struct {
	quality int

	mu  sync.Mutex
	img *image.RGBA
	buf bytes.Buffer
}

// NewRotateSource decodes the JPEG at path. quality must be in 1-100.
func NewRotateSource(path string, quality int) (*RotateSource, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", quality)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	src, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(img, img.Bounds(), src, b.Min, draw.Src)

	return &RotateSource{quality: quality, img: img}, nil
}

// Next rotates the image and returns it encoded as JPEG.
func (rs *RotateSource) Next(ctx context.Context) ([]byte, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rotate180(rs.img)

	rs.buf.Reset()
	if err := jpeg.Encode(&rs.buf, rs.img, &jpeg.Options{Quality: rs.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return bytes.Clone(rs.buf.Bytes()), nil
}

// Close is a no-op.
func (rs *RotateSource) Close() error {
	return nil
}

// rotate180 turns img half a turn in place by reversing its pixel order.
// img must be tightly packed (Stride == 4*width), as returned by image.NewRGBA.
func rotate180(img *image.RGBA) {
	pix := img.Pix
	for i, j := 0, len(pix)-4; i < j; i, j = i+4, j-4 {
		pix[i], pix[j] = pix[j], pix[i]
		pix[i+1], pix[j+1] = pix[j+1], pix[i+1]
		pix[i+2], pix[j+2] = pix[j+2], pix[i+2]
		pix[i+3], pix[j+3] = pix[j+3], pix[i+3]
	}
}
