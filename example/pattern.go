package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

// TestPattern draws colour bars with a sweeping black column and encodes each
// frame as JPEG. It stands in for a camera when no image is given.
type TestPattern struct {
	mu    sync.Mutex
	img   *image.RGBA
	step  int
	speed int
	buf   bytes.Buffer
}

var bars = []color.RGBA{
	{255, 255, 255, 255},
	{255, 255, 0, 255},
	{0, 255, 255, 255},
	{0, 255, 0, 255},
	{255, 0, 255, 255},
	{255, 0, 0, 255},
	{0, 0, 255, 255},
}

// NewTestPattern creates a width x height pattern whose sweep crosses the
// image in about frames frames.
func NewTestPattern(width, height, frames int) (*TestPattern, error) {
	if width < len(bars) || height < 1 || frames < 1 {
		return nil, fmt.Errorf("invalid test pattern size %dx%d over %d frames", width, height, frames)
	}
	return &TestPattern{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		speed: max(1, width/frames),
	}, nil
}

// Next renders and encodes the next frame.
func (p *TestPattern) Next(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b := p.img.Bounds()
	sweep := (p.step * p.speed) % b.Dx()
	barWidth := b.Dx() / len(bars)

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := bars[min(x/barWidth, len(bars)-1)]
			if x >= sweep && x < sweep+4 {
				c = color.RGBA{0, 0, 0, 255}
			}
			p.img.SetRGBA(x, y, c)
		}
	}
	p.step++

	p.buf.Reset()
	if err := jpeg.Encode(&p.buf, p.img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return bytes.Clone(p.buf.Bytes()), nil
}

// Close is a no-op.
func (p *TestPattern) Close() error {
	return nil
}
