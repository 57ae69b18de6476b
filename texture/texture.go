// Package texture prepares decoded images for upload and computes the
// coordinate ranges that differ between rectangle and normalized textures.
package texture

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/gift"
	"github.com/h2non/filetype"
)

// sniffLen covers the longest signature filetype matches on.
const sniffLen = 262

// Decode reads a PNG image. Other formats are rejected after sniffing the
// header, so a JPEG renamed to .png fails with a clear message.
func Decode(r io.Reader) (image.Image, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	header, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	kind, err := filetype.Match(header)
	if err != nil {
		return nil, fmt.Errorf("failed to detect image type: %w", err)
	}
	if kind.Extension != "png" {
		return nil, fmt.Errorf("unsupported image type %q, expected png", kind.Extension)
	}
	img, err := png.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("failed to decode png: %w", err)
	}
	return img, nil
}

// Prepare converts img to tightly packed RGBA with the first row at the
// bottom, which is the row order glTexImage2D expects.
func Prepare(img image.Image) *image.RGBA {
	g := gift.New(gift.FlipVertical())
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// MaxCoord is the texture coordinate of the far corner: texel units for
// rectangle textures, 1 for normalized ones.
func MaxCoord(rectangle bool, width, height int) [2]float32 {
	if rectangle {
		return [2]float32{float32(width), float32(height)}
	}
	return [2]float32{1, 1}
}

// Coord maps a quad corner in [-1, 1] to its texture coordinate. Rectangle
// coordinates address texel centers, so they stop at size-1.
func Coord(rectangle bool, x, y float32, width, height int) (float32, float32) {
	u := (x + 1) / 2
	v := (y + 1) / 2
	if rectangle {
		u *= float32(width - 1)
		v *= float32(height - 1)
	}
	return u, v
}
