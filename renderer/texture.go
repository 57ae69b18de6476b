package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/richinsley/goshadereffect/texture"
)

// Texture is an uploaded image, addressed either with texel coordinates
// (GL_TEXTURE_RECTANGLE) or with normalized ones (GL_TEXTURE_2D).
type Texture struct {
	textureID uint32
	target    uint32
	width     int
	height    int
	rectangle bool
}

// Target returns the GL texture target for the addressing mode.
func Target(rectangle bool) uint32 {
	if rectangle {
		return gl.TEXTURE_RECTANGLE
	}
	return gl.TEXTURE_2D
}

// NewTexture uploads img. Rectangle textures cannot repeat or mipmap, so
// both modes clamp and filter linearly.
func NewTexture(img image.Image, rectangle bool) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	rgba := texture.Prepare(img)
	width := rgba.Rect.Size().X
	height := rgba.Rect.Size().Y
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("input image is empty")
	}

	t := &Texture{
		target:    Target(rectangle),
		width:     width,
		height:    height,
		rectangle: rectangle,
	}
	gl.GenTextures(1, &t.textureID)
	gl.BindTexture(t.target, t.textureID)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		t.target,
		0,
		gl.RGBA8,
		int32(width),
		int32(height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba.Pix),
	)
	gl.BindTexture(t.target, 0)
	return t, nil
}

// Bind binds the texture to the given texture unit.
func (t *Texture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(t.target, t.textureID)
}

func (t *Texture) Size() (int, int) {
	return t.width, t.height
}

// MaxCoord is the coordinate of the texture's far corner in its own
// addressing mode.
func (t *Texture) MaxCoord() [2]float32 {
	return texture.MaxCoord(t.rectangle, t.width, t.height)
}

func (t *Texture) Destroy() {
	gl.DeleteTextures(1, &t.textureID)
}
