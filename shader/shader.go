package shader

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/richinsley/goshadereffect/assets"
	"github.com/richinsley/goshadereffect/texture"
)

// Placeholders recognized in effect templates.
const (
	SamplerToken   = "${SAMPLER}"
	RectangleToken = "${TEXTURE_RECTANGLE}"
)

const (
	SamplerRect = "sampler2DRect"
	Sampler2D   = "sampler2D"
)

// QuadScale shrinks the quad so its corners stay inside the viewport while
// it rotates.
const QuadScale = 0.7

// FloatsPerVertex is x, y, u, v.
const FloatsPerVertex = 4

const vertexShaderSource = `#version 410 core
layout (location = 0) in vec2 in_vert;
layout (location = 1) in vec2 in_texcoord;
uniform mat4 effectTransform;
out vec2 texCoord;
void main() {
    texCoord = in_texcoord;
    gl_Position = effectTransform * vec4(in_vert, 0.0, 1.0);
}
`

// VertexShader returns the vertex stage shared by every effect. It applies
// effectTransform and forwards the texture coordinate as texCoord.
func VertexShader() string {
	return vertexShaderSource
}

// Specialize fills in the sampler placeholders of an effect template for
// rectangle or normalized textures. Nothing else in the template changes.
func Specialize(template string, rectangle bool) string {
	sampler, flag := Sampler2D, "0"
	if rectangle {
		sampler, flag = SamplerRect, "1"
	}
	return strings.NewReplacer(SamplerToken, sampler, RectangleToken, flag).Replace(template)
}

// Load looks up the template of effect and specializes it.
func Load(lib *assets.Library, effect string, rectangle bool) (string, error) {
	tmpl, err := lib.Template(effect)
	if err != nil {
		return "", err
	}
	return Specialize(tmpl, rectangle), nil
}

// Transform rotates the quad by angle degrees around the view axis.
func Transform(angle float32) mgl32.Mat4 {
	rotation := mgl32.HomogRotate3DZ(mgl32.DegToRad(angle))
	return rotation.Mul4(mgl32.Scale3D(QuadScale, QuadScale, 1))
}

var corners = [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

// Quad returns the four corners, counter-clockwise from bottom left, with
// their texture coordinates. Draw it as a triangle fan.
func Quad(rectangle bool, width, height int) []float32 {
	vertices := make([]float32, 0, len(corners)*FloatsPerVertex)
	for _, c := range corners {
		u, v := texture.Coord(rectangle, c[0], c[1], width, height)
		vertices = append(vertices, c[0], c[1], u, v)
	}
	return vertices
}
