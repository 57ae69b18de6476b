package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshadereffect/assets"
)

func TestSpecialize(t *testing.T) {
	tmpl := "#define TEXTURE_RECTANGLE ${TEXTURE_RECTANGLE}\nuniform ${SAMPLER} texture;\n"

	assert.Equal(t, "#define TEXTURE_RECTANGLE 1\nuniform sampler2DRect texture;\n", Specialize(tmpl, true))
	assert.Equal(t, "#define TEXTURE_RECTANGLE 0\nuniform sampler2D texture;\n", Specialize(tmpl, false))
}

func TestSpecializeWithoutTokens(t *testing.T) {
	tmpl := "void main() { gl_FragColor = vec4(1.0); }"
	assert.Equal(t, tmpl, Specialize(tmpl, true))
	assert.Equal(t, tmpl, Specialize(tmpl, false))
}

// Rectangle and normalized sources of every bundled effect may only differ
// on lines that carry a placeholder.
func TestBundledEffectsDifferOnlyInSampler(t *testing.T) {
	lib := assets.Default()
	effects, err := lib.Effects()
	require.NoError(t, err)
	require.NotEmpty(t, effects)

	for _, effect := range effects {
		t.Run(effect, func(t *testing.T) {
			tmpl, err := lib.Template(effect)
			require.NoError(t, err)
			rect := strings.Split(Specialize(tmpl, true), "\n")
			norm := strings.Split(Specialize(tmpl, false), "\n")
			lines := strings.Split(tmpl, "\n")
			require.Len(t, rect, len(lines))
			require.Len(t, norm, len(lines))

			placeholders := 0
			for i, line := range lines {
				if strings.Contains(line, "${") {
					placeholders++
					assert.NotContains(t, rect[i], "${")
					continue
				}
				assert.Equal(t, norm[i], rect[i], "line %d", i+1)
			}
			assert.NotZero(t, placeholders)
			assert.Contains(t, strings.Join(rect, "\n"), SamplerRect)
			assert.NotContains(t, strings.Join(norm, "\n"), SamplerRect)
		})
	}
}

func TestLoadMissingEffect(t *testing.T) {
	_, err := Load(assets.Default(), "does-not-exist", true)
	var cerr *assets.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, assets.KindEffect, cerr.Kind)
}

func TestLoad(t *testing.T) {
	src, err := Load(assets.Default(), "passthrough", false)
	require.NoError(t, err)
	assert.Contains(t, src, "uniform sampler2D texture;")
}

func TestTransform(t *testing.T) {
	assertMatEqual(t, mgl32.Scale3D(QuadScale, QuadScale, 1), Transform(0))
	assertMatEqual(t, mgl32.Scale3D(QuadScale, QuadScale, 1), Transform(360))

	data := []struct {
		angle float32
		want  mgl32.Vec4
	}{
		{90, mgl32.Vec4{0, QuadScale, 0, 1}},
		{180, mgl32.Vec4{-QuadScale, 0, 0, 1}},
		{270, mgl32.Vec4{0, -QuadScale, 0, 1}},
		{-90, mgl32.Vec4{0, -QuadScale, 0, 1}},
	}
	for _, d := range data {
		corner := Transform(d.angle).Mul4x1(mgl32.Vec4{1, 0, 0, 1})
		for i := range corner {
			assert.InDelta(t, d.want[i], corner[i], 1e-5, "angle %v: %v", d.angle, corner)
		}
	}
}

func assertMatEqual(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d: %v", i, got)
	}
}

func TestQuad(t *testing.T) {
	normalized := Quad(false, 64, 32)
	assert.Equal(t, []float32{
		-1, -1, 0, 0,
		1, -1, 1, 0,
		1, 1, 1, 1,
		-1, 1, 0, 1,
	}, normalized)

	rect := Quad(true, 64, 32)
	assert.Equal(t, []float32{
		-1, -1, 0, 0,
		1, -1, 63, 0,
		1, 1, 63, 31,
		-1, 1, 0, 31,
	}, rect)
}
