package uniforms

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type call struct {
	location int32
	values   []float32
}

type recordingUploader struct {
	calls []call
}

func (r *recordingUploader) Uniform1i(location int32, v int32) {
	r.calls = append(r.calls, call{location, []float32{float32(v)}})
}

func (r *recordingUploader) Uniform1f(location int32, v float32) {
	r.calls = append(r.calls, call{location, []float32{v}})
}

func (r *recordingUploader) Uniform2f(location int32, v0, v1 float32) {
	r.calls = append(r.calls, call{location, []float32{v0, v1}})
}

func (r *recordingUploader) UniformMatrix4(location int32, m *[16]float32) {
	r.calls = append(r.calls, call{location, m[:]})
}

func (r *recordingUploader) UniformVector(location int32, values []float32) {
	r.calls = append(r.calls, call{location, values})
}

// declared mimics glGetUniformLocation for a program declaring names.
func declared(names ...string) func(string) int32 {
	locs := map[string]int32{}
	for i, name := range names {
		locs[name] = int32(i)
	}
	return func(name string) int32 {
		if loc, ok := locs[name]; ok {
			return loc
		}
		return -1
	}
}

func TestAbsentLocationsNeverUpload(t *testing.T) {
	up := &recordingUploader{}
	locs := NewLocations(declared(), up, Builtin...)

	for _, name := range Builtin {
		assert.False(t, locs.Has(name), name)
	}
	locs.SetInt(Texture, 0)
	locs.SetFloat(RotationAngle, 45)
	locs.SetVec2(WindowSize, 800, 600)
	locs.SetMatrix(EffectTransform, [16]float32{})
	unused := locs.SetParameters(Parameters{"intensity": {1}})

	assert.Empty(t, up.calls)
	assert.Equal(t, []string{"intensity"}, unused)
}

func TestPresentLocationsUpload(t *testing.T) {
	up := &recordingUploader{}
	locs := NewLocations(declared(WindowSize, RotationAngle, "tone"), up, append(Builtin, "tone")...)

	loc, ok := locs.Lookup(RotationAngle)
	assert.True(t, ok)
	assert.Equal(t, int32(1), loc)

	locs.SetVec2(WindowSize, 800, 600)
	locs.SetFloat(RotationAngle, 30)
	locs.SetVec2(WindowPosition, 0, 0)
	unused := locs.SetParameters(Parameters{"tone": {1.2, 1, 0.8}, "extra": {1}})

	assert.Equal(t, []call{
		{0, []float32{800, 600}},
		{1, []float32{30}},
		{2, []float32{1.2, 1, 0.8}},
	}, up.calls)
	assert.Equal(t, []string{"extra"}, unused)
}

func TestLocationZeroIsPresent(t *testing.T) {
	locs := NewLocations(declared(Texture), &recordingUploader{}, Texture)
	loc, ok := locs.Lookup(Texture)
	assert.True(t, ok, fmt.Sprint(loc))
	assert.Equal(t, int32(0), loc)
}
