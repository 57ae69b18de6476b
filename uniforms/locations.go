package uniforms

// Uniform names the renderer feeds on its own. Effects may declare any
// subset of them.
const (
	WindowPosition  = "windowPosition"
	WindowSize      = "windowSize"
	RotationAngle   = "rotationAngle"
	Texture         = "texture"
	TextureSize     = "textureSize"
	TextureMaxCoord = "textureMaxCoord"
	EffectTransform = "effectTransform"
)

// Builtin lists the uniforms looked up for every program.
var Builtin = []string{
	WindowPosition,
	WindowSize,
	RotationAngle,
	Texture,
	TextureSize,
	TextureMaxCoord,
	EffectTransform,
}

// Uploader issues the actual glUniform calls for a bound program.
type Uploader interface {
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, v0, v1 float32)
	UniformMatrix4(location int32, m *[16]float32)
	// UniformVector uploads a float, vec2, vec3 or vec4 by len(values).
	UniformVector(location int32, values []float32)
}

// Locations holds the uniform locations of one program. A name without a
// location is a feature the effect does not use: setters skip it silently.
type Locations struct {
	locations map[string]int32
	uploader  Uploader
}

// NewLocations resolves names with lookup, which returns -1 for uniforms the
// program does not declare.
func NewLocations(lookup func(name string) int32, uploader Uploader, names ...string) *Locations {
	l := &Locations{
		locations: make(map[string]int32, len(names)),
		uploader:  uploader,
	}
	for _, name := range names {
		if loc := lookup(name); loc >= 0 {
			l.locations[name] = loc
		}
	}
	return l
}

func (l *Locations) Lookup(name string) (int32, bool) {
	loc, ok := l.locations[name]
	return loc, ok
}

func (l *Locations) Has(name string) bool {
	_, ok := l.locations[name]
	return ok
}

func (l *Locations) SetInt(name string, v int32) {
	if loc, ok := l.locations[name]; ok {
		l.uploader.Uniform1i(loc, v)
	}
}

func (l *Locations) SetFloat(name string, v float32) {
	if loc, ok := l.locations[name]; ok {
		l.uploader.Uniform1f(loc, v)
	}
}

func (l *Locations) SetVec2(name string, v0, v1 float32) {
	if loc, ok := l.locations[name]; ok {
		l.uploader.Uniform2f(loc, v0, v1)
	}
}

func (l *Locations) SetMatrix(name string, m [16]float32) {
	if loc, ok := l.locations[name]; ok {
		l.uploader.UniformMatrix4(loc, &m)
	}
}

// SetParameters uploads every parameter the program declares and returns
// the names it does not.
func (l *Locations) SetParameters(params Parameters) (unused []string) {
	for _, name := range params.Names() {
		loc, ok := l.locations[name]
		if !ok {
			unused = append(unused, name)
			continue
		}
		l.uploader.UniformVector(loc, params[name])
	}
	return unused
}
