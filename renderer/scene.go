package renderer

import (
	"context"
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffect/assets"
	"github.com/richinsley/goshadereffect/logging"
	"github.com/richinsley/goshadereffect/options"
	"github.com/richinsley/goshadereffect/shader"
	"github.com/richinsley/goshadereffect/uniforms"
)

const textureUnit = 0

// Scene is one effect applied to one image, drawn on a rotating quad.
// All methods must be called on the thread owning the GL context.
type Scene struct {
	lib  *assets.Library
	opts *options.EffectOptions

	logger  *zap.Logger
	program *Program
	texture *Texture
	quadVAO uint32
	quadVBO uint32
	params  uniforms.Parameters

	x, y, width, height int
}

func NewScene(lib *assets.Library, opts *options.EffectOptions) *Scene {
	return &Scene{lib: lib, opts: opts, logger: zap.NewNop()}
}

// Init builds the program, resolves and uploads the uniforms and loads the
// texture if the effect samples one. The image must exist either way. Any
// failure releases what was created.
func (s *Scene) Init(ctx context.Context, width, height int) (err error) {
	logger, ctx := logging.FromWithFields(ctx, zap.String("effect", s.opts.Effect), zap.String("image", s.opts.Image))
	s.logger = logger
	defer func() {
		if err != nil {
			s.Destroy()
		}
	}()

	gl.ClearColor(0, 0, 0, 1)

	if err := s.lib.CheckImage(s.opts.Image); err != nil {
		return err
	}
	fragmentSource, err := shader.Load(s.lib, s.opts.Effect, s.opts.TextureRectangle)
	if err != nil {
		return err
	}
	s.params, err = s.resolveParameters(logger)
	if err != nil {
		return err
	}

	names := append(append([]string{}, uniforms.Builtin...), s.params.Names()...)
	s.program, err = NewProgram(ctx, s.opts.Effect, shader.VertexShader(), fragmentSource, names...)
	if err != nil {
		return fmt.Errorf("effect %s: %w", s.opts.Effect, err)
	}
	s.program.Use()
	locs := s.program.Locations
	if unused := locs.SetParameters(s.params); len(unused) > 0 {
		logger.Debug("Parameters not declared by effect", zap.Strings("names", unused))
	}

	texWidth, texHeight := 1, 1
	if locs.Has(uniforms.Texture) {
		img, err := s.lib.Image(s.opts.Image)
		if err != nil {
			return err
		}
		s.texture, err = NewTexture(img, s.opts.TextureRectangle)
		if err != nil {
			return fmt.Errorf("image %s: %w", s.opts.Image, err)
		}
		s.texture.Bind(textureUnit)
		locs.SetInt(uniforms.Texture, textureUnit)

		texWidth, texHeight = s.texture.Size()
		locs.SetVec2(uniforms.TextureSize, float32(texWidth), float32(texHeight))
		maxCoord := s.texture.MaxCoord()
		locs.SetVec2(uniforms.TextureMaxCoord, maxCoord[0], maxCoord[1])
	} else {
		logger.Debug("Effect does not sample a texture, image not loaded")
	}

	s.createQuad(shader.Quad(s.opts.TextureRectangle, texWidth, texHeight))
	s.Resize(0, 0, width, height)
	if s.opts.Debug {
		if err := checkGLError("initialize scene"); err != nil {
			return err
		}
	}

	logger.Info("Scene initialized",
		zap.Bool("textureRectangle", s.opts.TextureRectangle),
		zap.Int("textureWidth", texWidth),
		zap.Int("textureHeight", texHeight))
	return nil
}

// resolveParameters overlays the defaults from the effect's properties file
// on the configured parameters, the file taking precedence.
func (s *Scene) resolveParameters(logger *zap.Logger) (uniforms.Parameters, error) {
	configured, err := s.opts.ParameterOverrides()
	if err != nil {
		return nil, err
	}
	params, err := s.lib.ResolveParameters(s.opts.Effect, configured)
	if err != nil {
		return nil, err
	}
	if shadowed := uniforms.Shadowed(configured, params); len(shadowed) > 0 {
		logger.Info("Configured parameters replaced by effect defaults", zap.Strings("names", shadowed))
	}
	return params, nil
}

func (s *Scene) createQuad(vertices []float32) {
	gl.GenVertexArrays(1, &s.quadVAO)
	gl.GenBuffers(1, &s.quadVBO)
	gl.BindVertexArray(s.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, s.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	stride := int32(shader.FloatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(2*4))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// Resize updates the viewport and the window uniforms.
func (s *Scene) Resize(x, y, width, height int) {
	s.x, s.y, s.width, s.height = x, y, width, height
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
	if s.program == nil {
		return
	}
	s.program.Use()
	s.program.Locations.SetVec2(uniforms.WindowPosition, float32(x), float32(y))
	s.program.Locations.SetVec2(uniforms.WindowSize, float32(width), float32(height))
}

// Render draws one frame with the quad rotated by angle degrees.
func (s *Scene) Render(angle float32) {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	s.program.Use()
	locs := s.program.Locations
	locs.SetMatrix(uniforms.EffectTransform, [16]float32(shader.Transform(angle)))
	locs.SetFloat(uniforms.RotationAngle, angle)
	if s.texture != nil {
		s.texture.Bind(textureUnit)
	}

	gl.BindVertexArray(s.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, 4)
	gl.BindVertexArray(0)
	gl.Flush()

	if s.opts.Debug {
		if err := checkGLError("render"); err != nil {
			s.logger.Warn("GL error", zap.Error(err))
		}
	}
}

// Reload rebuilds the scene from its resources. On failure the current
// scene is kept and the error returned.
func (s *Scene) Reload(ctx context.Context) error {
	x, y := s.x, s.y
	next := NewScene(s.lib, s.opts)
	if err := next.Init(ctx, s.width, s.height); err != nil {
		return err
	}
	s.Destroy()
	*s = *next
	s.Resize(x, y, s.width, s.height)
	return nil
}

// Destroy releases the shaders, the program, the quad and the texture.
func (s *Scene) Destroy() {
	if s.program != nil {
		s.program.Destroy()
		s.program = nil
	}
	if s.texture != nil {
		s.texture.Destroy()
		s.texture = nil
	}
	if s.quadVBO != 0 {
		gl.DeleteBuffers(1, &s.quadVBO)
		s.quadVBO = 0
	}
	if s.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &s.quadVAO)
		s.quadVAO = 0
	}
}
