package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/richinsley/goshadereffect/logging"
	"github.com/richinsley/goshadereffect/uniforms"
)

// CompilationError reports a shader that failed to compile or a program
// that failed to link. Log holds the driver's info log.
type CompilationError struct {
	Stage string
	Log   string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Stage, strings.TrimSpace(e.Log))
}

// Program is a linked effect program and the locations of the uniforms the
// renderer knows about.
type Program struct {
	handle    uint32
	shaders   []uint32
	Locations *uniforms.Locations
}

// NewProgram compiles and links the vertex and fragment stages of effect.
// With debug logging enabled, the compile and link logs are written even
// when they succeed.
func NewProgram(ctx context.Context, effect, vertexShaderSource, fragmentShaderSource string, names ...string) (*Program, error) {
	logger := logging.From(ctx)

	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	logInfo(logger, "effect "+effect+" vertex shader compilation log: ", err, shaderInfoLog(vertexShader))
	if err != nil {
		return nil, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	logInfo(logger, "effect "+effect+" shader compilation log: ", err, shaderInfoLog(fragmentShader))
	if err != nil {
		gl.DeleteShader(vertexShader)
		return nil, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	linkLog := programInfoLog(program)
	if status == gl.FALSE {
		err = &CompilationError{Stage: "link program", Log: linkLog}
	}
	logInfo(logger, "effect "+effect+" shader program linking log: ", err, linkLog)
	if err != nil {
		gl.DeleteProgram(program)
		gl.DeleteShader(vertexShader)
		gl.DeleteShader(fragmentShader)
		return nil, err
	}

	p := &Program{
		handle:  program,
		shaders: []uint32{vertexShader, fragmentShader},
	}
	p.Locations = uniforms.NewLocations(p.uniformLocation, glUploader{}, names...)
	return p, nil
}

func (p *Program) uniformLocation(name string) int32 {
	return gl.GetUniformLocation(p.handle, gl.Str(name+"\x00"))
}

func (p *Program) Use() {
	gl.UseProgram(p.handle)
}

func (p *Program) Destroy() {
	for _, s := range p.shaders {
		gl.DetachShader(p.handle, s)
		gl.DeleteShader(s)
	}
	gl.DeleteProgram(p.handle)
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		logText := shaderInfoLog(shader)
		gl.DeleteShader(shader)
		stage := "compile fragment shader"
		if shaderType == gl.VERTEX_SHADER {
			stage = "compile vertex shader"
		}
		return 0, &CompilationError{Stage: stage, Log: logText}
	}
	return shader, nil
}

func shaderInfoLog(shader uint32) string {
	if shader == 0 {
		return ""
	}
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

func programInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	logText := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
	return strings.TrimRight(logText, "\x00")
}

// logInfo writes a compiler or linker log at debug level. Failures carry
// their log in the error, so only successful non-empty logs need writing.
func logInfo(logger *zap.Logger, prefix string, err error, infoLog string) {
	if err != nil {
		var cerr *CompilationError
		if errors.As(err, &cerr) {
			logger.Debug(prefix + strings.TrimSpace(cerr.Log))
		}
		return
	}
	if infoLog = strings.TrimSpace(infoLog); infoLog != "" {
		logger.Debug(prefix + infoLog)
	}
}

// glUploader issues uniform uploads on the currently bound program.
type glUploader struct{}

func (glUploader) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (glUploader) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (glUploader) Uniform2f(location int32, v0, v1 float32) {
	gl.Uniform2f(location, v0, v1)
}

func (glUploader) UniformMatrix4(location int32, m *[16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (glUploader) UniformVector(location int32, values []float32) {
	switch len(values) {
	case 1:
		gl.Uniform1fv(location, 1, &values[0])
	case 2:
		gl.Uniform2fv(location, 1, &values[0])
	case 3:
		gl.Uniform3fv(location, 1, &values[0])
	case 4:
		gl.Uniform4fv(location, 1, &values[0])
	}
}
