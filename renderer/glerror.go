package renderer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// maxGLErrors bounds the drain loop; a lost context can report errors forever.
const maxGLErrors = 16

var glErrorNames = map[uint32]string{
	gl.INVALID_ENUM:                  "GL_INVALID_ENUM",
	gl.INVALID_VALUE:                 "GL_INVALID_VALUE",
	gl.INVALID_OPERATION:             "GL_INVALID_OPERATION",
	gl.INVALID_FRAMEBUFFER_OPERATION: "GL_INVALID_FRAMEBUFFER_OPERATION",
	gl.OUT_OF_MEMORY:                 "GL_OUT_OF_MEMORY",
}

// GLError lists the error flags glGetError reported after a stage.
type GLError struct {
	Stage string
	Codes []uint32
}

func (e *GLError) Error() string {
	names := make([]string, len(e.Codes))
	for i, code := range e.Codes {
		names[i] = glErrorName(code)
	}
	return fmt.Sprintf("GL error after %s: %s", e.Stage, strings.Join(names, ", "))
}

func glErrorName(code uint32) string {
	if name, ok := glErrorNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", code)
}

// drainErrors calls get until it reports no error.
func drainErrors(get func() uint32) []uint32 {
	var codes []uint32
	for len(codes) < maxGLErrors {
		code := get()
		if code == gl.NO_ERROR {
			break
		}
		codes = append(codes, code)
	}
	return codes
}

// checkGLError returns the pending GL errors, if any, as a *GLError.
func checkGLError(stage string) error {
	codes := drainErrors(gl.GetError)
	if len(codes) == 0 {
		return nil
	}
	return &GLError{Stage: stage, Codes: codes}
}
