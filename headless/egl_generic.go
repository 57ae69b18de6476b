//go:build !linux

package headless

import (
	"context"
	"fmt"

	"github.com/richinsley/goshadereffect/graphics"
)

func NewHeadless(ctx context.Context, width, height int) (graphics.Context, error) {
	return nil, fmt.Errorf("egl headless rendering is not supported on this platform")
}
