// Package assets resolves effects and images by name.
//
// A library is laid out as
//
//	effects/<name>.glsl.template
//	effects/<name>.properties
//	images/<name>.png
//
// The effects and images shipped with the binary are embedded; Dir serves
// the same layout from disk.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/richinsley/goshadereffect/texture"
	"github.com/richinsley/goshadereffect/uniforms"
)

const (
	EffectsDir = "effects"
	ImagesDir  = "images"

	TemplateExt   = ".glsl.template"
	PropertiesExt = ".properties"
	ImageExt      = ".png"
)

//go:embed effects images
var embedded embed.FS

// Kind names the resource that could not be resolved.
type Kind string

const (
	KindEffect Kind = "effect"
	KindImage  Kind = "image"
)

// ConfigurationError reports an effect or image that cannot be used.
type ConfigurationError struct {
	Kind Kind
	Name string
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, fs.ErrNotExist) {
		return fmt.Sprintf("invalid %s %q: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("cannot find %s: %s", e.Kind, e.Name)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Library looks up resources in a file system.
type Library struct {
	fsys fs.FS
}

func NewLibrary(fsys fs.FS) *Library {
	return &Library{fsys: fsys}
}

// Default returns the library embedded in the binary.
func Default() *Library {
	return NewLibrary(embedded)
}

// Dir returns a library rooted at a directory on disk.
func Dir(dir string) *Library {
	return NewLibrary(os.DirFS(dir))
}

func TemplatePath(effect string) string {
	return path.Join(EffectsDir, effect+TemplateExt)
}

func PropertiesPath(effect string) string {
	return path.Join(EffectsDir, effect+PropertiesExt)
}

func ImagePath(name string) string {
	return path.Join(ImagesDir, name+ImageExt)
}

// Template returns the raw shader template of effect.
func (l *Library) Template(effect string) (string, error) {
	if !validName(effect) {
		return "", &ConfigurationError{Kind: KindEffect, Name: effect, Err: fs.ErrNotExist}
	}
	buf, err := fs.ReadFile(l.fsys, TemplatePath(effect))
	if err != nil {
		return "", &ConfigurationError{Kind: KindEffect, Name: effect, Err: err}
	}
	return string(buf), nil
}

// OpenParameters opens the properties file of effect. An effect without one
// yields a nil reader and no error.
func (l *Library) OpenParameters(effect string) (io.ReadCloser, error) {
	if !validName(effect) {
		return nil, &ConfigurationError{Kind: KindEffect, Name: effect, Err: fs.ErrNotExist}
	}
	f, err := l.fsys.Open(PropertiesPath(effect))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open parameters of effect %s: %w", effect, err)
	}
	return f, nil
}

// Parameters returns the default uniform values of effect. An effect
// without a properties file has no defaults.
func (l *Library) Parameters(effect string) (uniforms.Parameters, error) {
	return l.ResolveParameters(effect, nil)
}

// ResolveParameters overlays the properties of effect on base.
func (l *Library) ResolveParameters(effect string, base uniforms.Parameters) (uniforms.Parameters, error) {
	rc, err := l.OpenParameters(effect)
	if err != nil {
		return nil, err
	}
	var overlay io.Reader
	if rc != nil {
		defer rc.Close()
		overlay = rc
	}
	params, err := uniforms.Resolve(base, overlay)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", effect, err)
	}
	return params, nil
}

// CheckImage reports whether the named image exists, without decoding it.
func (l *Library) CheckImage(name string) error {
	if !validName(name) {
		return &ConfigurationError{Kind: KindImage, Name: name, Err: fs.ErrNotExist}
	}
	info, err := fs.Stat(l.fsys, ImagePath(name))
	if err != nil {
		return &ConfigurationError{Kind: KindImage, Name: name, Err: err}
	}
	if info.IsDir() {
		return &ConfigurationError{Kind: KindImage, Name: name, Err: fs.ErrNotExist}
	}
	return nil
}

// Image decodes the named PNG image.
func (l *Library) Image(name string) (image.Image, error) {
	if !validName(name) {
		return nil, &ConfigurationError{Kind: KindImage, Name: name, Err: fs.ErrNotExist}
	}
	f, err := l.fsys.Open(ImagePath(name))
	if err != nil {
		return nil, &ConfigurationError{Kind: KindImage, Name: name, Err: err}
	}
	defer f.Close()
	img, err := texture.Decode(f)
	if err != nil {
		return nil, &ConfigurationError{Kind: KindImage, Name: name, Err: err}
	}
	return img, nil
}

// Effects lists the names of all effects with a template.
func (l *Library) Effects() ([]string, error) {
	return l.list(EffectsDir, TemplateExt)
}

// Images lists the names of all PNG images.
func (l *Library) Images() ([]string, error) {
	return l.list(ImagesDir, ImageExt)
}

func (l *Library) list(dir, ext string) ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

// validName rejects names that would escape the resource directories.
func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}
