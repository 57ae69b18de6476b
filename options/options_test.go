package options

import (
	"bytes"
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinsley/goshadereffect/uniforms"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseDefaults(t *testing.T) {
	opts, err := Parse("test", nil)
	require.NoError(t, err)
	assert.Equal(t, "passthrough", opts.Effect)
	assert.True(t, opts.TextureRectangle)
	assert.Equal(t, ModeView, opts.Mode)
	assert.NoError(t, opts.Validate())
}

func TestParseFlags(t *testing.T) {
	opts, err := Parse("test", []string{"-effect", "sepia", "-rect=false", "-param", "intensity=0.5,0.5", "-param", "tone=1,1,1"})
	require.NoError(t, err)
	assert.Equal(t, "sepia", opts.Effect)
	assert.False(t, opts.TextureRectangle)

	params, err := opts.ParameterOverrides()
	require.NoError(t, err)
	assert.Equal(t, uniforms.Parameters{"intensity": {0.5, 0.5}, "tone": {1, 1, 1}}, params)
}

func TestParseRejectsMalformedOverride(t *testing.T) {
	data := [][]string{
		{"-param", "intensity=high"},
		{"-param", "intensity"},
		{"-param", "v=1,2,3,4,5"},
		{"-effect", "sepia", "-param", "tone=1,1,1", "-param", "intensity=,"},
	}
	for _, args := range data {
		_, err := Parse("test", args)
		var perr *uniforms.ParseError
		assert.True(t, errors.As(err, &perr), "%v: %v", args, err)
	}
}

func TestParseRejectsMalformedOverrideUnderConfigFile(t *testing.T) {
	path := writeFile(t, "effect.toml", `effect = "sepia"`)
	_, err := Parse("test", []string{"-config", path, "-param", "intensity=high"})
	var perr *uniforms.ParseError
	require.True(t, errors.As(err, &perr), "%v", err)
	assert.Equal(t, "intensity", perr.Key)
}

func TestParseConfigFileErrors(t *testing.T) {
	_, err := Parse("test", []string{"-config", filepath.Join(t.TempDir(), "missing.toml")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "%v", err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = Parse("test", []string{"-config", writeFile(t, "effect.ini", "effect=sepia")})
	assert.ErrorContains(t, err, "unsupported config file type")
}

func TestParseHelpAndUnknownFlag(t *testing.T) {
	_, err := Parse("test", []string{"-h"})
	assert.True(t, errors.Is(err, flag.ErrHelp), "%v", err)

	_, err = Parse("test", []string{"-nope"})
	assert.ErrorContains(t, err, "nope")
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	Usage("test", &buf)
	assert.Contains(t, buf.String(), "-param")
	assert.Contains(t, buf.String(), "properties file does not set")
}

func TestConfigFileUnderFlags(t *testing.T) {
	data := []struct {
		name    string
		content string
	}{
		{"effect.toml", `
effect = "vignette"
image = "gradient"
width = 1024
mode = "record"

[parameters]
radius = [0.5]
`},
		{"effect.yaml", `
effect: vignette
image: gradient
width: 1024
mode: record
parameters:
  radius: [0.5]
`},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			path := writeFile(t, d.name, d.content)

			opts, err := Parse("test", []string{"-config", path, "-image", "checker", "-param", "softness=0.25"})
			require.NoError(t, err)

			assert.Equal(t, "vignette", opts.Effect)
			assert.Equal(t, "checker", opts.Image, "flags must win over the file")
			assert.Equal(t, 1024, opts.Width)
			assert.Equal(t, 600, opts.Height, "unset values keep their defaults")
			assert.Equal(t, ModeRecord, opts.Mode)

			params, err := opts.ParameterOverrides()
			require.NoError(t, err)
			assert.Equal(t, uniforms.Parameters{"radius": {0.5}, "softness": {0.25}}, params)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	opts := Defaults()
	assert.Error(t, opts.LoadFile(filepath.Join(t.TempDir(), "missing.toml")))
	assert.Error(t, opts.LoadFile(writeFile(t, "effect.ini", "effect=sepia")))
	assert.Error(t, opts.LoadFile(writeFile(t, "effect.toml", "effect = ")))
}

func TestParameterOverridesRejectsBadArity(t *testing.T) {
	opts := Defaults()
	opts.Parameters = map[string][]float32{"v": {1, 2, 3, 4, 5}}
	_, err := opts.ParameterOverrides()
	assert.Error(t, err)
}

func TestOutputFile(t *testing.T) {
	opts := Defaults()
	assert.Equal(t, "effect.mp4", opts.OutputFile())
	opts.Mode = ModeSnapshot
	assert.Equal(t, "effect.png", opts.OutputFile())
	opts.Output = "out.png"
	assert.Equal(t, "out.png", opts.OutputFile())
}

func TestValidate(t *testing.T) {
	data := []struct {
		name   string
		modify func(*EffectOptions)
	}{
		{"unknown mode", func(o *EffectOptions) { o.Mode = "stream" }},
		{"empty effect", func(o *EffectOptions) { o.Effect = "" }},
		{"empty image", func(o *EffectOptions) { o.Image = "" }},
		{"zero width", func(o *EffectOptions) { o.Width = 0 }},
		{"record without fps", func(o *EffectOptions) { o.Mode = ModeRecord; o.FPS = 0 }},
		{"record with bad codec", func(o *EffectOptions) { o.Mode = ModeRecord; o.Codec = "vp9" }},
		{"reload without resources", func(o *EffectOptions) { o.HotReload = true }},
		{"headless view", func(o *EffectOptions) { o.Headless = true }},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			opts := Defaults()
			d.modify(opts)
			assert.Error(t, opts.Validate())
		})
	}
}
