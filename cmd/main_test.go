package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionsReportsConfigErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.toml")
	opts, exit, code := parseOptions("goshadereffect", []string{"-config", missing}, &stdout, &stderr)
	assert.Nil(t, opts)
	assert.True(t, exit)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "failed to read config file")
	assert.Contains(t, stderr.String(), "missing.toml")
	assert.Empty(t, stdout.String())
}

func TestParseOptionsReportsMalformedParameter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	_, exit, code := parseOptions("goshadereffect", []string{"-param", "intensity=high"}, &stdout, &stderr)
	assert.True(t, exit)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), `"intensity"`)
}

func TestParseOptionsHelp(t *testing.T) {
	for _, arg := range []string{"-help", "-h"} {
		var stdout, stderr bytes.Buffer
		_, exit, code := parseOptions("goshadereffect", []string{arg}, &stdout, &stderr)
		assert.True(t, exit, arg)
		assert.Equal(t, 0, code, arg)
		assert.Contains(t, stdout.String(), "-effect", arg)
		assert.Empty(t, stderr.String(), arg)
	}
}

func TestParseOptionsContinues(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts, exit, _ := parseOptions("goshadereffect", []string{"-effect", "sepia"}, &stdout, &stderr)
	require.NotNil(t, opts)
	assert.False(t, exit)
	assert.Equal(t, "sepia", opts.Effect)
	assert.Empty(t, stderr.String())
}
