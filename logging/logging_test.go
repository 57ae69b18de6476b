package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromReturnsRootWithoutContextLogger(t *testing.T) {
	root := Init(false)
	assert.Same(t, root, From(context.Background()))
}

func TestContextCarriesLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := Context(context.Background(), zap.New(core))

	logger, _ := SubFrom(ctx, "renderer")
	logger.Info("frame")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "renderer", entries[0].LoggerName)
	}
}

func TestFromWithFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := Context(context.Background(), zap.New(core))

	_, ctx = FromWithFields(ctx, zap.String("effect", "sepia"))
	From(ctx).Debug("loaded")

	entries := logs.FilterField(zap.String("effect", "sepia")).All()
	assert.Len(t, entries, 1)
}

func TestNilLoggerFallsBackToRoot(t *testing.T) {
	root := Init(true)
	ctx := Context(context.Background(), nil)
	assert.Same(t, root, From(ctx))
}
