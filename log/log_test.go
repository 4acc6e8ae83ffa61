package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)
	l.Debug("hidden")
	l.Info("shown", String("track", "barber"))
	_ = l.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"track":"barber"`)
}

func TestWithFilter(t *testing.T) {
	var buf bytes.Buffer
	opt, err := WithFilter("warn:loader info:engine")
	assert.NoError(t, err)
	l := New(&buf, DebugLevel, opt)
	l.Named("loader").Info("loader info")
	l.Named("loader").Warn("loader warn")
	l.Named("engine").Info("engine info")
	_ = l.Sync()

	out := buf.String()
	assert.False(t, strings.Contains(out, "loader info"))
	assert.Contains(t, out, "loader warn")
	assert.Contains(t, out, "engine info")
}

func TestWithFilter_InvalidRules(t *testing.T) {
	_, err := WithFilter("nope:engine")
	assert.Error(t, err)
}

func TestGetFromContext(t *testing.T) {
	assert.Same(t, Default(), GetFromContext(context.Background()))

	l := New(&bytes.Buffer{}, WarnLevel)
	ctx := AddToContext(context.Background(), l)
	assert.Same(t, l, GetFromContext(ctx))
}
