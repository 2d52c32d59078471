package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), "level %q", tt.input)
	}
}

func TestWithReturnsScopedLogger(t *testing.T) {
	l := New(slog.LevelInfo, "text")
	scoped := l.With(Module("filehash"))
	assert.NotNil(t, scoped)
	assert.NotSame(t, l, scoped)
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, FieldModule, Module("x").Key)
	assert.Equal(t, "x", Module("x").Value.String())
	assert.Equal(t, FieldStage, Stage("alarm").Key)
	assert.Equal(t, int64(3), Hits(3).Value.Int64())
	assert.Equal(t, assert.AnError.Error(), Error(assert.AnError).Value.String())
}
