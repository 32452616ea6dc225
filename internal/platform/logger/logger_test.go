package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        Info,
		"debug":   Debug,
		" WARN ":  Warn,
		"warning": Warn,
		"error":   Error,
		"nope":    Info,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestZapLogger_WithMergesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With(map[string]any{"request_id": "r-1"})

	l.Warn("breed detection failed", map[string]any{"pet_name": "Buddy", "err": errors.New("boom"), "": "skip"})

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	require.Equal(t, "r-1", ctx["request_id"])
	require.Equal(t, "Buddy", ctx["pet_name"])
	require.Equal(t, "boom", ctx["err"])
	require.NotContains(t, ctx, "")
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
}
