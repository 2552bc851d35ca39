// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	require.NotNil(t, Logger)
	assert.NotPanics(t, func() {
		Logger.Infow("before initialize", "key", "value")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zap.AtomicLevel
	}{
		{"debug", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"WARN", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"warning", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"", zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"verbose", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want.Level(), ParseLevel(tt.in))
		})
	}
}

func TestInitialize(t *testing.T) {
	original := Logger
	defer func() { Logger = original }()

	require.NoError(t, Initialize(Config{Level: "debug"}))
	assert.NotSame(t, original, Logger)

	require.NoError(t, Initialize(Config{Level: "info", JSON: true}))
	assert.NotPanics(t, func() {
		Named("pipeline").Debugw("suppressed at info level")
	})
}
