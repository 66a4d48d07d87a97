package logging_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/designlib/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	require.NotNil(t, logging.Default())

	tl := logging.CaptureLoggingForTest(t)
	logging.Info().Str("file", "plan1.pdf").Msg("stored")
	logging.Warn().Msg("mirror unavailable")
	logging.Err(errors.New("boom")).Msg("failed")

	tl.AssertCount(t, 3)
	tl.AssertContains(t, `"file":"plan1.pdf"`)
	tl.AssertContains(t, `"level":"warn"`)
	tl.AssertContains(t, `"error":"boom"`)
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(buf)
	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"time"`)
}

func TestLoggerLevels(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	tests := []struct {
		name   string
		level  string
		want   []string
		reject []string
	}{
		{name: "debug", level: "debug", want: []string{`"level":"debug"`, `"level":"error"`}},
		{name: "error only", level: "error", want: []string{`"level":"error"`}, reject: []string{`"level":"info"`}},
		{name: "warning alias", level: "warning", want: []string{`"level":"error"`}, reject: []string{`"level":"info"`}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.NewLoggerFromConfig(&logging.Config{Level: tc.level, Format: "json", Output: "discard"}).Output(buf)
			logger.Debug().Msg("d")
			logger.Info().Msg("i")
			logger.Error().Msg("e")
			for _, w := range tc.want {
				assert.Contains(t, buf.String(), w)
			}
			for _, r := range tc.reject {
				assert.NotContains(t, buf.String(), r)
			}
		})
	}
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)
	tl.Info().Msg("message 1")
	tl.Error().Msg("message 2")

	tl.AssertContains(t, "message 1")
	tl.AssertNotContains(t, "message 3")
	tl.AssertCount(t, 2)
	assert.True(t, tl.ContainsAll("message 1", "message 2"))
	assert.Equal(t, 1, tl.CountContaining(`"level":"error"`))

	tl.Clear()
	assert.Equal(t, 0, tl.Count())
}

func TestDisableLoggingForTest(t *testing.T) {
	before := logging.Default().GetLevel()
	t.Run("silenced", func(t *testing.T) {
		logging.DisableLoggingForTest(t)
		assert.Equal(t, zerolog.Disabled, logging.Default().GetLevel())
	})
	assert.Equal(t, before, logging.Default().GetLevel())
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNopLogger()
	require.NotNil(t, logger)
	logger.Info().Msg("discarded")
	logging.WithLogger(context.Background(), logger)
}
