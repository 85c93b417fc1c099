package logging

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logLine struct {
	prio Priority
	tag  string
	msg  string
}

type captureWriter struct {
	lines []logLine
}

func (w *captureWriter) WriteLog(prio Priority, tag, msg string) error {
	w.lines = append(w.lines, logLine{prio, tag, msg})
	return nil
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		level zapcore.Level
		want  Priority
	}{
		{zapcore.DebugLevel, PriorityDebug},
		{zapcore.InfoLevel, PriorityInfo},
		{zapcore.WarnLevel, PriorityWarn},
		{zapcore.ErrorLevel, PriorityError},
		{zapcore.DPanicLevel, PriorityFatal},
		{zapcore.FatalLevel, PriorityFatal},
	}

	for _, tc := range tests {
		t.Run(tc.level.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, priorityFor(tc.level))
		})
	}
}

func TestLogcatCoreWrite(t *testing.T) {
	w := &captureWriter{}
	logger := zap.New(NewLogcatCore(w, "PCSX2Achievements", zapcore.InfoLevel))

	logger.Named("achievements").Warn("callback failed", zap.String("method", "onGameComplete"))
	logger.Debug("filtered out")

	require.Len(t, w.lines, 1)
	line := w.lines[0]
	assert.Equal(t, PriorityWarn, line.prio)
	assert.Equal(t, "PCSX2Achievements", line.tag)
	assert.Contains(t, line.msg, "achievements")
	assert.Contains(t, line.msg, "callback failed")
	assert.Contains(t, line.msg, "onGameComplete")
	assert.NotContains(t, line.msg, "\n")
}

func TestLogcatCoreWith(t *testing.T) {
	w := &captureWriter{}
	base := zap.New(NewLogcatCore(w, "T", zapcore.DebugLevel))
	child := base.With(zap.Int("attempt", 2))

	child.Info("loading driver")
	base.Info("plain")

	require.Len(t, w.lines, 2)
	assert.Contains(t, w.lines[0].msg, "attempt")
	assert.NotContains(t, w.lines[1].msg, "attempt")
}

func TestNewFallsBackWithoutLogcat(t *testing.T) {
	if runtime.GOOS == "android" {
		t.Skip("logcat is available on android")
	}

	logger, err := New(Options{Logcat: true})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
