package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Priority is an android_LogPriority value.
type Priority int32

const (
	PriorityVerbose Priority = 2
	PriorityDebug   Priority = 3
	PriorityInfo    Priority = 4
	PriorityWarn    Priority = 5
	PriorityError   Priority = 6
	PriorityFatal   Priority = 7
)

// LogWriter receives one formatted log line.
type LogWriter interface {
	WriteLog(prio Priority, tag, msg string) error
}

// priorityFor maps zap levels onto logcat priorities.
func priorityFor(l zapcore.Level) Priority {
	switch {
	case l <= zapcore.DebugLevel:
		return PriorityDebug
	case l == zapcore.InfoLevel:
		return PriorityInfo
	case l == zapcore.WarnLevel:
		return PriorityWarn
	case l == zapcore.ErrorLevel:
		return PriorityError
	default:
		return PriorityFatal
	}
}

type logcatCore struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
	w   LogWriter
	tag string
}

// NewLogcatCore returns a zap core that formats entries on one line and
// hands them to w with a priority matching the entry level. Timestamps are
// left to logcat.
func NewLogcatCore(w LogWriter, tag string, enab zapcore.LevelEnabler) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		NameKey:          "logger",
		EncodeName:       zapcore.FullNameEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
	return &logcatCore{LevelEnabler: enab, enc: enc, w: w, tag: tag}
}

func (c *logcatCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &logcatCore{LevelEnabler: c.LevelEnabler, enc: c.enc.Clone(), w: c.w, tag: c.tag}
	for _, f := range fields {
		f.AddTo(clone.enc)
	}
	return clone
}

func (c *logcatCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *logcatCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	msg := strings.TrimRight(buf.String(), "\n")
	buf.Free()
	return c.w.WriteLog(priorityFor(ent.Level), c.tag, msg)
}

func (c *logcatCore) Sync() error {
	return nil
}
