package sim

import (
	"github.com/sirupsen/logrus"
)

// A LogHook writes the lifecycle notifications of a controller to a logger.
type LogHook struct {
	logger logrus.FieldLogger
	level  logrus.Level
}

// NewLogHook returns a LogHook that writes to the logger at info level.
func NewLogHook(logger logrus.FieldLogger) *LogHook {
	return &LogHook{
		logger: logger,
		level:  logrus.InfoLevel,
	}
}

// WithLevel sets the level the notifications are logged at. Completed ticks
// are always logged at debug level.
func (h *LogHook) WithLevel(level logrus.Level) *LogHook {
	h.level = level
	return h
}

// Func logs the notification.
func (h *LogHook) Func(ctx HookCtx) {
	info, ok := ctx.Item.(Info)
	if !ok {
		return
	}

	entry := h.logger.WithFields(logrus.Fields{
		"run":  info.Run,
		"time": info.Time,
	})

	level := h.level
	if ctx.Pos == HookPosCompleteThreePhases {
		level = logrus.DebugLevel
	}

	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		entry.Error(ctx.Pos.Name)
	case logrus.WarnLevel:
		entry.Warn(ctx.Pos.Name)
	case logrus.InfoLevel:
		entry.Info(ctx.Pos.Name)
	default:
		entry.Debug(ctx.Pos.Name)
	}
}
