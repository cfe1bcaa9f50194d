package util

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// SetLogger replaces the process logger. Tests install zap.NewNop or an
// observer core here.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

func Logger() *zap.Logger {
	return logger.Load()
}

// LogError logs an error with context
func LogError(message string, err error, fields ...zap.Field) {
	if err != nil {
		Logger().Error(message, append(fields, zap.Error(err))...)
	}
}

// LogInfo logs an informational message
func LogInfo(message string, fields ...zap.Field) {
	Logger().Info(message, fields...)
}

// LogWarning logs a warning message
func LogWarning(message string, fields ...zap.Field) {
	Logger().Warn(message, fields...)
}
