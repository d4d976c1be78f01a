package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func ProvideLoggerMiddleware() *Middleware { return &Middleware{} }

// ProvideLogger is the process logger (system.log); buffered entries are flushed on stop.
func ProvideLogger(lc fx.Lifecycle) *zap.Logger {
	l := NewLog("system.log")
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = l.Sync()
			return nil
		},
	})
	return l
}
