package logger_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Provide(
	provideLogger, provideSugaredLogger,
)

func provideLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func provideSugaredLogger(logger *zap.Logger) *zap.SugaredLogger {
	return logger.Sugar()
}
