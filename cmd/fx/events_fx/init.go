package events_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"saasbase/internal/events"
	"saasbase/internal/repositories"
)

var Module = fx.Options(
	fx.Provide(provideDispatcher, providePublisher),
	fx.Invoke(registerLifecycle),
)

func provideDispatcher(users repositories.UserRepository, logger *zap.SugaredLogger) *events.Dispatcher {
	return events.NewDispatcher(64, logger,
		events.AccountingHandler(users, logger),
	)
}

func providePublisher(d *events.Dispatcher) events.ChargePublisher {
	return d
}

func registerLifecycle(lc fx.Lifecycle, d *events.Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			d.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Stop()
			return nil
		},
	})
}
