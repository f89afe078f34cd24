package account_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"saasbase/internal/api/controllers"
	"saasbase/internal/repositories"
	"saasbase/internal/services"
	"saasbase/pkg/memcache"
)

var Module = fx.Provide(
	provideCodeStore,
	provideNotifier,
	provideAccountService,
	provideAccountController,
)

func provideCodeStore() memcache.CodeStore {
	return memcache.NewValidCodes()
}

func provideNotifier(logger *zap.SugaredLogger) services.Notifier {
	return services.NewLogNotifier(logger)
}

func provideAccountService(
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	codes memcache.CodeStore,
	notifier services.Notifier,
	logger *zap.SugaredLogger,
) services.AccountServiceInterface {
	return services.NewAccountService(users, roles, codes, notifier, logger)
}

func provideAccountController(accountService services.AccountServiceInterface) *controllers.AccountController {
	return controllers.NewAccountController(accountService)
}
