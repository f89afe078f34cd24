package billing_fx

import (
	"os"
	"strconv"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"saasbase/internal/api/controllers"
	"saasbase/internal/events"
	"saasbase/internal/pay"
	"saasbase/internal/pay/aifadian"
	"saasbase/internal/repositories"
	"saasbase/internal/services"
)

var Module = fx.Provide(
	provideStripeConfig,
	provideStripeGateway,
	provideAifadianConfig,
	provideAifadianClient,
	provideOrderSource,
	provideOrderURLBuilder,
	provideCheckoutService,
	provideReconcileService,
	providePayController,
	provideWebhookController,
)

func provideStripeConfig() pay.StripeConfig {
	return pay.StripeConfig{
		SecretKey:         os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret:     os.Getenv("STRIPE_WEBHOOK_SECRET"),
		RechargeConfusion: os.Getenv("RECHARGE_CONFUSION"),
		PriceIDMonthly:    os.Getenv("STRIPE_PRICE_ID_MONTHLY"),
		PriceIDYearly:     os.Getenv("STRIPE_PRICE_ID_YEARLY"),
		PriceIDFixed:      os.Getenv("STRIPE_PRICE_ID_FIXED"),
		BasePriceMonthly:  envFloat("STRIPE_BASE_PRICE_MONTHLY"),
		BasePriceYearly:   envFloat("STRIPE_BASE_PRICE_YEARLY"),
		BasePriceFixed:    envFloat("STRIPE_BASE_PRICE_FIXED"),
		AppBaseURL:        os.Getenv("APP_BASE_URL"),
	}
}

func envFloat(key string) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func provideStripeGateway(cfg pay.StripeConfig) pay.StripeGateway {
	return pay.NewStripeGateway(cfg)
}

func provideAifadianConfig() aifadian.Config {
	return aifadian.Config{
		BaseURL:    os.Getenv("AIFADIAN_URL"),
		AppID:      os.Getenv("AIFADIAN_USER_ID"),
		Token:      os.Getenv("AIFADIAN_TOKEN"),
		EncryptKey: os.Getenv("AIFADIAN_ENCRYPT_KEY"),
	}
}

func provideAifadianClient(cfg aifadian.Config) *aifadian.Client {
	return aifadian.NewClient(cfg)
}

func provideOrderSource(client *aifadian.Client) services.AifadianOrderSource {
	return client
}

func provideOrderURLBuilder(client *aifadian.Client) services.AifadianOrderURLBuilder {
	return client
}

func provideCheckoutService(
	users repositories.UserRepository,
	products repositories.ProductRepository,
	stripe pay.StripeGateway,
	afd services.AifadianOrderURLBuilder,
	logger *zap.SugaredLogger,
) services.CheckoutService {
	return services.NewCheckoutService(users, products, stripe, afd, logger)
}

func provideReconcileService(
	users repositories.UserRepository,
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	charges events.ChargePublisher,
	afd services.AifadianOrderSource,
	logger *zap.SugaredLogger,
) services.ReconcileService {
	return services.NewReconcileService(users, products, orders, charges, afd, logger)
}

func providePayController(checkoutService services.CheckoutService) *controllers.PayController {
	return controllers.NewPayController(checkoutService)
}

func provideWebhookController(
	reconciler services.ReconcileService,
	stripeCfg pay.StripeConfig,
	afdCfg aifadian.Config,
	logger *zap.SugaredLogger,
) *controllers.WebhookController {
	return controllers.NewWebhookController(reconciler, stripeCfg, afdCfg.EncryptKey, logger)
}
