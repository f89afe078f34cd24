package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"saasbase/internal/models/db_models"
	"saasbase/internal/models/response_models"
	"saasbase/internal/pay"
	"saasbase/internal/pay/aifadian"
	"saasbase/internal/repositories"
	"saasbase/pkg/auth"
	"saasbase/pkg/utils"
)

type CheckoutService interface {
	// CreateCheckoutIntent builds a provider-specific redirect target for a
	// user buying a product. Fails with ErrRoleNotAllowed when the purchase
	// would illegitimately replace a higher-ranked role.
	CreateCheckoutIntent(ctx context.Context, userID, productID, provider string) (*response_models.CheckoutIntentResponse, error)
}

// AifadianOrderURLBuilder is the slice of the Aifadian client the checkout
// path needs.
type AifadianOrderURLBuilder interface {
	CreateOrderURL(planID, customOrderID string, payload aifadian.RemarkPayload) (string, error)
}

type checkoutService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	stripe   pay.StripeGateway
	afd      AifadianOrderURLBuilder
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewCheckoutService(
	users repositories.UserRepository,
	products repositories.ProductRepository,
	stripe pay.StripeGateway,
	afd AifadianOrderURLBuilder,
	logger *zap.SugaredLogger,
) CheckoutService {
	return &checkoutService{
		users:    users,
		products: products,
		stripe:   stripe,
		afd:      afd,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *checkoutService) CreateCheckoutIntent(ctx context.Context, userID, productID, provider string) (*response_models.CheckoutIntentResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if product == nil {
		return nil, utils.ErrProductNotFound
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if user == nil {
		return nil, utils.ErrAccountNotFound
	}

	// A purchase must not silently demote a privileged account.
	if !auth.NewClaim(user.RoleID, nil).CanReplace(product.RoleID) {
		return nil, utils.ErrRoleNotAllowed
	}

	switch provider {
	case "stripe":
		return s.stripeIntent(ctx, user, product)
	case "aifadian":
		return s.aifadianIntent(user, product)
	default:
		return nil, utils.ErrProviderNotSupported
	}
}

func (s *checkoutService) stripeIntent(ctx context.Context, user *db_models.User, product *db_models.Product) (*response_models.CheckoutIntentResponse, error) {
	info := product.StripeInfo.Data()
	if info.PriceID == "" || info.Quantity <= 0 {
		return nil, utils.ErrProviderInfoMissing
	}

	if user.StripeCustomerID == "" {
		customerID, err := s.stripe.EnsureCustomer(ctx, user.Email)
		if err != nil {
			s.logger.Errorw("stripe customer provisioning failed", "email", user.Email, "error", err)
			return nil, err
		}
		if err := s.users.SetStripeCustomerID(ctx, user.ID, customerID); err != nil {
			return nil, utils.ErrDatabaseError
		}
		user.StripeCustomerID = customerID
	}

	const callbackURL = "/"
	var sessionID string
	var err error
	switch product.ProductType {
	case db_models.ProductProMonthly, db_models.ProductProYearly:
		cycle := "monthly"
		if product.ProductType == db_models.ProductProYearly {
			cycle = "yearly"
		}
		sessionID, err = s.stripe.CreateSubscriptionSession(ctx, pay.SubscriptionSessionParams{
			CustomerID:  user.StripeCustomerID,
			Quantity:    info.Quantity,
			Email:       user.Email,
			ProductID:   product.ID.String(),
			CallbackURL: callbackURL,
			Cycle:       cycle,
		})
	default:
		sessionID, err = s.stripe.CreateFixedSession(ctx, pay.FixedSessionParams{
			CustomerID:  user.StripeCustomerID,
			Quantity:    info.Quantity,
			Email:       user.Email,
			ProductID:   product.ID.String(),
			CallbackURL: callbackURL,
			IncreaseDay: product.TimeCycle.IncreaseDays(),
		})
	}
	if err != nil {
		return nil, err
	}
	return &response_models.CheckoutIntentResponse{SessionID: sessionID, Type: "stripe"}, nil
}

func (s *checkoutService) aifadianIntent(user *db_models.User, product *db_models.Product) (*response_models.CheckoutIntentResponse, error) {
	info := product.AifadianInfo.Data()
	if info.PlanID == "" {
		return nil, utils.ErrProviderInfoMissing
	}

	// Locally-unique order id; the provider echoes it back as custom_order_id.
	orderID := fmt.Sprintf("aifadian_%s_%d", product.ID.String(), s.now().UnixMilli())

	url, err := s.afd.CreateOrderURL(info.PlanID, orderID, aifadian.RemarkPayload{
		Email:       user.Email,
		ProductID:   product.ID.String(),
		IncreaseDay: product.TimeCycle.IncreaseDays(),
		OrderID:     orderID,
	})
	if err != nil {
		return nil, err
	}
	return &response_models.CheckoutIntentResponse{URL: url, Type: "aifadian"}, nil
}
