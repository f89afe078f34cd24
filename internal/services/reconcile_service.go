package services

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"saasbase/internal/events"
	"saasbase/internal/models/db_models"
	"saasbase/internal/pay/aifadian"
	"saasbase/internal/repositories"
	"saasbase/pkg/auth"
	"saasbase/pkg/utils"
)

// NormalizedPaymentEvent is the provider-agnostic tuple a webhook decoder
// extracts from an authenticated payload. It lives only for the duration of
// one delivery.
type NormalizedPaymentEvent struct {
	Email     string
	ProductID string
	OrderID   string
	Price     float64
	// Days a one-off purchase extends the subscription by. PermanentIncreaseDays
	// marks a permanent grant.
	IncreaseDays int
	// Set for subscription renewals: the provider-reported period end (unix
	// seconds) replaces the stored expiry outright.
	PeriodEnd *int64
	Simulate  bool
}

type ReconcileService interface {
	// Apply runs the entitlement state transition for one accepted payment
	// event. It returns an error only on persistence failure, which the
	// webhook layer surfaces as a retryable 5xx. Every application-level
	// dead end (replayed order, unknown user or product, empty correlation)
	// is acknowledged silently so providers stop retrying.
	Apply(ctx context.Context, provider db_models.OrderProvider, ev NormalizedPaymentEvent) error

	// SyncAifadianOrders backfills one provider-side order page through the
	// same reconciliation path, covering webhooks that never arrived. The
	// count reports orders that actually appended a ledger row.
	SyncAifadianOrders(ctx context.Context, page int) (int, error)

	// PingAifadian checks provider connectivity and credentials before an
	// operator runs a backfill.
	PingAifadian(ctx context.Context) error
}

// AifadianOrderSource is the slice of the Aifadian client the reconciler
// needs for backfills.
type AifadianOrderSource interface {
	Ping(ctx context.Context) (*aifadian.BaseResponse, error)
	QueryOrders(ctx context.Context, page int, outTradeNos []string, perPage int) (*aifadian.OrdersResponse, error)
	DecryptRemark(data string) aifadian.RemarkPayload
}

type reconcileService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	charges  events.ChargePublisher
	afd      AifadianOrderSource
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewReconcileService(
	users repositories.UserRepository,
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	charges events.ChargePublisher,
	afd AifadianOrderSource,
	logger *zap.SugaredLogger,
) ReconcileService {
	return &reconcileService{
		users:    users,
		products: products,
		orders:   orders,
		charges:  charges,
		afd:      afd,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *reconcileService) Apply(ctx context.Context, provider db_models.OrderProvider, ev NormalizedPaymentEvent) error {
	_, err := s.apply(ctx, provider, ev)
	return err
}

// apply reports whether the event actually appended a ledger row, so the
// backfill can count real applications rather than records walked.
func (s *reconcileService) apply(ctx context.Context, provider db_models.OrderProvider, ev NormalizedPaymentEvent) (bool, error) {
	if ev.OrderID == "" {
		return false, nil
	}

	processed, err := s.orders.HasProcessed(ctx, ev.OrderID)
	if err != nil {
		return false, utils.ErrDatabaseError
	}
	if processed {
		s.logger.Infow("order already processed, skipping", "order_id", ev.OrderID)
		return false, nil
	}

	if ev.Email == "" || ev.ProductID == "" {
		s.logger.Warnw("payment event without correlation, ignoring",
			"order_id", ev.OrderID, "provider", provider)
		return false, nil
	}

	user, err := s.users.FindByEmail(ctx, ev.Email)
	if err != nil {
		return false, utils.ErrDatabaseError
	}
	if user == nil {
		s.logger.Warnw("payment for unknown user, ignoring",
			"order_id", ev.OrderID, "email", ev.Email)
		return false, nil
	}

	product, err := s.products.FindByID(ctx, ev.ProductID)
	if err != nil {
		return false, utils.ErrDatabaseError
	}
	if product == nil {
		s.logger.Warnw("payment for unknown product, ignoring",
			"order_id", ev.OrderID, "product_id", ev.ProductID)
		return false, nil
	}

	// Admins are never downgraded by a purchase. For everyone else the
	// purchased product's role wins, even when it ranks lower than the
	// current one (last-purchase-wins).
	roleID := product.RoleID
	if user.RoleID == auth.RoleAdmin || user.RoleID == auth.RoleSuperAdmin {
		roleID = user.RoleID
	}

	inserted, err := s.orders.ApplyPayment(ctx, repositories.PaymentApplication{
		Order: &db_models.Order{
			OrderID:   ev.OrderID,
			Email:     ev.Email,
			ProductID: ev.ProductID,
			Price:     ev.Price,
			Type:      provider,
			Simulate:  ev.Simulate,
		},
		UserEmail:         user.Email,
		RoleID:            roleID,
		ProductType:       product.ProductType,
		EndSubscriptionAt: s.nextExpiry(user.EndSubscriptionAt, ev),
	})
	if err != nil {
		return false, utils.ErrDatabaseError
	}
	if !inserted {
		// Lost the insert race against a concurrent delivery.
		return false, nil
	}

	s.charges.Publish(events.UserCharge{
		UserID:   user.ID,
		Email:    user.Email,
		Price:    ev.Price,
		Provider: provider,
	})
	s.logger.Infow("payment reconciled",
		"order_id", ev.OrderID, "email", ev.Email, "role", roleID, "provider", provider)
	return true, nil
}

// nextExpiry computes the user's new subscription expiry. Renewals replace
// the stored value with the provider-reported period end; one-off purchases
// extend from the later of now and the current expiry.
func (s *reconcileService) nextExpiry(current int64, ev NormalizedPaymentEvent) int64 {
	if ev.PeriodEnd != nil {
		return *ev.PeriodEnd
	}
	if ev.IncreaseDays <= 0 {
		return current
	}
	if ev.IncreaseDays >= db_models.PermanentIncreaseDays {
		return db_models.EndSubscriptionNever
	}
	base := utils.LaterOf(current, s.now().Unix())
	return utils.AddDays(base, ev.IncreaseDays)
}

func (s *reconcileService) SyncAifadianOrders(ctx context.Context, page int) (int, error) {
	if page <= 0 {
		page = 1
	}
	resp, err := s.afd.QueryOrders(ctx, page, nil, 50)
	if err != nil {
		return 0, err
	}
	if resp.EC != 200 {
		s.logger.Warnw("aifadian query-order rejected", "ec", resp.EC, "em", resp.EM)
		return 0, nil
	}

	applied := 0
	for _, record := range resp.Data.List {
		remark := s.afd.DecryptRemark(record.Remark)
		orderID := record.CustomOrderID
		if orderID == "" {
			orderID = record.OutTradeNo
		}
		price, _ := strconv.ParseFloat(record.TotalAmount, 64)

		ok, err := s.apply(ctx, db_models.ProviderAifadian, NormalizedPaymentEvent{
			Email:        remark.Email,
			ProductID:    remark.ProductID,
			OrderID:      orderID,
			Price:        price,
			IncreaseDays: remark.IncreaseDay,
		})
		if err != nil {
			return applied, err
		}
		if ok {
			applied++
		}
	}
	return applied, nil
}

func (s *reconcileService) PingAifadian(ctx context.Context) error {
	resp, err := s.afd.Ping(ctx)
	if err != nil {
		return utils.ErrProviderUnavailable
	}
	if resp.EC != 200 {
		s.logger.Warnw("aifadian ping rejected", "ec", resp.EC, "em", resp.EM)
		return utils.ErrProviderUnavailable
	}
	return nil
}
