package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"saasbase/internal/events"
	"saasbase/internal/models/db_models"
	"saasbase/internal/pay/aifadian"
	"saasbase/internal/repositories"
	"saasbase/pkg/auth"
	"saasbase/pkg/utils"
)

type fakeUserRepo struct {
	byEmail map[string]*db_models.User
	byID    map[string]*db_models.User

	stripeCustomers map[string]string
	charges         map[uuid.UUID]float64
}

func newFakeUserRepo(users ...*db_models.User) *fakeUserRepo {
	r := &fakeUserRepo{
		byEmail:         map[string]*db_models.User{},
		byID:            map[string]*db_models.User{},
		stripeCustomers: map[string]string{},
		charges:         map[uuid.UUID]float64{},
	}
	for _, u := range users {
		r.byEmail[u.Email] = u
		r.byID[u.ID.String()] = u
	}
	return r
}

func (r *fakeUserRepo) Insert(ctx context.Context, user *db_models.User) error {
	r.byEmail[user.Email] = user
	r.byID[user.ID.String()] = user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*db_models.User, error) {
	return r.byID[id], nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*db_models.User, error) {
	return r.byEmail[email], nil
}

func (r *fakeUserRepo) List(ctx context.Context, page, size int) ([]db_models.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return nil
}

func (r *fakeUserRepo) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	r.stripeCustomers[id.String()] = customerID
	if u, ok := r.byID[id.String()]; ok {
		u.StripeCustomerID = customerID
	}
	return nil
}

func (r *fakeUserRepo) SetForbidden(ctx context.Context, id string, forbidden bool) error {
	return nil
}

func (r *fakeUserRepo) AddCharge(ctx context.Context, id uuid.UUID, amount float64) error {
	r.charges[id] += amount
	return nil
}

type fakeProductRepo struct {
	byID map[string]*db_models.Product
}

func newFakeProductRepo(products ...*db_models.Product) *fakeProductRepo {
	r := &fakeProductRepo{byID: map[string]*db_models.Product{}}
	for _, p := range products {
		r.byID[p.ID.String()] = p
	}
	return r
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id string) (*db_models.Product, error) {
	return r.byID[id], nil
}

func (r *fakeProductRepo) ListActive(ctx context.Context) ([]db_models.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) List(ctx context.Context) ([]db_models.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Insert(ctx context.Context, product *db_models.Product) error { return nil }
func (r *fakeProductRepo) Save(ctx context.Context, product *db_models.Product) error   { return nil }
func (r *fakeProductRepo) Delete(ctx context.Context, id string) error                  { return nil }

type fakeOrderRepo struct {
	processed map[string]bool
	applied   []repositories.PaymentApplication
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{processed: map[string]bool{}}
}

func (r *fakeOrderRepo) HasProcessed(ctx context.Context, orderID string) (bool, error) {
	return r.processed[orderID], nil
}

func (r *fakeOrderRepo) ApplyPayment(ctx context.Context, app repositories.PaymentApplication) (bool, error) {
	if r.processed[app.Order.OrderID] {
		return false, nil
	}
	r.processed[app.Order.OrderID] = true
	r.applied = append(r.applied, app)
	return true, nil
}

func (r *fakeOrderRepo) List(ctx context.Context, page, size int) ([]db_models.Order, int64, error) {
	return nil, 0, nil
}

type fakePublisher struct {
	events []events.UserCharge
}

func (p *fakePublisher) Publish(ev events.UserCharge) {
	p.events = append(p.events, ev)
}

type fakeOrderSource struct {
	resp *aifadian.OrdersResponse
	ping *aifadian.BaseResponse
	key  string
}

func (s *fakeOrderSource) Ping(ctx context.Context) (*aifadian.BaseResponse, error) {
	if s.ping == nil {
		return &aifadian.BaseResponse{EC: 200}, nil
	}
	return s.ping, nil
}

func (s *fakeOrderSource) QueryOrders(ctx context.Context, page int, outTradeNos []string, perPage int) (*aifadian.OrdersResponse, error) {
	return s.resp, nil
}

func (s *fakeOrderSource) DecryptRemark(data string) aifadian.RemarkPayload {
	return aifadian.DecryptRemark(s.key, data)
}

func unixDate(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix()
}

func newTestReconciler(users *fakeUserRepo, products *fakeProductRepo, orders *fakeOrderRepo, pub *fakePublisher, afd AifadianOrderSource, now time.Time) *reconcileService {
	svc := NewReconcileService(users, products, orders, pub, afd, zap.NewNop().Sugar()).(*reconcileService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestApplyExtendsFromLaterOfNowAndExpiry(t *testing.T) {
	user := &db_models.User{
		BaseModel:         db_models.BaseModel{ID: uuid.New()},
		Email:             "buyer@example.com",
		RoleID:            auth.RoleUser,
		EndSubscriptionAt: unixDate(2025, time.January, 10),
	}
	product := &db_models.Product{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		RoleID:    "VIP_1",
		TimeCycle: db_models.CycleMonthly,
	}
	users := newFakeUserRepo(user)
	orders := newFakeOrderRepo()
	pub := &fakePublisher{}
	svc := newTestReconciler(users, newFakeProductRepo(product), orders, pub, nil,
		time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC))

	err := svc.Apply(context.Background(), db_models.ProviderStripe, NormalizedPaymentEvent{
		Email:        user.Email,
		ProductID:    product.ID.String(),
		OrderID:      "evt_1",
		Price:        9.9,
		IncreaseDays: 30,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(orders.applied) != 1 {
		t.Fatalf("applied %d payments, want 1", len(orders.applied))
	}
	app := orders.applied[0]
	// Expiry is in the future, so 30 days extend from it, not from now.
	if want := unixDate(2025, time.February, 9); app.EndSubscriptionAt != want {
		t.Errorf("EndSubscriptionAt = %d, want %d", app.EndSubscriptionAt, want)
	}
	if app.RoleID != "VIP_1" {
		t.Errorf("RoleID = %q, want VIP_1", app.RoleID)
	}
	if len(pub.events) != 1 || pub.events[0].Price != 9.9 {
		t.Errorf("charge events = %+v, want one at 9.9", pub.events)
	}
}

func TestApplyExtendsFromNowWhenExpired(t *testing.T) {
	user := &db_models.User{
		BaseModel:         db_models.BaseModel{ID: uuid.New()},
		Email:             "buyer@example.com",
		RoleID:            auth.RoleUser,
		EndSubscriptionAt: unixDate(2024, time.December, 1),
	}
	product := &db_models.Product{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		RoleID:    "VIP_1",
		TimeCycle: db_models.CycleMonthly,
	}
	orders := newFakeOrderRepo()
	svc := newTestReconciler(newFakeUserRepo(user), newFakeProductRepo(product), orders, &fakePublisher{}, nil,
		time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC))

	if err := svc.Apply(context.Background(), db_models.ProviderStripe, NormalizedPaymentEvent{
		Email:        user.Email,
		ProductID:    product.ID.String(),
		OrderID:      "evt_2",
		IncreaseDays: 30,
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if want := unixDate(2025, time.January, 14); orders.applied[0].EndSubscriptionAt != want {
		t.Errorf("EndSubscriptionAt = %d, want %d", orders.applied[0].EndSubscriptionAt, want)
	}
}

func TestApplyPeriodEndReplacesExpiry(t *testing.T) {
	user := &db_models.User{
		BaseModel:         db_models.BaseModel{ID: uuid.New()},
		Email:             "buyer@example.com",
		RoleID:            auth.RoleUser,
		EndSubscriptionAt: unixDate(2030, time.January, 1),
	}
	product := &db_models.Product{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		RoleID:    "VIP_1",
	}
	orders := newFakeOrderRepo()
	svc := newTestReconciler(newFakeUserRepo(user), newFakeProductRepo(product), orders, &fakePublisher{}, nil, time.Now())

	periodEnd := unixDate(2025, time.March, 1)
	if err := svc.Apply(context.Background(), db_models.ProviderStripe, NormalizedPaymentEvent{
		Email:     user.Email,
		ProductID: product.ID.String(),
		OrderID:   "evt_3",
		PeriodEnd: &periodEnd,
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// The provider-reported period end wins even when it moves the expiry back.
	if orders.applied[0].EndSubscriptionAt != periodEnd {
		t.Errorf("EndSubscriptionAt = %d, want %d", orders.applied[0].EndSubscriptionAt, periodEnd)
	}
}

func TestApplyPermanentGrant(t *testing.T) {
	user := &db_models.User{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		Email:     "buyer@example.com",
		RoleID:    auth.RoleUser,
	}
	product := &db_models.Product{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		RoleID:    "VIP_5",
		TimeCycle: db_models.CyclePermanent,
	}
	orders := newFakeOrderRepo()
	svc := newTestReconciler(newFakeUserRepo(user), newFakeProductRepo(product), orders, &fakePublisher{}, nil, time.Now())

	if err := svc.Apply(context.Background(), db_models.ProviderAifadian, NormalizedPaymentEvent{
		Email:        user.Email,
		ProductID:    product.ID.String(),
		OrderID:      "afd_1",
		IncreaseDays: product.TimeCycle.IncreaseDays(),
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if orders.applied[0].EndSubscriptionAt != db_models.EndSubscriptionNever {
		t.Errorf("EndSubscriptionAt = %d, want EndSubscriptionNever", orders.applied[0].EndSubscriptionAt)
	}
}

func TestApplyKeepsAdminRoles(t *testing.T) {
	for _, roleID := range []string{auth.RoleAdmin, auth.RoleSuperAdmin} {
		user := &db_models.User{
			BaseModel: db_models.BaseModel{ID: uuid.New()},
			Email:     roleID + "@example.com",
			RoleID:    roleID,
		}
		product := &db_models.Product{
			BaseModel: db_models.BaseModel{ID: uuid.New()},
			RoleID:    "VIP_1",
			TimeCycle: db_models.CycleMonthly,
		}
		orders := newFakeOrderRepo()
		svc := newTestReconciler(newFakeUserRepo(user), newFakeProductRepo(product), orders, &fakePublisher{}, nil, time.Now())

		if err := svc.Apply(context.Background(), db_models.ProviderStripe, NormalizedPaymentEvent{
			Email:        user.Email,
			ProductID:    product.ID.String(),
			OrderID:      "evt_" + roleID,
			IncreaseDays: 30,
		}); err != nil {
			t.Fatalf("Apply(%s): %v", roleID, err)
		}

		if orders.applied[0].RoleID != roleID {
			t.Errorf("RoleID = %q, want %q preserved", orders.applied[0].RoleID, roleID)
		}
	}
}

func TestApplySkipsDeadEnds(t *testing.T) {
	user := &db_models.User{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		Email:     "buyer@example.com",
		RoleID:    auth.RoleUser,
	}
	product := &db_models.Product{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		RoleID:    "VIP_1",
	}

	tests := []struct {
		name string
		ev   NormalizedPaymentEvent
	}{
		{"empty order id", NormalizedPaymentEvent{Email: user.Email, ProductID: product.ID.String()}},
		{"empty correlation", NormalizedPaymentEvent{OrderID: "evt_x"}},
		{"unknown user", NormalizedPaymentEvent{Email: "nobody@example.com", ProductID: product.ID.String(), OrderID: "evt_y"}},
		{"unknown product", NormalizedPaymentEvent{Email: user.Email, ProductID: uuid.NewString(), OrderID: "evt_z"}},
		{"malformed product id", NormalizedPaymentEvent{Email: user.Email, ProductID: "plan_123", OrderID: "evt_w"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := newFakeOrderRepo()
			pub := &fakePublisher{}
			svc := newTestReconciler(newFakeUserRepo(user), newFakeProductRepo(product), orders, pub, nil, time.Now())

			if err := svc.Apply(context.Background(), db_models.ProviderStripe, tt.ev); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if len(orders.applied) != 0 {
				t.Errorf("applied %d payments, want 0", len(orders.applied))
			}
			if len(pub.events) != 0 {
				t.Errorf("published %d charge events, want 0", len(pub.events))
			}
		})
	}
}

func TestApplyIdempotentOnRedelivery(t *testing.T) {
	user := &db_models.User{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		Email:     "buyer@example.com",
		RoleID:    auth.RoleUser,
	}
	product := &db_models.Product{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		RoleID:    "VIP_1",
		TimeCycle: db_models.CycleMonthly,
	}
	orders := newFakeOrderRepo()
	pub := &fakePublisher{}
	svc := newTestReconciler(newFakeUserRepo(user), newFakeProductRepo(product), orders, pub, nil, time.Now())

	ev := NormalizedPaymentEvent{
		Email:        user.Email,
		ProductID:    product.ID.String(),
		OrderID:      "evt_dup",
		Price:        5,
		IncreaseDays: 30,
	}
	for i := 0; i < 3; i++ {
		if err := svc.Apply(context.Background(), db_models.ProviderStripe, ev); err != nil {
			t.Fatalf("Apply #%d: %v", i, err)
		}
	}

	if len(orders.applied) != 1 {
		t.Errorf("applied %d payments, want 1", len(orders.applied))
	}
	if len(pub.events) != 1 {
		t.Errorf("published %d charge events, want 1", len(pub.events))
	}
}

func TestSyncAifadianOrders(t *testing.T) {
	const key = "sync-key"
	user := &db_models.User{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		Email:     "buyer@example.com",
		RoleID:    auth.RoleUser,
	}
	product := &db_models.Product{
		BaseModel: db_models.BaseModel{ID: uuid.New()},
		RoleID:    "VIP_1",
		TimeCycle: db_models.CycleWeekly,
	}

	remark, err := aifadian.EncryptRemark(key, aifadian.RemarkPayload{
		Email:       user.Email,
		ProductID:   product.ID.String(),
		IncreaseDay: 7,
		OrderID:     "custom-1",
	})
	if err != nil {
		t.Fatalf("EncryptRemark: %v", err)
	}

	resp := &aifadian.OrdersResponse{BaseResponse: aifadian.BaseResponse{EC: 200}}
	resp.Data.List = []aifadian.OrderRecord{
		{OutTradeNo: "trade-1", CustomOrderID: "custom-1", TotalAmount: "5.00", Remark: remark},
		{OutTradeNo: "trade-2", TotalAmount: "1.00", Remark: "garbage"},
	}

	orders := newFakeOrderRepo()
	svc := newTestReconciler(newFakeUserRepo(user), newFakeProductRepo(product), orders, &fakePublisher{},
		&fakeOrderSource{resp: resp, key: key}, time.Now())

	n, err := svc.SyncAifadianOrders(context.Background(), 1)
	if err != nil {
		t.Fatalf("SyncAifadianOrders: %v", err)
	}
	// Only the record with a decryptable remark produces a ledger row, and
	// only that one is counted.
	if n != 1 {
		t.Errorf("reported %d applied orders, want 1", n)
	}
	if len(orders.applied) != 1 {
		t.Fatalf("applied %d payments, want 1", len(orders.applied))
	}
	if orders.applied[0].Order.OrderID != "custom-1" {
		t.Errorf("OrderID = %q, want custom-1", orders.applied[0].Order.OrderID)
	}
	if orders.applied[0].Order.Price != 5 {
		t.Errorf("Price = %v, want 5", orders.applied[0].Order.Price)
	}
}

func TestPingAifadian(t *testing.T) {
	svc := newTestReconciler(newFakeUserRepo(), newFakeProductRepo(), newFakeOrderRepo(), &fakePublisher{},
		&fakeOrderSource{}, time.Now())
	if err := svc.PingAifadian(context.Background()); err != nil {
		t.Errorf("PingAifadian: %v", err)
	}

	svc = newTestReconciler(newFakeUserRepo(), newFakeProductRepo(), newFakeOrderRepo(), &fakePublisher{},
		&fakeOrderSource{ping: &aifadian.BaseResponse{EC: 401, EM: "bad token"}}, time.Now())
	if err := svc.PingAifadian(context.Background()); !errors.Is(err, utils.ErrProviderUnavailable) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}
