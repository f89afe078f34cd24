package pay

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// Extra path segment acting as a lightweight secret on the webhook route.
	RechargeConfusion string

	PriceIDMonthly string
	PriceIDYearly  string
	PriceIDFixed   string

	BasePriceMonthly float64
	BasePriceYearly  float64
	BasePriceFixed   float64

	AppBaseURL string
}

// Metadata keys round-tripped through Stripe so the webhook can correlate the
// event without guessing.
const (
	MetaEmail       = "email"
	MetaProductID   = "productId"
	MetaPrice       = "price"
	MetaType        = "type"
	MetaIncreaseDay = "increaseDay"
)

type SubscriptionSessionParams struct {
	CustomerID  string
	Quantity    int64
	Email       string
	ProductID   string
	CallbackURL string
	// "monthly" or "yearly"
	Cycle string
}

type FixedSessionParams struct {
	CustomerID  string
	Quantity    int64
	Email       string
	ProductID   string
	CallbackURL string
	IncreaseDay int
}

// StripeGateway wraps the Stripe calls the checkout path needs, so services
// stay testable without network access.
type StripeGateway interface {
	EnsureCustomer(ctx context.Context, email string) (string, error)
	CreateSubscriptionSession(ctx context.Context, p SubscriptionSessionParams) (string, error)
	CreateFixedSession(ctx context.Context, p FixedSessionParams) (string, error)
}

type stripeGateway struct {
	cfg StripeConfig
}

func NewStripeGateway(cfg StripeConfig) StripeGateway {
	stripe.Key = cfg.SecretKey
	return &stripeGateway{cfg: cfg}
}

// EnsureCustomer finds the Stripe customer for email or creates one.
func (g *stripeGateway) EnsureCustomer(ctx context.Context, email string) (string, error) {
	searchParams := &stripe.CustomerSearchParams{
		SearchParams: stripe.SearchParams{
			Query:   fmt.Sprintf(`email:"%s"`, email),
			Limit:   stripe.Int64(1),
			Context: ctx,
		},
	}
	iter := customer.Search(searchParams)
	for iter.Next() {
		return iter.Customer().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}

	created, err := customer.New(&stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Email:  stripe.String(email),
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

func (g *stripeGateway) CreateSubscriptionSession(ctx context.Context, p SubscriptionSessionParams) (string, error) {
	priceID := g.cfg.PriceIDMonthly
	basePrice := g.cfg.BasePriceMonthly
	if p.Cycle == "yearly" {
		priceID = g.cfg.PriceIDYearly
		basePrice = g.cfg.BasePriceYearly
	}
	price := basePrice * float64(p.Quantity)

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(priceID),
			Quantity: stripe.Int64(p.Quantity),
		}},
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(p.CustomerID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				MetaEmail:     p.Email,
				MetaProductID: p.ProductID,
				MetaPrice:     strconv.FormatFloat(price, 'f', -1, 64),
				MetaType:      p.Cycle,
			},
		},
		SuccessURL: stripe.String(g.redirectURL(p.CallbackURL, "success")),
		CancelURL:  stripe.String(g.redirectURL(p.CallbackURL, "cancel")),
	}

	s, err := session.New(params)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

func (g *stripeGateway) CreateFixedSession(ctx context.Context, p FixedSessionParams) (string, error) {
	price := g.cfg.BasePriceFixed * float64(p.Quantity)

	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(g.cfg.PriceIDFixed),
			Quantity: stripe.Int64(p.Quantity),
		}},
		Mode:     stripe.String(string(stripe.CheckoutSessionModePayment)),
		Customer: stripe.String(p.CustomerID),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				MetaEmail:       p.Email,
				MetaProductID:   p.ProductID,
				MetaPrice:       strconv.FormatFloat(price, 'f', -1, 64),
				MetaType:        "fixed",
				MetaIncreaseDay: strconv.Itoa(p.IncreaseDay),
			},
		},
		SuccessURL: stripe.String(g.redirectURL(p.CallbackURL, "success")),
		CancelURL:  stripe.String(g.redirectURL(p.CallbackURL, "cancel")),
	}

	s, err := session.New(params)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// redirectURL points the browser back at the pay-callback page, which then
// forwards to the original callback target.
func (g *stripeGateway) redirectURL(callbackURL, status string) string {
	target, err := url.Parse(g.cfg.AppBaseURL)
	if err != nil {
		target = &url.URL{Scheme: "https", Host: "localhost"}
	}
	target = target.JoinPath("/pay-callback")
	q := target.Query()
	q.Set("status", status)
	q.Set("callbackUrl", g.cfg.AppBaseURL+callbackURL)
	target.RawQuery = q.Encode()
	return target.String()
}
