package response_models

import "encoding/json"

// CheckoutIntentResponse is the redirect target of a checkout intent. Stripe
// yields a session id consumed by Stripe.js; Aifadian yields a plain URL.
type CheckoutIntentResponse struct {
	SessionID string `json:"sessionId,omitempty"`
	URL       string `json:"url,omitempty"`
	Type      string `json:"type"`
}

type ProductResponse struct {
	ID          string          `json:"id"`
	Weight      int             `json:"weight"`
	ProductType string          `json:"product_type"`
	TimeCycle   string          `json:"time_cycle"`
	Discount    float64         `json:"discount"`
	RoleID      string          `json:"role_id"`
	Locales     json.RawMessage `json:"locales,omitempty"`
	IsActive    bool            `json:"is_active"`
}

type OrderResponse struct {
	OrderID   string  `json:"order_id"`
	Email     string  `json:"email"`
	ProductID string  `json:"product_id"`
	Price     float64 `json:"price"`
	Type      string  `json:"type"`
	Simulate  bool    `json:"simulate"`
	CreatedAt int64   `json:"created_at"`
}
