package response_models

type LoginResponse struct {
	Token             string `json:"token"`
	Role              string `json:"role"`
	EndSubscriptionAt int64  `json:"end_subscription_at"`
}

type UserSummary struct {
	ID                string  `json:"id"`
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	RoleID            string  `json:"role_id"`
	ProductType       string  `json:"product_type"`
	EndSubscriptionAt int64   `json:"end_subscription_at"`
	TotalMoney        float64 `json:"total_money"`
	MonthlyMoney      float64 `json:"monthly_money"`
	Forbidden         bool    `json:"forbidden"`
}
