package db_models

type ProductType string

const (
	ProductFree       ProductType = "FREE"
	ProductProMonthly ProductType = "PRO_MONTHLY"
	ProductProYearly  ProductType = "PRO_YEARLY"
	ProductProFixed   ProductType = "PRO_FIXED"
)

// EndSubscriptionNever marks a permanent entitlement. Checked by equality,
// never produced by expiry arithmetic.
const EndSubscriptionNever int64 = 253402300799

// EndSubscriptionPlaceholder is the expiry stamped on fresh accounts and the
// seeded admins (2099-02-01 UTC).
const EndSubscriptionPlaceholder int64 = 4073587200

type User struct {
	BaseModel
	Name  string
	Email string `gorm:"uniqueIndex"`
	// Empty for OAuth-only accounts.
	PasswordHash string

	RoleID      string      `gorm:"index"`
	ProductType ProductType `gorm:"default:FREE"`

	// Unix seconds. EndSubscriptionNever means the entitlement does not expire.
	EndSubscriptionAt int64

	TotalMoney   float64
	MonthlyMoney float64

	// Hard block, independent of role.
	Forbidden bool `gorm:"default:false"`

	// Lazily created on first Stripe purchase.
	StripeCustomerID string `gorm:"index"`

	Role UserRole `gorm:"foreignKey:RoleID"`
}

func (u *User) SubscriptionActive(now int64) bool {
	return u.EndSubscriptionAt == EndSubscriptionNever || u.EndSubscriptionAt > now
}
