package db_models

type OrderProvider string

const (
	ProviderStripe   OrderProvider = "stripe"
	ProviderAifadian OrderProvider = "aifadian"
)

// Order is the append-only ledger of processed payment notifications.
// The provider-assigned OrderID is the idempotence key; rows are never
// updated or deleted.
type Order struct {
	BaseModel
	OrderID   string        `gorm:"uniqueIndex"`
	Email     string        `gorm:"index"`
	ProductID string        `gorm:"index"`
	Price     float64
	Type      OrderProvider `gorm:"index"`
	Simulate  bool          `gorm:"default:false"`
}
