package db_models

import (
	"gorm.io/datatypes"
)

type TimeCycle string

const (
	CycleNone      TimeCycle = "NONE"
	CycleWeekly    TimeCycle = "WEEKLY"
	CycleMonthly   TimeCycle = "MONTHLY"
	CycleYearly    TimeCycle = "YEARLY"
	CyclePermanent TimeCycle = "PERMANENT"
)

// PermanentIncreaseDays is the day-increment sentinel for PERMANENT products.
// The reconciler maps it to EndSubscriptionNever instead of doing arithmetic.
const PermanentIncreaseDays = 99999

// IncreaseDays maps a billing cycle to the number of days a one-off purchase
// extends the subscription by.
func (t TimeCycle) IncreaseDays() int {
	switch t {
	case CycleWeekly:
		return 7
	case CycleMonthly:
		return 30
	case CycleYearly:
		return 365
	case CyclePermanent:
		return PermanentIncreaseDays
	default:
		return 0
	}
}

type StripeInfo struct {
	PriceID  string `json:"id"`
	Quantity int64  `json:"quantity"`
}

type AifadianInfo struct {
	PlanID string `json:"planId"`
}

type Product struct {
	BaseModel
	Weight      int `gorm:"default:0"`
	ProductType ProductType
	TimeCycle   TimeCycle
	Discount    float64

	// Role granted on purchase. Must reference an existing UserRole.
	RoleID string `gorm:"index"`

	StripeInfo   datatypes.JSONType[StripeInfo]   `gorm:"type:jsonb"`
	AifadianInfo datatypes.JSONType[AifadianInfo] `gorm:"type:jsonb"`

	// Per-locale display metadata (name/price/description/ability lists),
	// rendered by the marketing site.
	Locales datatypes.JSON `gorm:"type:jsonb;default:'{}'"`

	IsActive bool `gorm:"default:true"`

	Role UserRole `gorm:"foreignKey:RoleID"`
}
