package request_models

import "encoding/json"

type ProductUpsertRequest struct {
	ID          string          `json:"id"`
	Weight      int             `json:"weight"`
	ProductType string          `json:"product_type" binding:"required,oneof=FREE PRO_MONTHLY PRO_YEARLY PRO_FIXED"`
	TimeCycle   string          `json:"time_cycle" binding:"required,oneof=NONE WEEKLY MONTHLY YEARLY PERMANENT"`
	Discount    float64         `json:"discount"`
	RoleID      string          `json:"role_id" binding:"required"`
	StripeInfo  *StripeInfo     `json:"stripe_info"`
	Aifadian    *AifadianInfo   `json:"aifadian_info"`
	Locales     json.RawMessage `json:"locales"`
	IsActive    *bool           `json:"is_active"`
}

type StripeInfo struct {
	PriceID  string `json:"id" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,min=1"`
}

type AifadianInfo struct {
	PlanID string `json:"planId" binding:"required"`
}

type ForbiddenRequest struct {
	UserID    string `json:"user_id" binding:"required,uuid"`
	Forbidden bool   `json:"forbidden"`
}

type RoleUpsertRequest struct {
	ID          string   `json:"id" binding:"required"`
	Permissions []string `json:"permissions" binding:"required"`
}

type AifadianSyncRequest struct {
	Page int `json:"page" binding:"min=0"`
}
