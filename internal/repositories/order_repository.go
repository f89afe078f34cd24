package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"saasbase/internal/models/db_models"
)

// PaymentApplication is the unit of work for one accepted payment event: the
// ledger row plus the entitlement update it carries.
type PaymentApplication struct {
	Order             *db_models.Order
	UserEmail         string
	RoleID            string
	ProductType       db_models.ProductType
	EndSubscriptionAt int64
}

type OrderRepository interface {
	HasProcessed(ctx context.Context, orderID string) (bool, error)
	// ApplyPayment appends the ledger row and updates the user's entitlement
	// in one transaction. The insert uses the order_id unique constraint as
	// the concurrency control: when another delivery of the same order won
	// the race, nothing is mutated and applied is false.
	ApplyPayment(ctx context.Context, app PaymentApplication) (applied bool, err error)
	List(ctx context.Context, page, size int) ([]db_models.Order, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (o *orderRepository) HasProcessed(ctx context.Context, orderID string) (bool, error) {
	var order db_models.Order
	err := o.db.WithContext(ctx).First(&order, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (o *orderRepository) ApplyPayment(ctx context.Context, app PaymentApplication) (bool, error) {
	applied := false
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).Create(app.Order)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Redelivery lost the race; the first delivery already applied.
			return nil
		}
		applied = true

		return tx.Model(&db_models.User{}).
			Where("email = ?", app.UserEmail).
			Updates(map[string]interface{}{
				"role_id":             app.RoleID,
				"product_type":        app.ProductType,
				"end_subscription_at": app.EndSubscriptionAt,
			}).Error
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func (o *orderRepository) List(ctx context.Context, page, size int) ([]db_models.Order, int64, error) {
	var orders []db_models.Order
	var total int64
	if err := o.db.WithContext(ctx).Model(&db_models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := o.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
