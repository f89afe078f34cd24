package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"saasbase/internal/models/db_models"
)

type UserRepository interface {
	Insert(ctx context.Context, user *db_models.User) error
	FindByID(ctx context.Context, id string) (*db_models.User, error)
	FindByEmail(ctx context.Context, email string) (*db_models.User, error)
	List(ctx context.Context, page, size int) ([]db_models.User, int64, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error
	SetForbidden(ctx context.Context, id string, forbidden bool) error
	// AddCharge accumulates a successful payment into the user's lifetime and
	// monthly paid totals.
	AddCharge(ctx context.Context, id uuid.UUID, amount float64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (u *userRepository) Insert(ctx context.Context, user *db_models.User) error {
	return u.db.WithContext(ctx).Create(user).Error
}

func (u *userRepository) FindByID(ctx context.Context, id string) (*db_models.User, error) {
	// A malformed id can never match the uuid column; treat it as a miss
	// instead of surfacing a cast error from postgres.
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var user db_models.User
	err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (u *userRepository) FindByEmail(ctx context.Context, email string) (*db_models.User, error) {
	var user db_models.User
	err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (u *userRepository) List(ctx context.Context, page, size int) ([]db_models.User, int64, error) {
	var users []db_models.User
	var total int64
	if err := u.db.WithContext(ctx).Model(&db_models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := u.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (u *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (u *userRepository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	return u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Update("stripe_customer_id", customerID).Error
}

func (u *userRepository) SetForbidden(ctx context.Context, id string, forbidden bool) error {
	return u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Update("forbidden", forbidden).Error
}

func (u *userRepository) AddCharge(ctx context.Context, id uuid.UUID, amount float64) error {
	return u.db.WithContext(ctx).
		Model(&db_models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_money":   gorm.Expr("total_money + ?", amount),
			"monthly_money": gorm.Expr("monthly_money + ?", amount),
		}).Error
}
