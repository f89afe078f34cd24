package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"saasbase/internal/models/db_models"
)

type RoleRepository interface {
	FindByID(ctx context.Context, id string) (*db_models.UserRole, error)
	List(ctx context.Context) ([]db_models.UserRole, error)
	Save(ctx context.Context, role *db_models.UserRole) error
	Delete(ctx context.Context, id string) error
	// EnsureExists creates the role only when no row with its id exists yet.
	// Used by the bootstrap seed; safe to call repeatedly.
	EnsureExists(ctx context.Context, role *db_models.UserRole) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByID(ctx context.Context, id string) (*db_models.UserRole, error) {
	var role db_models.UserRole
	err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]db_models.UserRole, error) {
	var roles []db_models.UserRole
	err := r.db.WithContext(ctx).Order("id").Find(&roles).Error
	return roles, err
}

func (r *roleRepository) Save(ctx context.Context, role *db_models.UserRole) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&db_models.UserRole{}, "id = ?", id).Error
}

func (r *roleRepository) EnsureExists(ctx context.Context, role *db_models.UserRole) error {
	existing, err := r.FindByID(ctx, role.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(role).Error
}
