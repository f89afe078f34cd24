package infra

import (
	"context"
	"os"

	"go.uber.org/zap"
	"saasbase/internal/models/db_models"
	"saasbase/internal/repositories"
	"saasbase/pkg/auth"
	"saasbase/pkg/utils"
)

// Seed creates the three sentinel roles and the default admin accounts.
// Idempotent: existing roles and admin accounts are left untouched.
func Seed(ctx context.Context, roles repositories.RoleRepository, users repositories.UserRepository, logger *zap.SugaredLogger) error {
	builtins := []db_models.UserRole{
		{ID: auth.RoleUser, Permissions: []string{"USER_*"}},
		{ID: auth.RoleAdmin, Permissions: []string{"*"}},
		{ID: auth.RoleSuperAdmin, Permissions: []string{"*"}},
	}
	for i := range builtins {
		if err := roles.EnsureExists(ctx, &builtins[i]); err != nil {
			return err
		}
	}

	admins := []struct {
		emailEnv    string
		passwordEnv string
		name        string
		roleID      string
	}{
		{"DEFAULT_ADMIN_EMAIL", "DEFAULT_ADMIN_PASSWORD", "admin", auth.RoleAdmin},
		{"DEFAULT_SUPER_ADMIN_EMAIL", "DEFAULT_SUPER_ADMIN_PASSWORD", "superadmin", auth.RoleSuperAdmin},
	}
	for _, admin := range admins {
		email := os.Getenv(admin.emailEnv)
		if email == "" {
			logger.Warnw("default admin not configured, skipping", "env", admin.emailEnv)
			continue
		}
		if err := seedAdmin(ctx, users, email, os.Getenv(admin.passwordEnv), admin.name, admin.roleID); err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, users repositories.UserRepository, email, password, name, roleID string) error {
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return users.Insert(ctx, &db_models.User{
		Name:              name,
		Email:             email,
		PasswordHash:      hashed,
		RoleID:            roleID,
		ProductType:       db_models.ProductProYearly,
		EndSubscriptionAt: db_models.EndSubscriptionPlaceholder,
	})
}
