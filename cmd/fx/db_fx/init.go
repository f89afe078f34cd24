package db_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"saasbase/internal/infra"
	"saasbase/internal/repositories"
)

var Module = fx.Provide(
	provideDB,
	provideUserRepo,
	provideRoleRepo,
	provideProductRepo,
	provideOrderRepo,
)

func provideDB() *gorm.DB {
	return infra.InitPostgresql()
}

func provideUserRepo(db *gorm.DB) repositories.UserRepository {
	return repositories.NewUserRepository(db)
}

func provideRoleRepo(db *gorm.DB) repositories.RoleRepository {
	return repositories.NewRoleRepository(db)
}

func provideProductRepo(db *gorm.DB) repositories.ProductRepository {
	return repositories.NewProductRepository(db)
}

func provideOrderRepo(db *gorm.DB) repositories.OrderRepository {
	return repositories.NewOrderRepository(db)
}
