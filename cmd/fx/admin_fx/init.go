package admin_fx

import (
	"go.uber.org/fx"
	"saasbase/internal/api/controllers"
	"saasbase/internal/repositories"
	"saasbase/internal/services"
)

var Module = fx.Provide(
	provideProductService,
	provideProductController,
	provideAdminService,
	provideAdminController,
)

func provideProductService(products repositories.ProductRepository, roles repositories.RoleRepository) services.ProductServiceInterface {
	return services.NewProductService(products, roles)
}

func provideProductController(productService services.ProductServiceInterface) *controllers.ProductController {
	return controllers.NewProductController(productService)
}

func provideAdminService(
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	orders repositories.OrderRepository,
) services.AdminServiceInterface {
	return services.NewAdminService(users, roles, orders)
}

func provideAdminController(adminService services.AdminServiceInterface, reconciler services.ReconcileService) *controllers.AdminController {
	return controllers.NewAdminController(adminService, reconciler)
}
