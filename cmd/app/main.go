package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"saasbase/cmd/fx/account_fx"
	"saasbase/cmd/fx/admin_fx"
	"saasbase/cmd/fx/billing_fx"
	"saasbase/cmd/fx/db_fx"
	"saasbase/cmd/fx/events_fx"
	"saasbase/cmd/fx/logger_fx"
	"saasbase/internal/api/controllers"
	"saasbase/internal/infra"
	"saasbase/internal/repositories"
	"saasbase/pkg/auth"
	"saasbase/pkg/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	app := fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		logger_fx.Module,
		db_fx.Module,
		events_fx.Module,
		account_fx.Module,
		billing_fx.Module,
		admin_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(SeedDatabase),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func SeedDatabase(roles repositories.RoleRepository, users repositories.UserRepository, logger *zap.SugaredLogger) error {
	return infra.Seed(context.Background(), roles, users, logger)
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, logger *zap.SugaredLogger) {
	srv := &http.Server{
		Addr:    ":" + os.Getenv("PORT"),
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Infow("starting HTTP server", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	accountController *controllers.AccountController,
	payController *controllers.PayController,
	productController *controllers.ProductController,
	webhookController *controllers.WebhookController,
	adminController *controllers.AdminController,
) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, accountController, payController, productController, webhookController, adminController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	payController *controllers.PayController,
	productController *controllers.ProductController,
	webhookController *controllers.WebhookController,
	adminController *controllers.AdminController,
) {
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/valid-code", accountController.RequestValidCode)
	authGroup.POST("/register", accountController.Register)
	authGroup.POST("/login", accountController.Login)
	authGroup.POST("/change-password", middleware.JWTAuthMiddleware(), accountController.ChangePassword)

	api.GET("/products", productController.ListActive)
	api.GET("/pay", middleware.JWTAuthMiddleware(), payController.CreateCheckoutIntent)

	callbacks := api.Group("/callbacks")
	callbacks.POST("/stripe/:confusion", webhookController.HandleStripe)
	callbacks.POST("/aifadian", webhookController.HandleAifadian)

	admin := api.Group("/admin", middleware.JWTAuthMiddleware(), middleware.RequireAtLeast(auth.RoleAdmin))
	admin.GET("/users", middleware.RequirePermission("ADMIN_USER_READ"), adminController.ListUsers)
	admin.POST("/users/forbidden", middleware.RequirePermission("ADMIN_USER_WRITE"), adminController.SetForbidden)
	admin.GET("/roles", middleware.RequirePermission("ADMIN_ROLE_READ"), adminController.ListRoles)
	admin.POST("/roles", middleware.RequirePermission("ADMIN_ROLE_WRITE"), adminController.UpsertRole)
	admin.DELETE("/roles/:id", middleware.RequirePermission("ADMIN_ROLE_WRITE"), adminController.DeleteRole)
	admin.GET("/products", middleware.RequirePermission("ADMIN_PRODUCT_READ"), productController.List)
	admin.POST("/products", middleware.RequirePermission("ADMIN_PRODUCT_WRITE"), productController.Upsert)
	admin.DELETE("/products/:id", middleware.RequirePermission("ADMIN_PRODUCT_WRITE"), productController.Delete)
	admin.GET("/billing", middleware.RequirePermission("ADMIN_BILLING_READ"), adminController.ListOrders)
	admin.GET("/billing/aifadian/ping", middleware.RequirePermission("ADMIN_BILLING_READ"), adminController.PingAifadian)
	admin.POST("/billing/aifadian/sync", middleware.RequirePermission("ADMIN_BILLING_WRITE"), adminController.SyncAifadian)
}
