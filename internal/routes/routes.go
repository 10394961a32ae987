package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/kudos/internal/config"
	"github.com/example/kudos/internal/handlers"
	"github.com/example/kudos/internal/middleware"
	"github.com/example/kudos/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	giftingService := services.NewGiftingService(db)
	redemptionService := services.NewRedemptionService(db)
	distributionService := services.NewDistributionService(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	profileHandler := handlers.NewProfileHandler(db)
	giftingHandler := handlers.NewGiftingHandler(db, giftingService)
	catalogHandler := handlers.NewCatalogHandler(db)
	redemptionHandler := handlers.NewRedemptionHandler(db, redemptionService)
	distributionHandler := handlers.NewDistributionHandler(db, distributionService)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Authenticated routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Get("/activity", profileHandler.Activity)

	protected.Post("/gifts/single", giftingHandler.GiveSingle)
	protected.Post("/gifts/group", giftingHandler.GiveGroup)
	protected.Get("/gifts", giftingHandler.ListGifts)

	protected.Get("/rewards", catalogHandler.ListRewards)
	protected.Get("/rewards/:id", catalogHandler.GetReward)
	protected.Get("/categories", catalogHandler.ListCategories)

	protected.Post("/redemptions", redemptionHandler.Create)
	protected.Get("/redemptions", redemptionHandler.ListOwn)
	protected.Post("/redemptions/:id/confirm-delivery", redemptionHandler.ConfirmDelivery)

	// Admin routes
	admin := protected.Group("/admin", middleware.RequireAdmin(db))

	admin.Post("/rewards", catalogHandler.CreateReward)
	admin.Put("/rewards/:id", catalogHandler.UpdateReward)
	admin.Delete("/rewards/:id", catalogHandler.DeleteReward)

	admin.Post("/categories", catalogHandler.CreateCategory)
	admin.Put("/categories/:id", catalogHandler.UpdateCategory)

	admin.Get("/employees", adminHandler.ListEmployees)
	admin.Get("/employees/:id", adminHandler.GetEmployee)
	admin.Delete("/employees/:id", adminHandler.DeleteEmployee)

	admin.Get("/redemptions", redemptionHandler.ListAll)
	admin.Post("/redemptions/:id/approve", redemptionHandler.Approve)
	admin.Post("/redemptions/:id/reject", redemptionHandler.Reject)
	admin.Post("/redemptions/:id/ship", redemptionHandler.UpdateShipment)
	admin.Post("/redemptions/:id/return", redemptionHandler.MarkReturned)

	admin.Post("/distributions", distributionHandler.Distribute)
	admin.Get("/distributions", distributionHandler.List)
	admin.Get("/distributions/:id", distributionHandler.Get)

	admin.Get("/audit-logs", adminHandler.ListAuditLogs)
	admin.Get("/stats", adminHandler.DashboardStats)
}
