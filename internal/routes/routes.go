package routes

import (
	"time"

	"github.com/fredseo/showhub-backend/internal/apps"
	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/fredseo/showhub-backend/internal/handlers"
	"github.com/fredseo/showhub-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	plugins []apps.Plugin,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Public auth routes, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/google", authHandler.GoogleLogin)
	auth.Get("/google/callback", authHandler.GoogleCallback)
	auth.Get("/confirm-email/:id", authHandler.ConfirmEmail)

	// Protected auth routes get the JWT middleware individually so the public
	// ones above stay reachable.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Patch("/auth/profile", middleware.JWTProtected(cfg), authHandler.UpdateProfile)
	api.Patch("/auth/password", middleware.JWTProtected(cfg), authHandler.UpdatePassword)
	api.Post("/auth/verification/:id", middleware.JWTProtected(cfg), authHandler.SendVerification)

	// Admin panel (JWT + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Patch("/users/:id/role", authHandler.UpdateRole)

	// Each plugin mounts under its own prefix and applies the JWT middleware
	// per route, keeping its public routes reachable.
	for _, p := range plugins {
		group := api.Group("/" + p.ID())
		p.RegisterRoutes(group, middleware.JWTProtected(cfg), db, cfg)

		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, db, cfg)
		}
	}
}
