package apps

import (
	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin defines the interface every hosted app must implement.
type Plugin interface {
	// ID returns the unique app identifier, used as the route prefix.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts app routes on a group prefixed with /api/<id>.
	// auth is the JWT middleware; plugins attach it to individual routes so
	// their public routes stay reachable.
	RegisterRoutes(router fiber.Router, auth fiber.Handler, db *gorm.DB, cfg *config.Config)
}

// AdminPlugin extends Plugin with admin-only route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts routes on a group that has both JWT and
	// admin middleware applied.
	RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// Seeder is implemented by plugins that need reference data after migration.
type Seeder interface {
	Seed(db *gorm.DB) error
}
