package showtime

import (
	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// App is the ticketing plugin: concerts, bands, seat-bound tickets, Stripe
// checkout and the favorites/wishlist profile features.
type App struct{}

func New() *App {
	return &App{}
}

func (a *App) ID() string {
	return "showtime"
}

func (a *App) Models() []interface{} {
	return []interface{}{
		&Concert{},
		&Group{},
		&Ticket{},
	}
}

func (a *App) RegisterRoutes(router fiber.Router, auth fiber.Handler, db *gorm.DB, cfg *config.Config) {
	h := a.handler(db, cfg)

	// Browsing needs no account.
	router.Get("/concerts", h.ListConcerts)
	router.Get("/concerts/upcoming", h.UpcomingConcerts)
	router.Get("/concerts/:id", h.GetConcert)
	router.Get("/groups", h.ListGroups)
	router.Get("/groups/:id", h.GetGroup)

	// Stripe's success redirect carries no bearer token; the ids ride in the
	// URL built when the session was created.
	router.Get("/tickets/:userId/pay/:concertId/:amount", h.IssueTicket)

	router.Post("/tickets", auth, h.PurchaseTicket)
	router.Get("/tickets/me", auth, h.MyTickets)
	router.Get("/tickets/:id", auth, h.GetTicket)
	router.Delete("/tickets/:id", auth, h.RemoveTicket)

	router.Post("/payments/checkout", auth, h.Checkout)

	router.Get("/me/favorites/groups", auth, h.ListFavorites)
	router.Post("/me/favorites/groups", auth, h.AddFavorite)
	router.Delete("/me/favorites/groups/:groupId", auth, h.RemoveFavorite)

	router.Get("/me/wishlist", auth, h.ListWishlist)
	router.Post("/me/wishlist", auth, h.AddWishlist)
	router.Delete("/me/wishlist/:concertId", auth, h.RemoveWishlist)
}

// RegisterAdminRoutes mounts the catalog mutations and the global ticket list.
func (a *App) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	h := a.handler(db, cfg)

	router.Post("/concerts", h.CreateConcert)
	router.Patch("/concerts/:id", h.UpdateConcert)
	router.Delete("/concerts/:id", h.DeleteConcert)
	router.Post("/concerts/:id/groups/:groupId", h.AddConcertGroup)
	router.Delete("/concerts/:id/groups/:groupId", h.RemoveConcertGroup)

	router.Post("/groups", h.CreateGroup)
	router.Patch("/groups/:id", h.UpdateGroup)
	router.Delete("/groups/:id", h.DeleteGroup)

	router.Get("/tickets", h.ListTickets)
}

func (a *App) handler(db *gorm.DB, cfg *config.Config) *Handler {
	return NewHandler(
		NewConcertService(db),
		NewGroupService(db),
		NewTicketService(db, cfg),
		NewPaymentService(cfg),
		NewProfileService(db),
	)
}
