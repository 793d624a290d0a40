package hub

import (
	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/fredseo/showhub-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// App is the integration-hub plugin: a service directory, per-user
// connections and the widget dashboard they feed.
type App struct{}

func New() *App {
	return &App{}
}

func (a *App) ID() string {
	return "hub"
}

func (a *App) Models() []interface{} {
	return []interface{}{
		&Service{},
		&Widget{},
		&UserService{},
		&WidgetInstance{},
	}
}

func (a *App) RegisterRoutes(router fiber.Router, auth fiber.Handler, db *gorm.DB, cfg *config.Config) {
	tokens := NewTokenProvider(db, cfg)
	oauth := services.NewGoogleOAuth(cfg)
	h := NewHandler(
		cfg,
		NewCatalogService(db),
		NewActivationService(db),
		NewInstanceService(db),
		oauth,
		NewWeatherClient(cfg),
		NewGmailClient(db, tokens, cfg),
		NewCalendarClient(tokens, cfg),
		NewDriveClient(tokens, cfg),
	)

	// Catalog browsing needs no account.
	router.Get("/services", h.ListServices)
	router.Get("/services/public", h.ListPublicServices)
	router.Get("/services/:id", h.GetService)
	router.Get("/services/:id/widgets", h.ListServiceWidgets)
	router.Get("/widgets", h.ListWidgets)
	router.Get("/widgets/:id", h.GetWidget)

	// Google redirects land here without a bearer token; the signed state is
	// the only credential.
	router.Get("/connect/:service/callback", h.ConnectCallback)

	router.Get("/me/services", auth, h.ListMyServices)
	router.Post("/services/:id/activate", auth, h.ActivateService)
	router.Delete("/services/:id/activate", auth, h.DeactivateService)

	router.Get("/connect/:service", auth, h.Connect)

	router.Get("/widget-instances", auth, h.ListInstances)
	router.Post("/widget-instances", auth, h.CreateInstance)
	router.Get("/widget-instances/:id", auth, h.GetInstance)
	router.Patch("/widget-instances/:id", auth, h.UpdateInstance)
	router.Delete("/widget-instances/:id", auth, h.DeleteInstance)

	router.Get("/weather/current", auth, h.CurrentWeather)
	router.Get("/weather/forecast", auth, h.WeatherForecast)

	router.Get("/gmail/unread", auth, h.UnreadEmails)
	router.Get("/gmail/important", auth, h.ImportantEmails)
	router.Get("/gmail/recent", auth, h.RecentEmails)
	router.Get("/gmail/status", auth, h.GmailStatus)

	router.Get("/calendar/upcoming", auth, h.UpcomingEvents)
	router.Get("/calendar/today", auth, h.TodayEvents)
	router.Get("/calendar/birthdays", auth, h.Birthdays)

	router.Get("/drive/recent", auth, h.RecentFiles)
	router.Get("/drive/by-type", auth, h.FilesByType)
}
