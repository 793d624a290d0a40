package hub

import (
	"context"
	"errors"
	"strconv"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/fredseo/showhub-backend/internal/dto"
	"github.com/fredseo/showhub-backend/internal/principal"
	"github.com/fredseo/showhub-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Handler bundles the hub endpoints: catalog, activations, widget instances,
// the connect flow and the four data proxies.
type Handler struct {
	cfg         *config.Config
	catalog     *CatalogService
	activations *ActivationService
	instances   *InstanceService
	oauth       *services.GoogleOAuth
	weather     *WeatherClient
	gmail       *GmailClient
	calendar    *CalendarClient
	drive       *DriveClient
}

func NewHandler(cfg *config.Config, catalog *CatalogService, activations *ActivationService,
	instances *InstanceService, oauth *services.GoogleOAuth,
	weather *WeatherClient, gmail *GmailClient, calendar *CalendarClient, drive *DriveClient) *Handler {
	return &Handler{
		cfg:         cfg,
		catalog:     catalog,
		activations: activations,
		instances:   instances,
		oauth:       oauth,
		weather:     weather,
		gmail:       gmail,
		calendar:    calendar,
		drive:       drive,
	}
}

// --- catalog ---

func (h *Handler) ListServices(c *fiber.Ctx) error {
	services, err := h.catalog.ListServices()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(services)
}

func (h *Handler) ListPublicServices(c *fiber.Ctx) error {
	services, err := h.catalog.ListPublicServices()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(services)
}

// GetService accepts either a service id or its unique name.
func (h *Handler) GetService(c *fiber.Ctx) error {
	param := c.Params("id")
	if id, err := uuid.Parse(param); err == nil {
		service, err := h.catalog.GetService(id)
		if err != nil {
			return notFound(c, "Service not found")
		}
		return c.JSON(service)
	}
	service, err := h.catalog.GetServiceByName(param)
	if err != nil {
		return notFound(c, "Service not found")
	}
	return c.JSON(service)
}

func (h *Handler) ListServiceWidgets(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid service id")
	}
	if _, err := h.catalog.GetService(id); err != nil {
		return notFound(c, "Service not found")
	}
	widgets, err := h.catalog.ListServiceWidgets(id)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(widgets)
}

func (h *Handler) ListWidgets(c *fiber.Ctx) error {
	widgets, err := h.catalog.ListWidgets()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(widgets)
}

func (h *Handler) GetWidget(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid widget id")
	}
	widget, err := h.catalog.GetWidget(id)
	if err != nil {
		return notFound(c, "Widget not found")
	}
	return c.JSON(widget)
}

// --- activations ---

func (h *Handler) ListMyServices(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	activations, err := h.activations.ListForUser(userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(activations)
}

func (h *Handler) ActivateService(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	serviceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid service id")
	}

	activation, err := h.activations.Activate(userID, serviceID)
	if err != nil {
		switch {
		case errors.Is(err, ErrServiceNotFound):
			return notFound(c, "Service not found")
		case errors.Is(err, ErrAlreadyActivated):
			return conflict(c, "Service already activated")
		default:
			return internalError(c)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(activation)
}

func (h *Handler) DeactivateService(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	serviceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid service id")
	}

	if err := h.activations.Deactivate(userID, serviceID); err != nil {
		if errors.Is(err, ErrNotActivated) {
			return notFound(c, "Service not activated")
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "Service deactivated"})
}

// --- connect flow ---

// Connect starts the per-service consent flow. The signed state carries the
// caller's id so the public callback can attribute the tokens.
func (h *Handler) Connect(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	serviceName := c.Params("service")

	if _, err := h.catalog.GetServiceByName(serviceName); err != nil {
		return notFound(c, "Service not found")
	}

	state, err := h.oauth.SignState(services.StateConnect, userID, serviceName)
	if err != nil {
		return internalError(c)
	}
	authURL, err := h.oauth.ConnectURL(serviceName, state)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{"url": authURL})
}

// ConnectCallback is hit by Google's redirect, so it is mounted publicly and
// trusts only the signed state.
func (h *Handler) ConnectCallback(c *fiber.Ctx) error {
	serviceName := c.Params("service")

	userID, stateService, err := h.oauth.VerifyState(c.Query("state"), services.StateConnect)
	if err != nil || stateService != serviceName || userID == uuid.Nil {
		return unauthorized(c, "Invalid OAuth state")
	}

	code := c.Query("code")
	if code == "" {
		return badRequest(c, "Missing authorization code")
	}

	token, err := h.oauth.ExchangeConnect(c.Context(), serviceName, code)
	if err != nil {
		return unauthorized(c, "Google connection failed")
	}

	if _, err := h.activations.SaveTokens(userID, serviceName, token.AccessToken, token.RefreshToken, token.Expiry); err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			return notFound(c, "Service not found")
		}
		return internalError(c)
	}

	return c.Redirect(h.cfg.FrontendURL+"/services?connected="+serviceName, fiber.StatusFound)
}

// --- widget instances ---

type createInstanceRequest struct {
	WidgetID    uuid.UUID      `json:"widget_id"`
	Config      datatypes.JSON `json:"config"`
	RefreshRate int            `json:"refresh_rate"`
}

type updateInstanceRequest struct {
	Config      datatypes.JSON `json:"config"`
	RefreshRate *int           `json:"refresh_rate"`
	IsActive    *bool          `json:"is_active"`
}

func (h *Handler) ListInstances(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	instances, err := h.instances.ListForUser(userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(instances)
}

func (h *Handler) CreateInstance(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req createInstanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.WidgetID == uuid.Nil {
		return badRequest(c, "widget_id is required")
	}

	instance, err := h.instances.Create(userID, req.WidgetID, req.Config, req.RefreshRate)
	if err != nil {
		switch {
		case errors.Is(err, ErrWidgetNotFound):
			return notFound(c, "Widget not found")
		case errors.Is(err, ErrServiceNotConnected):
			return badRequest(c, err.Error())
		default:
			return internalError(c)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(instance)
}

func (h *Handler) GetInstance(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	instanceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid instance id")
	}

	instance, err := h.instances.Get(userID, instanceID)
	if err != nil {
		return instanceError(c, err)
	}
	return c.JSON(instance)
}

func (h *Handler) UpdateInstance(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	instanceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid instance id")
	}

	var req updateInstanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	instance, err := h.instances.Update(userID, instanceID, InstanceUpdate{
		Config:      req.Config,
		RefreshRate: req.RefreshRate,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return instanceError(c, err)
	}
	return c.JSON(instance)
}

func (h *Handler) DeleteInstance(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	instanceID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid instance id")
	}

	if err := h.instances.Delete(userID, instanceID); err != nil {
		return instanceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Widget instance deleted"})
}

// --- weather proxy ---

func (h *Handler) CurrentWeather(c *fiber.Ctx) error {
	city := c.Query("city")
	if city == "" {
		return badRequest(c, "city is required")
	}

	data, err := h.weather.CurrentWeather(c.Context(), city, c.Query("units"))
	if err != nil {
		return proxyError(c, err)
	}
	return c.JSON(data)
}

func (h *Handler) WeatherForecast(c *fiber.Ctx) error {
	city := c.Query("city")
	if city == "" {
		return badRequest(c, "city is required")
	}
	days, _ := strconv.Atoi(c.Query("days"))

	forecast, err := h.weather.Forecast(c.Context(), city, days, c.Query("units"))
	if err != nil {
		return proxyError(c, err)
	}
	return c.JSON(forecast)
}

// --- gmail proxy ---

func (h *Handler) UnreadEmails(c *fiber.Ctx) error {
	return h.emails(c, h.gmail.UnreadEmails)
}

func (h *Handler) ImportantEmails(c *fiber.Ctx) error {
	return h.emails(c, h.gmail.ImportantEmails)
}

func (h *Handler) RecentEmails(c *fiber.Ctx) error {
	return h.emails(c, h.gmail.RecentEmails)
}

func (h *Handler) GmailStatus(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	status, err := h.gmail.Status(userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(status)
}

func (h *Handler) emails(c *fiber.Ctx, list func(ctx context.Context, userID uuid.UUID, maxResults int) ([]EmailMessage, error)) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	maxResults, _ := strconv.Atoi(c.Query("max_results"))

	messages, err := list(c.Context(), userID, maxResults)
	if err != nil {
		return proxyError(c, err)
	}
	return c.JSON(messages)
}

// --- calendar proxy ---

func (h *Handler) UpcomingEvents(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	maxResults, _ := strconv.Atoi(c.Query("max_results"))

	events, err := h.calendar.UpcomingEvents(c.Context(), userID, maxResults)
	if err != nil {
		return proxyError(c, err)
	}
	return c.JSON(events)
}

func (h *Handler) TodayEvents(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	events, err := h.calendar.TodayEvents(c.Context(), userID)
	if err != nil {
		return proxyError(c, err)
	}
	return c.JSON(events)
}

func (h *Handler) Birthdays(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	days, _ := strconv.Atoi(c.Query("days"))

	events, err := h.calendar.Birthdays(c.Context(), userID, days)
	if err != nil {
		return proxyError(c, err)
	}
	return c.JSON(events)
}

// --- drive proxy ---

func (h *Handler) RecentFiles(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	files, err := h.drive.RecentFiles(c.Context(), userID, pageSize)
	if err != nil {
		return proxyError(c, err)
	}
	return c.JSON(files)
}

func (h *Handler) FilesByType(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	mimeType := c.Query("mime_type")
	if mimeType == "" {
		return badRequest(c, "mime_type is required")
	}

	files, err := h.drive.FilesByType(c.Context(), userID, mimeType)
	if err != nil {
		return proxyError(c, err)
	}
	return c.JSON(files)
}

// --- error mapping ---

func instanceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInstanceNotFound):
		return notFound(c, "Widget instance not found")
	case errors.Is(err, ErrNotInstanceOwner):
		return forbidden(c, "Widget instance belongs to another user")
	default:
		return internalError(c)
	}
}

func proxyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotConnected):
		return notFound(c, err.Error())
	case errors.Is(err, ErrReauthRequired):
		return unauthorized(c, err.Error())
	case errors.Is(err, ErrUpstream):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	default:
		return internalError(c)
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func conflict(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
