package handlers

import (
	"time"

	"github.com/fredseo/showhub-backend/internal/database"
	"github.com/fredseo/showhub-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	appCount int
}

func NewHealthHandler(appCount int) *HealthHandler {
	return &HealthHandler{appCount: appCount}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Apps:      h.appCount,
	})
}
