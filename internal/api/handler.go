// Package api holds the HTTP route layer. It receives raw message text
// and returns the external JSON contract; all parsing logic lives in the
// pipeline package.
package api

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/sms-transaction-parser/internal/metrics"
	"github.com/insightdelivered/sms-transaction-parser/internal/models"
	"github.com/insightdelivered/sms-transaction-parser/internal/pipeline"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Parser is the pipeline boundary the handlers depend on.
type Parser interface {
	Parse(ctx context.Context, sms string) (*models.ParsedTransaction, error)
}

// ParseRequest is the request body for /api/parse-sms.
type ParseRequest struct {
	SMS string `json:"sms"`
}

// ParseResponse is the JSON response from the /api/parse-sms endpoint.
type ParseResponse struct {
	Success bool                       `json:"success"`
	Error   string                     `json:"error,omitempty"`
	Data    *models.TransactionPayload `json:"data,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Pipeline Parser
	Logger   *slog.Logger
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/", h.HandleRoot)
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/parse-sms", h.HandleParse)
}

// HandleRoot serves a plain liveness banner.
func (h *Handler) HandleRoot(c *fiber.Ctx) error {
	return c.SendString("Server is running")
}

// HandleHealth reports service health and version.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"engine":  "fiber",
	})
}

// HandleParse runs one message through the parsing pipeline. A missing
// message is a client error; an unparseable one is a structured failure.
// Everything else the pipeline absorbs internally.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	var req ParseRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fiber.StatusBadRequest, "No SMS provided")
	}
	if strings.TrimSpace(req.SMS) == "" {
		return writeError(c, fiber.StatusBadRequest, "No SMS provided")
	}

	record, err := h.Pipeline.Parse(c.UserContext(), req.SMS)
	if err != nil {
		if errors.Is(err, pipeline.ErrUnparseable) {
			return writeError(c, fiber.StatusUnprocessableEntity, "Failed to parse SMS")
		}
		h.Logger.Error("pipeline error", "error", err)
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}

	payload := record.Payload()
	return c.JSON(ParseResponse{
		Success: true,
		Data:    &payload,
	})
}

// MetricsMiddleware records request counts and durations per route.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		m.RecordHTTPRequest(c.Path(), c.Method(), strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ParseResponse{
		Success: false,
		Error:   msg,
	})
}
