// Package api exposes template fetches and the import trigger over HTTP.
package api

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"flat-backend/internal/host"
)

// Dispatcher is the host surface the handlers call into.
type Dispatcher interface {
	FetchForm(ctx context.Context, name string) (string, error)
	FetchPage(ctx context.Context, name string) (string, error)
	Ready(ctx context.Context) bool
}

type Handler struct {
	dispatcher Dispatcher
}

func NewHandler(d Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

// RegisterRoutes mounts the public template routes and the admin import route.
func RegisterRoutes(app *fiber.App, h *Handler, importMW ...fiber.Handler) {
	app.Get("/health", h.Health)

	tpl := app.Group("/templates")
	tpl.Get("/forms/:name", h.GetForm)
	tpl.Get("/pages/:name", h.GetPage)

	api := app.Group("/api/_flat", importMW...)
	api.Post("/import", h.Import)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) GetForm(c *fiber.Ctx) error {
	name := c.Params("name")
	content, err := h.dispatcher.FetchForm(c.UserContext(), name)
	return h.writeTemplate(c, "form", name, content, err)
}

func (h *Handler) GetPage(c *fiber.Ctx) error {
	name := c.Params("name")
	content, err := h.dispatcher.FetchPage(c.UserContext(), name)
	return h.writeTemplate(c, "page", name, content, err)
}

func (h *Handler) writeTemplate(c *fiber.Ctx, kind, name, content string, err error) error {
	if host.IsNotFound(err) {
		return NotFoundError(kind, name)
	}
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(content)
}

// Import fires the ready event on demand.
func (h *Handler) Import(c *fiber.Ctx) error {
	if !h.dispatcher.Ready(c.UserContext()) {
		return ImportFailedError()
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "ok"}})
}
