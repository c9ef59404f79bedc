package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/domain"
	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/service"
)

func Register(app *fiber.App, svcs *service.Services) {
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	g := app.Group("/api")
	g.Get("/system/status", func(c *fiber.Ctx) error {
		snap, err := svcs.Status.Snapshot()
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(snap)
	})
	g.Get("/system/health", func(c *fiber.Ctx) error {
		h, err := svcs.Status.Health()
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(h)
	})

	g.Post("/email/send", func(c *fiber.Ctx) error {
		var req domain.EmailRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(domain.EmailResponse{Message: "Invalid request body"})
		}
		resp, err := svcs.Email.Send(c.UserContext(), req)
		switch {
		case errors.Is(err, service.ErrInvalidAlertType):
			return c.Status(fiber.StatusBadRequest).JSON(resp)
		case err != nil:
			return c.Status(fiber.StatusBadGateway).JSON(resp)
		}
		return c.JSON(resp)
	})

	g.Get("/logs/:granularity", func(c *fiber.Ctx) error {
		gr, ok := granularity(c)
		if !ok {
			return unknownGranularity(c)
		}
		items, err := svcs.Logs.List(gr)
		if err != nil {
			return serverError(c, err)
		}
		return c.JSON(items)
	})
	g.Delete("/logs/:granularity", func(c *fiber.Ctx) error {
		gr, ok := granularity(c)
		if !ok {
			return unknownGranularity(c)
		}
		if err := svcs.Logs.Purge(c.UserContext(), gr); err != nil {
			return serverError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})
	g.Delete("/logs/:granularity/:id", func(c *fiber.Ctx) error {
		gr, ok := granularity(c)
		if !ok {
			return unknownGranularity(c)
		}
		err := svcs.Logs.Delete(gr, c.Params("id"))
		switch {
		case errors.Is(err, service.ErrLogNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": err.Error()})
		case err != nil:
			return serverError(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	})
}

func granularity(c *fiber.Ctx) (domain.Granularity, bool) {
	g := domain.Granularity(c.Params("granularity"))
	return g, g.Valid()
}

func unknownGranularity(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown log granularity"})
}

func serverError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
