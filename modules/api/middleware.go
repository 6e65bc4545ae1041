package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	nanoid "github.com/jaevor/go-nanoid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDLocal  = "requestid"
	requestIDLength = 16
)

// useMiddleware installs the cross-cutting middleware shared by every route.
func (m *APIModule) useMiddleware(app *fiber.App) error {
	generate, err := nanoid.Standard(requestIDLength)
	if err != nil {
		return fmt.Errorf("failed to create request id generator: %w", err)
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:     requestIDHeader,
		Generator:  generate,
		ContextKey: requestIDLocal,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:" + requestIDLocal + "} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: m.cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + requestIDHeader,
	}))
	return nil
}

// requestID returns the id assigned by the requestid middleware.
func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDLocal).(string)
	return id
}
