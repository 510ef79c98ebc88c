package rest

import (
	"github.com/AzielCF/az-cube/pkg/worker"
	"github.com/gofiber/fiber/v2"
)

// InitRestWorkerPool exposes the background pool statistics.
func InitRestWorkerPool(app fiber.Router, pool *worker.Pool) {
	app.Get("/workers/stats", func(c *fiber.Ctx) error {
		if pool == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Worker pool not initialized",
			})
		}
		return c.JSON(pool.GetStats())
	})
}
