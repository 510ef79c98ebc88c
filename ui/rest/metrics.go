package rest

import (
	"github.com/AzielCF/az-cube/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitRestMetrics(app fiber.Router, registry *metrics.Registry) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry.Reg, promhttp.HandlerOpts{})))
}
