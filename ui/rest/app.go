package rest

import (
	"github.com/AzielCF/az-cube/core/config"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type App struct {
	Config *config.Config
}

func InitRestApp(app fiber.Router, cfg *config.Config) App {
	rest := App{Config: cfg}
	app.Get("/app/version", rest.GetVersion)
	app.Get("/app/config", rest.GetConfig)

	return rest
}

func (handler *App) GetVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version":   handler.Config.App.Version,
		"server_id": handler.Config.App.ServerID,
	})
}

func (handler *App) GetConfig(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Configuration retrieved",
		Results: handler.Config.Summary(),
	})
}
