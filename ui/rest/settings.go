package rest

import (
	domainSettings "github.com/AzielCF/az-cube/domains/settings"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Settings struct {
	Service domainSettings.ISettingsUsecase
}

func InitRestSettings(app fiber.Router, service domainSettings.ISettingsUsecase) Settings {
	rest := Settings{Service: service}
	app.Get("/settings", rest.GetSettings)
	app.Put("/settings", rest.UpdateSettings)
	app.Post("/settings/reset", rest.ResetSettings)
	app.Get("/settings/effective", rest.GetEffective)

	return rest
}

func (handler *Settings) GetSettings(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings retrieved",
		Results: handler.Service.All(c.UserContext()),
	})
}

// UpdateSettings takes a flat object of the keys to change.
func (handler *Settings) UpdateSettings(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		panic(pkgError.ValidationError("invalid JSON: " + err.Error()))
	}

	values, err := handler.Service.Update(c.UserContext(), domainSettings.UpdateRequest{Values: body})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings updated",
		Results: values,
	})
}

func (handler *Settings) ResetSettings(c *fiber.Ctx) error {
	values, err := handler.Service.Reset(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings reset to defaults",
		Results: values,
	})
}

func (handler *Settings) GetEffective(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Effective settings retrieved",
		Results: handler.Service.Effective(c.UserContext()),
	})
}
