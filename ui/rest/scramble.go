package rest

import (
	domainScramble "github.com/AzielCF/az-cube/domains/scramble"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Scramble struct {
	Service domainScramble.IScrambleUsecase
}

func InitRestScramble(app fiber.Router, service domainScramble.IScrambleUsecase) Scramble {
	rest := Scramble{Service: service}
	app.Get("/scramble", rest.Generate)

	return rest
}

func (handler *Scramble) Generate(c *fiber.Ctx) error {
	var request domainScramble.GenerateRequest
	if err := c.QueryParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid query: " + err.Error()))
	}

	response, err := handler.Service.Generate(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Scramble generated",
		Results: response,
	})
}
