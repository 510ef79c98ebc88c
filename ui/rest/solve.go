package rest

import (
	domainSolve "github.com/AzielCF/az-cube/domains/solve"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Solve struct {
	Service domainSolve.ISolveUsecase
}

func InitRestSolve(app fiber.Router, service domainSolve.ISolveUsecase) Solve {
	rest := Solve{Service: service}
	app.Post("/solve", rest.Submit)
	app.Get("/solves", rest.List)
	app.Get("/solves/stats", rest.Stats)
	app.Delete("/delete_solve/:index", rest.DeleteAt)
	app.Delete("/delete_selected", rest.DeleteSelected)
	app.Delete("/delete_all", rest.DeleteAll)

	return rest
}

func (handler *Solve) Submit(c *fiber.Ctx) error {
	var request domainSolve.SubmitRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid JSON: " + err.Error()))
	}

	record, err := handler.Service.Submit(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Solve saved",
		Results: record,
	})
}

func (handler *Solve) List(c *fiber.Ctx) error {
	records, err := handler.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Solves retrieved",
		Results: records,
	})
}

func (handler *Solve) Stats(c *fiber.Ctx) error {
	stats, err := handler.Service.Stats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Statistics computed",
		Results: stats,
	})
}

func (handler *Solve) DeleteAt(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		panic(pkgError.ValidationError("index must be a number"))
	}

	utils.PanicIfNeeded(handler.Service.DeleteAt(c.UserContext(), index))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Solve deleted",
	})
}

func (handler *Solve) DeleteSelected(c *fiber.Ctx) error {
	var request domainSolve.DeleteManyRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid JSON: " + err.Error()))
	}

	deleted, err := handler.Service.DeleteMany(c.UserContext(), request.Indices)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Solves deleted",
		Results: fiber.Map{"deleted": deleted},
	})
}

func (handler *Solve) DeleteAll(c *fiber.Ctx) error {
	deleted, err := handler.Service.DeleteAll(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "All solves deleted",
		Results: fiber.Map{"deleted": deleted},
	})
}
