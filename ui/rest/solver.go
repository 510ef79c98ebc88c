package rest

import (
	domainSolver "github.com/AzielCF/az-cube/domains/solver"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Solver struct {
	Service domainSolver.ISolverUsecase
}

func InitRestSolver(app fiber.Router, service domainSolver.ISolverUsecase) Solver {
	rest := Solver{Service: service}
	app.Post("/solver", rest.Solve)

	return rest
}

func (handler *Solver) Solve(c *fiber.Ctx) error {
	var request domainSolver.SolveRequest
	if err := c.BodyParser(&request); err != nil {
		panic(pkgError.ValidationError("invalid JSON: " + err.Error()))
	}

	response, err := handler.Service.Solve(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cube solved",
		Results: response,
	})
}
