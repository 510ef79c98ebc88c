package middleware

import (
	"errors"
	"fmt"

	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Recovery turns panics into the response envelope. Typed errors keep their status
// and code; anything else is a 500.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			res := utils.ResponseData{
				Status:  fiber.StatusInternalServerError,
				Code:    "INTERNAL_SERVER_ERROR",
				Message: fmt.Sprintf("%v", recovered),
			}

			var generic pkgError.GenericError
			if err, ok := recovered.(error); ok && errors.As(err, &generic) {
				res.Status = generic.StatusCode()
				res.Code = generic.ErrCode()
				res.Message = generic.Error()
			} else {
				logrus.Errorf("[REST] panic recovered in %s %s: %v", ctx.Method(), ctx.Path(), recovered)
			}

			_ = ctx.Status(res.Status).JSON(res)
		}()

		return ctx.Next()
	}
}
