package rest

import (
	domainTimer "github.com/AzielCF/az-cube/domains/timer"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/AzielCF/az-cube/pkg/utils"
	timerDomain "github.com/AzielCF/az-cube/timer/domain"
	"github.com/gofiber/fiber/v2"
)

type Timer struct {
	Service domainTimer.ITimerUsecase
}

func InitRestTimer(app fiber.Router, service domainTimer.ITimerUsecase) Timer {
	rest := Timer{Service: service}

	group := app.Group("/timer")
	group.Get("/", rest.GetSnapshot)
	group.Post("/keydown", rest.KeyDown)
	group.Post("/keyup", rest.KeyUp)
	group.Post("/reset", rest.Reset)
	group.Post("/scramble", rest.NewScramble)
	group.Put("/scramble", rest.SetScramble)
	group.Post("/penalty/:kind", rest.TogglePenalty)
	group.Delete("/last", rest.DeleteLast)
	group.Get("/log", rest.GetLog)
	group.Delete("/log", rest.ClearLog)
	group.Get("/stats", rest.GetStats)
	group.Get("/export", rest.Export)
	group.Post("/import", rest.Import)

	return rest
}

func (handler *Timer) snapshot(c *fiber.Ctx, message string, snap timerDomain.Snapshot) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: message,
		Results: snap,
	})
}

func (handler *Timer) GetSnapshot(c *fiber.Ctx) error {
	snap, err := handler.Service.Snapshot(c.UserContext())
	utils.PanicIfNeeded(err)
	return handler.snapshot(c, "Timer state retrieved", snap)
}

func (handler *Timer) KeyDown(c *fiber.Ctx) error {
	snap, err := handler.Service.KeyDown(c.UserContext())
	utils.PanicIfNeeded(err)
	return handler.snapshot(c, "Key down handled", snap)
}

func (handler *Timer) KeyUp(c *fiber.Ctx) error {
	snap, err := handler.Service.KeyUp(c.UserContext())
	utils.PanicIfNeeded(err)
	return handler.snapshot(c, "Key up handled", snap)
}

func (handler *Timer) Reset(c *fiber.Ctx) error {
	utils.PanicIfNeeded(handler.Service.Reset(c.UserContext()))
	snap, err := handler.Service.Snapshot(c.UserContext())
	utils.PanicIfNeeded(err)
	return handler.snapshot(c, "Timer reset", snap)
}

// NewScramble only requests a scramble; it arrives as a scramble event.
func (handler *Timer) NewScramble(c *fiber.Ctx) error {
	utils.PanicIfNeeded(handler.Service.NewScramble(c.UserContext()))
	return c.Status(fiber.StatusAccepted).JSON(utils.ResponseData{
		Status:  202,
		Code:    "SUCCESS",
		Message: "Scramble requested",
	})
}

func (handler *Timer) SetScramble(c *fiber.Ctx) error {
	var body struct {
		Scramble string `json:"scramble"`
	}
	if err := c.BodyParser(&body); err != nil {
		panic(pkgError.ValidationError("invalid JSON: " + err.Error()))
	}
	utils.PanicIfNeeded(handler.Service.SetScramble(c.UserContext(), body.Scramble))

	snap, err := handler.Service.Snapshot(c.UserContext())
	utils.PanicIfNeeded(err)
	return handler.snapshot(c, "Scramble set", snap)
}

func (handler *Timer) TogglePenalty(c *fiber.Ctx) error {
	record, err := handler.Service.TogglePenalty(c.UserContext(), domainTimer.PenaltyKind(c.Params("kind")))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Penalty toggled",
		Results: record,
	})
}

func (handler *Timer) DeleteLast(c *fiber.Ctx) error {
	record, err := handler.Service.DeleteLast(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Last solve deleted",
		Results: record,
	})
}

func (handler *Timer) GetLog(c *fiber.Ctx) error {
	records, err := handler.Service.Recent(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recent solves retrieved",
		Results: records,
	})
}

func (handler *Timer) ClearLog(c *fiber.Ctx) error {
	utils.PanicIfNeeded(handler.Service.ClearRecent(c.UserContext()))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Recent solves cleared",
	})
}

func (handler *Timer) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Service.RecentStats(c.UserContext(), c.QueryInt("n", 5))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Statistics computed",
		Results: stats,
	})
}

func (handler *Timer) Export(c *fiber.Ctx) error {
	data, err := handler.Service.Export(c.UserContext())
	utils.PanicIfNeeded(err)

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="azcube-export.json"`)
	return c.JSON(data)
}

func (handler *Timer) Import(c *fiber.Ctx) error {
	var data domainTimer.Export
	if err := c.BodyParser(&data); err != nil {
		panic(pkgError.ValidationError("invalid JSON: " + err.Error()))
	}
	utils.PanicIfNeeded(handler.Service.Import(c.UserContext(), data))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Data imported",
	})
}
