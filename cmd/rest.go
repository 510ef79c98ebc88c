package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AzielCF/az-cube/ui/rest"
	"github.com/AzielCF/az-cube/ui/rest/middleware"
	"github.com/AzielCF/az-cube/ui/websocket"
	"github.com/AzielCF/az-cube/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the timer, scrambles and solve history over http",
	Long:  `Starts the REST API, the websocket feed and the background workers.`,
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		Network:                 "tcp",
		AppName:                 "az-cube",
		ServerHeader:            "Hidden",
	}

	// Configure proxy settings if trusted proxies are specified
	if len(cfg.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = cfg.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedHost
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())

	origins := strings.Join(cfg.App.CorsAllowedOrigins, ", ")
	if !strings.Contains(origins, cfg.App.BaseUrl) {
		origins += ", " + cfg.App.BaseUrl
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if cfg.App.Debug {
		app.Use(logger.New())
	}

	// Background services live until the signal handler cancels ctx
	ctx, cancel := context.WithCancel(context.Background())
	workerPool.Start(ctx)

	settingsUsecase := usecase.NewSettingsService(settings, metricsReg)
	go settingsUsecase.Watch(ctx)
	go func() {
		if err := settings.Sync(ctx); err != nil && ctx.Err() == nil {
			logrus.Errorf("[SETTINGS] sync stopped: %v", err)
		}
	}()

	timerUsecase := usecase.NewTimerService(usecase.TimerDeps{
		Config:    cfg.Timer,
		Remote:    cfg.Remote,
		Settings:  settings,
		Storage:   storage,
		History:   solveUsecase,
		Scrambles: scrambleUsecase,
		Pool:      workerPool,
		Metrics:   metricsReg,
	})
	timerUsecase.Start(ctx)

	healthUsecase.StartPeriodicChecks(ctx, healthPeriod)

	// a nil *valkey.Client must not reach the interface
	var pubsub websocket.PubSub
	if vkClient != nil {
		pubsub = vkClient
	}
	hub := websocket.NewHub(pubsub, serverID, metricsReg)
	go hub.RunHub(ctx)
	go hub.Forward(ctx, timerUsecase, settingsUsecase)

	// Unauthenticated probes
	rest.InitRestHealth(app, healthUsecase)
	rest.InitRestMetrics(app, metricsReg)

	app.Static(cfg.App.BasePath+"/statics", cfg.Paths.Statics)

	apiGroup := app.Group(cfg.App.BasePath + "/api")
	if len(cfg.App.BasicAuth) > 0 {
		account := make(map[string]string)
		for _, basicAuth := range cfg.App.BasicAuth {
			ba := strings.Split(basicAuth, ":")
			if len(ba) != 2 {
				logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
			}
			account[ba[0]] = ba[1]
		}
		apiGroup.Use(basicauth.New(basicauth.Config{
			Users: account,
			Next: func(c *fiber.Ctx) bool {
				// Allow CORS preflight without credentials.
				return c.Method() == fiber.MethodOptions
			},
		}))
	} else {
		logrus.Warn("[REST] APP_BASIC_AUTH is not set, the API is public")
	}

	// Graceful shutdown handler
	stopped := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer close(stopped)
		<-sigChan
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
		cancel()
		<-timerUsecase.Done()
		StopApp()
	}()

	rest.InitRestApp(apiGroup, cfg)
	rest.InitRestScramble(apiGroup, scrambleUsecase)
	rest.InitRestSolve(apiGroup, solveUsecase)
	rest.InitRestSolver(apiGroup, solverUsecase)
	rest.InitRestSettings(apiGroup, settingsUsecase)
	rest.InitRestTimer(apiGroup, timerUsecase)
	rest.InitRestWorkerPool(apiGroup, workerPool)

	websocket.RegisterRoutes(apiGroup, hub, timerUsecase)

	// 404 Handler for the API group
	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	if err := app.Listen(":" + cfg.App.Port); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
	<-stopped
}
