package cmd

import (
	"context"
	"os"
	"time"

	"github.com/AzielCF/az-cube/core/config"
	"github.com/AzielCF/az-cube/core/database"
	settingsApp "github.com/AzielCF/az-cube/core/settings/application"
	settingsDomain "github.com/AzielCF/az-cube/core/settings/domain"
	settingsInfra "github.com/AzielCF/az-cube/core/settings/infrastructure"
	storageDomain "github.com/AzielCF/az-cube/core/storage/domain"
	storageInfra "github.com/AzielCF/az-cube/core/storage/infrastructure"
	cubeApp "github.com/AzielCF/az-cube/cube/application"
	domainHealth "github.com/AzielCF/az-cube/domains/health"
	domainScramble "github.com/AzielCF/az-cube/domains/scramble"
	domainSolve "github.com/AzielCF/az-cube/domains/solve"
	domainSolver "github.com/AzielCF/az-cube/domains/solver"
	"github.com/AzielCF/az-cube/infrastructure/valkey"
	"github.com/AzielCF/az-cube/pkg/metrics"
	"github.com/AzielCF/az-cube/pkg/utils"
	"github.com/AzielCF/az-cube/pkg/worker"
	"github.com/AzielCF/az-cube/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	cfg *config.Config

	// Infrastructure
	db           *gorm.DB
	vkClient     *valkey.Client
	storage      storageDomain.IStorage
	settings     *settingsApp.Store
	metricsReg   *metrics.Registry
	workerPool   *worker.Pool
	serverID     string
	healthPeriod time.Duration

	// Usecase
	scrambleUsecase domainScramble.IScrambleUsecase
	solveUsecase    domainSolve.ISolveUsecase
	solverUsecase   domainSolver.ISolverUsecase
	healthUsecase   domainHealth.IHealthUsecase
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "azcube",
	Short: "Speedcubing timer, scrambles and solve history",
	Long: `az-cube runs a speedcubing companion: a hold-to-start solve timer with WCA
inspection, scramble generation, solve statistics and settings shared between instances.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

// initEnvConfig picks up the knobs that only exist as environment variables.
func initEnvConfig() {
	healthPeriod = 5 * time.Minute
	if d := viper.GetDuration("health_check_interval"); d > 0 {
		healthPeriod = d
	}
	if cfg.App.Debug {
		logrus.Debugf("[CONFIG] %v", cfg.Summary())
	}
}

func initFlags() {
	// Application flags
	rootCmd.PersistentFlags().StringVarP(
		&cfg.App.Port,
		"port", "p",
		cfg.App.Port,
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&cfg.App.Debug,
		"debug", "d",
		cfg.App.Debug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&cfg.App.BasicAuth,
		"basic-auth", "b",
		cfg.App.BasicAuth,
		"basic auth credential | -b=yourUsername:yourPassword",
	)
	rootCmd.PersistentFlags().StringVarP(
		&cfg.App.BasePath,
		"base-path", "",
		cfg.App.BasePath,
		`base path for subpath deployment --base-path <string> | example: --base-path="/cube"`,
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&cfg.App.TrustedProxies,
		"trusted-proxies", "",
		cfg.App.TrustedProxies,
		`trusted proxy IP ranges for reverse proxy deployments | example: --trusted-proxies="10.0.0.0/8,172.16.0.0/12"`,
	)

	// Database flags
	rootCmd.PersistentFlags().StringVarP(
		&cfg.Database.Driver,
		"db-driver", "",
		cfg.Database.Driver,
		`database driver, sqlite or postgres | example: --db-driver=postgres`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&cfg.Database.Name,
		"db-name", "",
		cfg.Database.Name,
		`sqlite file path or postgres database name | example: --db-name="storages/azcube.db"`,
	)
	rootCmd.PersistentFlags().BoolVarP(
		&cfg.Database.ValkeyEnabled,
		"valkey", "",
		cfg.Database.ValkeyEnabled,
		`share settings and timer events through valkey --valkey <true/false>`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&cfg.Database.ValkeyAddress,
		"valkey-address", "",
		cfg.Database.ValkeyAddress,
		`valkey address | example: --valkey-address=localhost:6379`,
	)

	// Remote collaborators
	rootCmd.PersistentFlags().StringVarP(
		&cfg.Remote.ScrambleEndpoint,
		"scramble-endpoint", "",
		cfg.Remote.ScrambleEndpoint,
		`remote scramble generator, local generator when empty | example: --scramble-endpoint="http://localhost:5000/api/scramble"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&cfg.Remote.SolverEndpoint,
		"solver-endpoint", "",
		cfg.Remote.SolverEndpoint,
		`remote cube solver | example: --solver-endpoint="http://localhost:5000/api/solve"`,
	)

	// Worker Pool flags
	rootCmd.PersistentFlags().IntVarP(
		&cfg.WorkerPool.Size,
		"workers", "",
		cfg.WorkerPool.Size,
		`number of background workers --workers <number> | example: --workers=8 (default: 4)`,
	)
	rootCmd.PersistentFlags().IntVarP(
		&cfg.WorkerPool.QueueSize,
		"queue-size", "",
		cfg.WorkerPool.QueueSize,
		`queue size per background worker --queue-size <number> | example: --queue-size=512 (default: 256)`,
	)
}

func initApp() {
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	//preparing folder if not exist
	if err := utils.CreateFolder(cfg.Paths.Storages, cfg.Paths.Statics); err != nil {
		logrus.Errorln(err)
	}

	ctx := context.Background()
	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)

	var err error
	db, err = database.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[DB] %v", err)
	}

	gormStorage := storageInfra.NewStorageGormRepository(db)
	if err := gormStorage.InitSchema(ctx); err != nil {
		logrus.Fatalf("[DB] failed to init storage schema: %v", err)
	}
	storage = gormStorage

	// Valkey is optional; without it settings and events stay on this instance
	var notifier settingsDomain.INotifier
	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Errorf("[VALKEY] %v, running without shared state", err)
			vkClient = nil
		} else {
			notifier = settingsInfra.NewValkeyNotifier(vkClient)
			logrus.Infof("[VALKEY] connected to %s", cfg.Database.ValkeyAddress)
		}
	}

	settings = settingsApp.NewStore(storage, notifier, serverID)
	settings.Load(ctx)

	metricsReg = metrics.NewRegistry()
	workerPool = worker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	workerPool.OnJobDone = func(key string, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metricsReg.WorkerJobs.WithLabelValues(key, outcome).Inc()
	}

	scrambleUsecase = usecase.NewScrambleService(cubeApp.NewGenerator(), cfg.Remote, metricsReg)
	solveUsecase = usecase.NewSolveService(db, cfg.Timer.HistoryLimit)
	solverUsecase = usecase.NewSolverService(cfg.Remote, metricsReg)

	// a nil *valkey.Client must not reach the interface
	var pinger usecase.Pinger
	if vkClient != nil {
		pinger = vkClient
	}
	healthUsecase = usecase.NewHealthService(db, pinger, cfg.Remote)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp releases the database and valkey connections.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if workerPool != nil {
		workerPool.Stop()
	}
	if vkClient != nil {
		vkClient.Close()
	}
	if err := database.Close(db); err != nil {
		logrus.Errorf("[DB] close failed: %v", err)
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
