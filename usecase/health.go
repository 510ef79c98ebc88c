package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AzielCF/az-cube/core/config"
	"github.com/AzielCF/az-cube/domains/health"
	pkgError "github.com/AzielCF/az-cube/pkg/error"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Pinger is satisfied by the valkey client.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthModel struct {
	EntityType  string `gorm:"primaryKey;size:64"`
	Status      string `gorm:"size:16;not null"`
	LastMessage string
	LastChecked time.Time `gorm:"not null"`
	LastSuccess *time.Time
}

func (healthModel) TableName() string {
	return "health_checks"
}

func (m healthModel) toRecord() health.HealthRecord {
	return health.HealthRecord{
		EntityType:  health.EntityType(m.EntityType),
		Status:      health.Status(m.Status),
		LastMessage: m.LastMessage,
		LastChecked: m.LastChecked,
		LastSuccess: m.LastSuccess,
	}
}

type healthService struct {
	db      *gorm.DB
	valkey  Pinger
	remote  config.RemoteConfig
	client  *fasthttp.Client
	timeout time.Duration
}

// NewHealthService checks the database, valkey (may be nil when disabled) and the
// remote endpoints.
func NewHealthService(db *gorm.DB, valkey Pinger, remote config.RemoteConfig) health.IHealthUsecase {
	timeout := time.Duration(remote.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	s := &healthService{
		db:      db,
		valkey:  valkey,
		remote:  remote,
		client:  &fasthttp.Client{Name: "az-cube-health"},
		timeout: timeout,
	}
	if db != nil {
		if err := s.InitSchema(context.Background()); err != nil {
			logrus.WithError(err).Error("[HEALTH] failed to init schema")
		}
	} else {
		logrus.Error("[HEALTH] GORM DB is nil, health history is disabled")
	}
	return s
}

func (s *healthService) InitSchema(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).AutoMigrate(&healthModel{})
}

func (s *healthService) ensureDB() error {
	if s.db == nil {
		return pkgError.InternalServerError("health storage is not initialized")
	}
	return nil
}

func (s *healthService) GetStatus(ctx context.Context) ([]health.HealthRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var models []healthModel
	if err := s.db.WithContext(ctx).Order("entity_type ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to read health status: %w", err)
	}
	records := make([]health.HealthRecord, 0, len(models))
	for _, m := range models {
		records = append(records, m.toRecord())
	}
	return records, nil
}

func (s *healthService) Check(ctx context.Context, entity health.EntityType) (health.HealthRecord, error) {
	record := health.HealthRecord{EntityType: entity, Status: health.StatusOk}

	var err error
	switch entity {
	case health.EntityDatabase:
		err = s.pingDatabase(ctx)
		record.LastMessage = "Database reachable"
	case health.EntityValkey:
		if s.valkey == nil {
			record.Status = health.StatusUnknown
			record.LastMessage = "Valkey is disabled"
			break
		}
		err = s.valkey.Ping(ctx)
		record.LastMessage = "Valkey reachable"
	case health.EntityScramble:
		err = s.probe(ctx, s.remote.ScrambleEndpoint, &record)
	case health.EntitySolver:
		err = s.probe(ctx, s.remote.SolverEndpoint, &record)
	default:
		return record, pkgError.ValidationError(fmt.Sprintf("unknown health entity %q", entity))
	}
	if err != nil {
		record.Status = health.StatusError
		record.LastMessage = err.Error()
	}

	return s.upsertStatus(ctx, record)
}

func (s *healthService) pingDatabase(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// probe treats any answer below 500 as reachable; the endpoints expect parameters
// a bare GET does not carry.
func (s *healthService) probe(ctx context.Context, endpoint string, record *health.HealthRecord) error {
	if endpoint == "" {
		record.Status = health.StatusUnknown
		record.LastMessage = "Endpoint not configured"
		return nil
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint)
	req.Header.SetMethod(http.MethodGet)

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("endpoint unreachable: %w", err)
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return fmt.Errorf("endpoint answered status=%d", resp.StatusCode())
	}
	record.LastMessage = fmt.Sprintf("Endpoint answered status=%d", resp.StatusCode())
	return nil
}

func (s *healthService) upsertStatus(ctx context.Context, r health.HealthRecord) (health.HealthRecord, error) {
	now := time.Now().UTC()
	r.LastChecked = now
	if r.Status == health.StatusOk {
		r.LastSuccess = &now
	}
	if err := s.ensureDB(); err != nil {
		return r, err
	}

	model := healthModel{
		EntityType:  string(r.EntityType),
		Status:      string(r.Status),
		LastMessage: r.LastMessage,
		LastChecked: now,
		LastSuccess: r.LastSuccess,
	}
	updates := []string{"status", "last_message", "last_checked"}
	if r.Status == health.StatusOk {
		updates = append(updates, "last_success")
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_type"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(&model).Error
	if err != nil {
		return r, fmt.Errorf("failed to store health status: %w", err)
	}

	// keep the previous success time on failures
	if r.LastSuccess == nil {
		var stored healthModel
		if err := s.db.WithContext(ctx).First(&stored, "entity_type = ?", model.EntityType).Error; err == nil {
			r.LastSuccess = stored.LastSuccess
		}
	}
	return r, nil
}

func (s *healthService) CheckAll(ctx context.Context) ([]health.HealthRecord, error) {
	results := make([]health.HealthRecord, 0, len(health.Entities))
	for _, entity := range health.Entities {
		res, err := s.Check(ctx, entity)
		if err != nil {
			logrus.WithError(err).Warnf("[HEALTH] check of %s failed", entity)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *healthService) StartPeriodicChecks(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	logrus.Infof("[HEALTH] starting periodic health checks (interval: %s)", interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logrus.Debug("[HEALTH] performing initial health check")
		_, _ = s.CheckAll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logrus.Debug("[HEALTH] performing scheduled health check")
				_, _ = s.CheckAll(ctx)
			}
		}
	}()
}
