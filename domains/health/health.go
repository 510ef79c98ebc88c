package health

import (
	"context"
	"time"
)

type EntityType string

const (
	EntityDatabase EntityType = "database"
	EntityValkey   EntityType = "valkey"
	EntityScramble EntityType = "scramble_endpoint"
	EntitySolver   EntityType = "solver_endpoint"
)

var Entities = []EntityType{EntityDatabase, EntityValkey, EntityScramble, EntitySolver}

type Status string

const (
	StatusOk      Status = "OK"
	StatusError   Status = "ERROR"
	StatusUnknown Status = "UNKNOWN"
)

type HealthRecord struct {
	EntityType  EntityType `json:"entity_type"`
	Status      Status     `json:"status"`
	LastMessage string     `json:"last_message"`
	LastChecked time.Time  `json:"last_checked"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
}

type IHealthUsecase interface {
	InitSchema(ctx context.Context) error
	Check(ctx context.Context, entity EntityType) (HealthRecord, error)
	CheckAll(ctx context.Context) ([]HealthRecord, error)
	GetStatus(ctx context.Context) ([]HealthRecord, error)
	StartPeriodicChecks(ctx context.Context, interval time.Duration)
}
