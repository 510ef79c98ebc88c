package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AzielCF/az-cube/core/config"
	"github.com/AzielCF/az-cube/domains/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestHealthService_CheckAll(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	svc := NewHealthService(newTestDB(t), fakePinger{}, config.RemoteConfig{ScrambleEndpoint: srv.URL, TimeoutMs: 500})
	results, err := svc.CheckAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, len(health.Entities))

	byEntity := map[health.EntityType]health.HealthRecord{}
	for _, r := range results {
		byEntity[r.EntityType] = r
	}
	assert.Equal(t, health.StatusOk, byEntity[health.EntityDatabase].Status)
	assert.Equal(t, health.StatusOk, byEntity[health.EntityValkey].Status)
	assert.Equal(t, health.StatusOk, byEntity[health.EntityScramble].Status)
	assert.Equal(t, health.StatusUnknown, byEntity[health.EntitySolver].Status)

	stored, err := svc.GetStatus(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, len(health.Entities))
}

func TestHealthService_FailureKeepsLastSuccess(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	ok, err := NewHealthService(db, fakePinger{}, config.RemoteConfig{}).Check(ctx, health.EntityValkey)
	require.NoError(t, err)
	require.NotNil(t, ok.LastSuccess)

	failed, err := NewHealthService(db, fakePinger{err: errors.New("connection refused")}, config.RemoteConfig{}).Check(ctx, health.EntityValkey)
	require.NoError(t, err)
	assert.Equal(t, health.StatusError, failed.Status)
	assert.Equal(t, "connection refused", failed.LastMessage)
	require.NotNil(t, failed.LastSuccess)
	assert.True(t, ok.LastSuccess.Equal(*failed.LastSuccess))
}

func TestHealthService_DisabledValkeyAndUnknownEntity(t *testing.T) {
	svc := NewHealthService(newTestDB(t), nil, config.RemoteConfig{})
	rec, err := svc.Check(context.Background(), health.EntityValkey)
	require.NoError(t, err)
	assert.Equal(t, health.StatusUnknown, rec.Status)

	_, err = svc.Check(context.Background(), "printer")
	assert.Error(t, err)
}
