package usecase

import (
	"context"
	"sort"

	settingsApp "github.com/AzielCF/az-cube/core/settings/application"
	settingsDomain "github.com/AzielCF/az-cube/core/settings/domain"
	domainSettings "github.com/AzielCF/az-cube/domains/settings"
	"github.com/AzielCF/az-cube/pkg/metrics"
	"github.com/AzielCF/az-cube/validations"
	"github.com/sirupsen/logrus"
)

type settingsService struct {
	store   *settingsApp.Store
	metrics *metrics.Registry
}

func NewSettingsService(store *settingsApp.Store, m *metrics.Registry) *settingsService {
	return &settingsService{store: store, metrics: m}
}

func (s *settingsService) All(ctx context.Context) map[string]any {
	return s.store.All()
}

func (s *settingsService) Effective(ctx context.Context) settingsDomain.Effective {
	return s.store.Effective()
}

// Update applies every value in a stable key order. Values already applied stay
// applied when a later one fails.
func (s *settingsService) Update(ctx context.Context, request domainSettings.UpdateRequest) (map[string]any, error) {
	if err := validations.ValidateSettingsUpdate(ctx, request); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(request.Values))
	for k := range request.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := s.store.Set(ctx, key, request.Values[key]); err != nil {
			return nil, err
		}
	}
	return s.store.All(), nil
}

func (s *settingsService) Reset(ctx context.Context) (map[string]any, error) {
	if err := s.store.ResetToDefaults(ctx); err != nil {
		return nil, err
	}
	return s.store.All(), nil
}

func (s *settingsService) Subscribe() (<-chan settingsDomain.Change, func()) {
	return s.store.Subscribe()
}

// Watch counts changes by origin until ctx is done.
func (s *settingsService) Watch(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	changes, cancel := s.store.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			origin := "local"
			if change.Remote {
				origin = "remote"
			}
			s.metrics.SettingsChanges.WithLabelValues(string(change.Kind), origin).Inc()
			logrus.Debugf("[SETTINGS] %s change (%s)", change.Kind, origin)
		}
	}
}
