package application

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"

	"github.com/AzielCF/az-cube/core/settings/domain"
	storageDomain "github.com/AzielCF/az-cube/core/storage/domain"
	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 16

// Store is the settings mapping persisted under one storage key. All methods are
// safe for concurrent use.
type Store struct {
	storage  storageDomain.IStorage
	notifier domain.INotifier
	senderID string

	mu     sync.RWMutex
	values map[string]any

	subMu   sync.Mutex
	subs    map[int]chan domain.Change
	nextSub int
}

// NewStore builds a store holding defaults. notifier may be nil for a single instance.
func NewStore(storage storageDomain.IStorage, notifier domain.INotifier, senderID string) *Store {
	return &Store{
		storage:  storage,
		notifier: notifier,
		senderID: senderID,
		values:   domain.Defaults(),
		subs:     make(map[int]chan domain.Change),
	}
}

// Load replaces the in-memory mapping with the persisted one merged over defaults.
// Absent or unreadable data leaves defaults in place.
func (s *Store) Load(ctx context.Context) {
	merged := s.readMerged(ctx)
	s.mu.Lock()
	s.values = merged
	s.mu.Unlock()
}

// readMerged reads the persisted object and merges it over defaults per key.
func (s *Store) readMerged(ctx context.Context) map[string]any {
	merged := domain.Defaults()

	raw, ok, err := s.storage.Get(ctx, storageDomain.KeySettings)
	if err != nil {
		logrus.Warnf("[SETTINGS] failed to read persisted settings, using defaults: %v", err)
		return merged
	}
	if !ok || raw == "" {
		return merged
	}

	var persisted map[string]any
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		logrus.Warnf("[SETTINGS] persisted settings are corrupt, using defaults: %v", err)
		return merged
	}

	for key, value := range persisted {
		if !domain.IsKnown(key) {
			merged[key] = value
			continue
		}
		coerced, err := domain.Coerce(key, value)
		if err != nil {
			logrus.Warnf("[SETTINGS] ignoring persisted %s: %v", key, err)
			continue
		}
		merged[key] = coerced
	}
	return merged
}

func (s *Store) persist(ctx context.Context, values map[string]any) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.storage.Set(ctx, storageDomain.KeySettings, string(data)); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

// Get returns the current value of key, or its default.
func (s *Store) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return domain.Defaults()[key]
}

// All returns a copy of the mapping including preserved unknown keys.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Effective reduces the current mapping.
func (s *Store) Effective() domain.Effective {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Reduce(s.values)
}

// Set coerces value, merges it into the persisted state and broadcasts the change.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	coerced, err := domain.Coerce(key, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// another instance may have written since our last load
	next := s.readMerged(ctx)
	next[key] = coerced
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values = next
	s.mu.Unlock()

	logrus.Debugf("[SETTINGS] %s = %v", key, coerced)
	s.emit(ctx, domain.Change{Kind: domain.ChangeSet, Key: key, Value: coerced})
	return nil
}

// ResetToDefaults restores the default mapping, dropping unknown keys.
func (s *Store) ResetToDefaults(ctx context.Context) error {
	defaults := domain.Defaults()

	s.mu.Lock()
	if err := s.persist(ctx, defaults); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values = defaults
	s.mu.Unlock()

	logrus.Info("[SETTINGS] reset to defaults")
	s.emit(ctx, domain.Change{Kind: domain.ChangeReset})
	return nil
}

// Import replaces the mapping with values merged over defaults. Known keys must coerce;
// unknown keys are kept as they are.
func (s *Store) Import(ctx context.Context, values map[string]any) error {
	next := domain.Defaults()
	for key, value := range values {
		if !domain.IsKnown(key) {
			next[key] = value
			continue
		}
		coerced, err := domain.Coerce(key, value)
		if err != nil {
			return err
		}
		next[key] = coerced
	}

	s.mu.Lock()
	if err := s.persist(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values = next
	s.mu.Unlock()

	logrus.Infof("[SETTINGS] imported %d settings", len(values))
	s.emit(ctx, domain.Change{Kind: domain.ChangeImport})
	return nil
}

// HandleRemote applies a change published by another instance: the persisted state is
// re-merged, the change is layered on top, and local subscribers are told.
func (s *Store) HandleRemote(ctx context.Context, change domain.Change) {
	if change.SenderID != "" && change.SenderID == s.senderID {
		return
	}

	s.mu.Lock()
	var next map[string]any
	switch change.Kind {
	case domain.ChangeReset:
		next = domain.Defaults()
	default:
		next = s.readMerged(ctx)
		if change.Kind == domain.ChangeSet {
			if coerced, err := domain.Coerce(change.Key, change.Value); err == nil {
				next[change.Key] = coerced
			}
		}
	}
	if err := s.persist(ctx, next); err != nil {
		logrus.Warnf("[SETTINGS] failed to persist remote change: %v", err)
	}
	s.values = next
	s.mu.Unlock()

	change.Remote = true
	s.notifyLocal(change)
}

// Sync listens for remote changes until ctx is done. It returns immediately when the
// store has no notifier.
func (s *Store) Sync(ctx context.Context) error {
	if s.notifier == nil {
		return nil
	}
	logrus.Info("[SETTINGS] listening for remote changes")
	return s.notifier.Listen(ctx, func(change domain.Change) {
		s.HandleRemote(ctx, change)
	})
}

// Subscribe returns a channel receiving every change. Slow readers lose notifications
// instead of blocking writers. cancel closes the channel.
func (s *Store) Subscribe() (<-chan domain.Change, func()) {
	ch := make(chan domain.Change, subscriberBuffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) emit(ctx context.Context, change domain.Change) {
	s.notifyLocal(change)

	if s.notifier == nil {
		return
	}
	change.SenderID = s.senderID
	if err := s.notifier.Publish(ctx, change); err != nil {
		logrus.Warnf("[SETTINGS] failed to publish change: %v", err)
	}
}

func (s *Store) notifyLocal(change domain.Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- change:
		default:
			logrus.Debug("[SETTINGS] subscriber is full, dropping change")
		}
	}
}
