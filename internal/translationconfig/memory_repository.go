package translationconfig

import (
	"context"
	"sync"
)

// MemoryRepository keeps settings in process.
type MemoryRepository struct {
	mu       sync.RWMutex
	settings *Settings
	events   *broadcaster
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{events: newBroadcaster()}
}

func (r *MemoryRepository) Get(context.Context) (Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return Settings{}, ErrSettingsNotFound
	}
	return r.settings.Normalize(), nil
}

// Upsert stores settings. Unchanged settings emit no event.
func (r *MemoryRepository) Upsert(_ context.Context, settings Settings) (Settings, error) {
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	settings = settings.Normalize()

	r.mu.Lock()
	previous := r.settings
	r.settings = &settings
	r.mu.Unlock()

	switch {
	case previous == nil:
		r.events.Publish(ChangeCreated, settings)
	case !previous.Equal(settings):
		r.events.Publish(ChangeUpdated, settings)
	}
	return settings, nil
}

func (r *MemoryRepository) Delete(context.Context) error {
	r.mu.Lock()
	if r.settings == nil {
		r.mu.Unlock()
		return ErrSettingsNotFound
	}
	r.settings = nil
	r.mu.Unlock()

	r.events.Publish(ChangeDeleted, Settings{})
	return nil
}

func (r *MemoryRepository) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	return r.events.Subscribe(ctx)
}
