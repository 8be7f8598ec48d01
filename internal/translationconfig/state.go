package translationconfig

import (
	"context"
	"errors"
	"sync/atomic"
)

// State is a concurrency safe snapshot of the active settings.
type State struct {
	current atomic.Pointer[Settings]
}

// NewState seeds a state.
func NewState(settings Settings) *State {
	st := &State{}
	st.Set(settings)
	return st
}

// Current returns the active settings.
func (s *State) Current() Settings {
	if s == nil {
		return Settings{}
	}
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Settings{}
}

// Set replaces the active settings.
func (s *State) Set(settings Settings) {
	if s == nil {
		return
	}
	normalized := settings.Normalize()
	s.current.Store(&normalized)
}

// Follow loads the stored settings into state and keeps applying change
// events until ctx is done. Missing settings leave the seed untouched.
func Follow(ctx context.Context, repo Repository, state *State) error {
	if repo == nil || state == nil {
		return nil
	}
	events, err := repo.Subscribe(ctx)
	if err != nil {
		return err
	}
	stored, err := repo.Get(ctx)
	switch {
	case err == nil:
		state.Set(stored)
	case !errors.Is(err, ErrSettingsNotFound):
		return err
	}

	go func() {
		for evt := range events {
			if evt.Type == ChangeDeleted {
				state.Set(Settings{})
				continue
			}
			state.Set(evt.Settings)
		}
	}()
	return nil
}
