package config

import (
	"sync"

	"github.com/pthm-cable/nightbats/policy"
)

// Settings is the user-facing preference set shown on the settings screen.
type Settings struct {
	Difficulty   policy.Difficulty
	SoundEnabled bool
}

// SettingsStore holds the current Settings and notifies subscribers on change.
// It is safe for concurrent use; callbacks run on the goroutine calling Set.
type SettingsStore struct {
	mu        sync.Mutex
	current   Settings
	listeners []func(Settings)
}

// NewSettingsStore creates a store seeded from the config's initial settings.
func NewSettingsStore(initial SettingsConfig) *SettingsStore {
	return &SettingsStore{
		current: Settings{
			Difficulty:   initial.Difficulty,
			SoundEnabled: initial.SoundEnabled,
		},
	}
}

// Get returns the current settings.
func (s *SettingsStore) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers fn to be called after every change.
// Returns a function that removes the subscription.
func (s *SettingsStore) Subscribe(fn func(Settings)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.listeners)
	s.listeners = append(s.listeners, fn)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.listeners) {
			s.listeners[idx] = nil
		}
	}
}

// Set replaces the settings. Subscribers are only notified if something changed.
func (s *SettingsStore) Set(next Settings) {
	s.update(func(cur *Settings) { *cur = next })
}

// SetDifficulty changes only the difficulty.
func (s *SettingsStore) SetDifficulty(d policy.Difficulty) {
	s.update(func(cur *Settings) { cur.Difficulty = d })
}

// ToggleSound flips the sound setting and returns the new value.
func (s *SettingsStore) ToggleSound() bool {
	return s.update(func(cur *Settings) { cur.SoundEnabled = !cur.SoundEnabled }).SoundEnabled
}

// update applies fn under the lock and notifies subscribers after releasing it.
func (s *SettingsStore) update(fn func(*Settings)) Settings {
	s.mu.Lock()
	next := s.current
	fn(&next)
	if next == s.current {
		s.mu.Unlock()
		return next
	}
	s.current = next
	listeners := make([]func(Settings), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		if l != nil {
			l(next)
		}
	}
	return next
}
