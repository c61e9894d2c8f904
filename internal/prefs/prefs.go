// Package prefs holds the user's persisted playback and UI preferences:
// output volume, mute, theme, and the onboarding flag. Preferences are
// loaded once at startup and saved on every change.
package prefs

import (
	"fmt"
	"sync"
)

// Preferences is the full persisted preference set.
type Preferences struct {
	// Volume is the output volume in [0, 1].
	Volume float64 `json:"volume"`
	// Muted silences all audio output without losing the volume setting.
	Muted bool `json:"muted"`
	// DarkTheme selects the dark UI theme.
	DarkTheme bool `json:"dark_theme"`
	// OnboardingDone records that the first-run walkthrough was completed.
	OnboardingDone bool `json:"onboarding_done"`
}

// Defaults returns the preference set for a first-time user.
func Defaults() Preferences {
	return Preferences{Volume: 0.5}
}

// Validate checks the preference values.
func (p Preferences) Validate() error {
	if p.Volume < 0 || p.Volume > 1 {
		return fmt.Errorf("prefs: volume %v out of [0, 1]", p.Volume)
	}
	return nil
}

// Store persists preferences. Load returns Defaults when nothing was
// saved yet.
type Store interface {
	Load() (Preferences, error)
	Save(Preferences) error
	Close() error
}

// Settings is the live, concurrency-safe view over a Store. It caches the
// current preference set in memory and writes through on update.
type Settings struct {
	store Store

	mu      sync.RWMutex
	current Preferences
}

// NewSettings loads the persisted preferences and wraps them.
func NewSettings(store Store) (*Settings, error) {
	p, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("prefs: load: %w", err)
	}
	return &Settings{store: store, current: p}, nil
}

// Current returns the in-memory preference set.
func (s *Settings) Current() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates, persists, and applies a new preference set.
func (s *Settings) Update(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(p); err != nil {
		return fmt.Errorf("prefs: save: %w", err)
	}
	s.current = p
	return nil
}

// EffectiveVolume returns the volume audio output should use right now:
// the configured volume, or 0 while muted.
func (s *Settings) EffectiveVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current.Muted {
		return 0
	}
	return s.current.Volume
}
