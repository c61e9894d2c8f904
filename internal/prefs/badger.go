package prefs

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v3"
)

// Compile-time check that *BadgerStore satisfies [Store].
var _ Store = (*BadgerStore)(nil)

// Preference keys. String-encoded values, one key per setting, so a
// partially written set still loads field by field.
const (
	keyVolume     = "guardian_volume"
	keyMuted      = "guardian_muted"
	keyTheme      = "theme"
	keyOnboarding = "onboarding_complete"
)

const themeDark = "dark"

// BadgerStore persists preferences in an embedded Badger database.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the preference database at dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("prefs: create storage directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Badger's own logger is too chatty for a side store.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("prefs: open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load reads the persisted preference set, falling back to the default for
// every key never written.
func (s *BadgerStore) Load() (Preferences, error) {
	p := Defaults()
	err := s.db.View(func(txn *badger.Txn) error {
		if v, ok, err := getString(txn, keyVolume); err != nil {
			return err
		} else if ok {
			vol, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("parse %s: %w", keyVolume, err)
			}
			p.Volume = vol
		}
		if v, ok, err := getString(txn, keyMuted); err != nil {
			return err
		} else if ok {
			p.Muted = v == "true"
		}
		if v, ok, err := getString(txn, keyTheme); err != nil {
			return err
		} else if ok {
			p.DarkTheme = v == themeDark
		}
		if v, ok, err := getString(txn, keyOnboarding); err != nil {
			return err
		} else if ok {
			p.OnboardingDone = v == "true"
		}
		return nil
	})
	if err != nil {
		return Preferences{}, fmt.Errorf("prefs: load: %w", err)
	}
	return p, nil
}

// Save writes the full preference set.
func (s *BadgerStore) Save(p Preferences) error {
	theme := "light"
	if p.DarkTheme {
		theme = themeDark
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		entries := map[string]string{
			keyVolume:     strconv.FormatFloat(p.Volume, 'g', -1, 64),
			keyMuted:      strconv.FormatBool(p.Muted),
			keyTheme:      theme,
			keyOnboarding: strconv.FormatBool(p.OnboardingDone),
		}
		for k, v := range entries {
			if err := txn.Set([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("prefs: save: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// getString reads one key, reporting absence instead of erroring on it.
func getString(txn *badger.Txn, key string) (value string, ok bool, err error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	err = item.Value(func(val []byte) error {
		value = string(val)
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
