package prefs

import "testing"

func TestDefaults(t *testing.T) {
	t.Parallel()

	p := Defaults()
	if p.Volume != 0.5 {
		t.Errorf("Volume = %v, want 0.5", p.Volume)
	}
	if p.Muted || p.DarkTheme || p.OnboardingDone {
		t.Errorf("boolean defaults = %+v, want all false", p)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := (Preferences{Volume: 1}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := (Preferences{Volume: 1.5}).Validate(); err == nil {
		t.Error("Validate() error = nil for volume 1.5")
	}
	if err := (Preferences{Volume: -0.1}).Validate(); err == nil {
		t.Error("Validate() error = nil for negative volume")
	}
}

func TestSettingsLoadsDefaultsFromEmptyStore(t *testing.T) {
	t.Parallel()

	s, err := NewSettings(NewMemStore())
	if err != nil {
		t.Fatalf("NewSettings() error = %v", err)
	}
	if got := s.Current(); got != Defaults() {
		t.Errorf("Current() = %+v, want defaults", got)
	}
}

func TestSettingsUpdatePersists(t *testing.T) {
	t.Parallel()

	store := NewMemStore()
	s, err := NewSettings(store)
	if err != nil {
		t.Fatalf("NewSettings() error = %v", err)
	}

	want := Preferences{Volume: 0.9, Muted: true, DarkTheme: true, OnboardingDone: true}
	if err := s.Update(want); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := s.Current(); got != want {
		t.Errorf("Current() = %+v, want %+v", got, want)
	}

	// A second Settings over the same store sees the saved set.
	s2, err := NewSettings(store)
	if err != nil {
		t.Fatalf("NewSettings() error = %v", err)
	}
	if got := s2.Current(); got != want {
		t.Errorf("reloaded Current() = %+v, want %+v", got, want)
	}
}

func TestSettingsUpdateRejectsInvalid(t *testing.T) {
	t.Parallel()

	s, err := NewSettings(NewMemStore())
	if err != nil {
		t.Fatalf("NewSettings() error = %v", err)
	}
	if err := s.Update(Preferences{Volume: 2}); err == nil {
		t.Fatal("Update() error = nil for invalid volume")
	}
	if got := s.Current(); got != Defaults() {
		t.Errorf("Current() = %+v after rejected update, want defaults", got)
	}
}

func TestEffectiveVolume(t *testing.T) {
	t.Parallel()

	s, err := NewSettings(NewMemStore())
	if err != nil {
		t.Fatalf("NewSettings() error = %v", err)
	}
	if got := s.EffectiveVolume(); got != 0.5 {
		t.Errorf("EffectiveVolume() = %v, want 0.5", got)
	}
	if err := s.Update(Preferences{Volume: 0.7, Muted: true}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := s.EffectiveVolume(); got != 0 {
		t.Errorf("EffectiveVolume() = %v while muted, want 0", got)
	}
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	defer store.Close()

	if got, err := store.Load(); err != nil || got != Defaults() {
		t.Fatalf("Load() = %+v, %v; want defaults on empty database", got, err)
	}

	want := Preferences{Volume: 0.25, Muted: true, DarkTheme: true, OnboardingDone: true}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}
