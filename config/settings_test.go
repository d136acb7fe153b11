package config

import (
	"sync"
	"testing"

	"github.com/pthm-cable/nightbats/policy"
)

func TestSettingsStoreNotifies(t *testing.T) {
	store := NewSettingsStore(SettingsConfig{Difficulty: policy.Medium, SoundEnabled: true})

	var got []Settings
	store.Subscribe(func(s Settings) { got = append(got, s) })

	store.SetDifficulty(policy.Hard)
	store.SetDifficulty(policy.Hard) // no change, no notification
	store.ToggleSound()

	if len(got) != 2 {
		t.Fatalf("notifications = %d, want 2", len(got))
	}
	if got[0].Difficulty != policy.Hard || !got[0].SoundEnabled {
		t.Errorf("first notification = %+v", got[0])
	}
	if got[1].SoundEnabled {
		t.Errorf("second notification SoundEnabled = true, want false")
	}
	if store.Get() != got[1] {
		t.Errorf("Get() = %+v, want %+v", store.Get(), got[1])
	}
}

func TestSettingsStoreUnsubscribe(t *testing.T) {
	store := NewSettingsStore(SettingsConfig{})

	calls := 0
	unsubscribe := store.Subscribe(func(Settings) { calls++ })
	store.SetDifficulty(policy.Hard)
	unsubscribe()
	store.SetDifficulty(policy.Easy)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSettingsStoreConcurrentUpdates(t *testing.T) {
	store := NewSettingsStore(SettingsConfig{Difficulty: policy.Easy})

	const toggles = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < toggles; i++ {
			store.ToggleSound()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < toggles; i++ {
			store.SetDifficulty(policy.Hard)
		}
	}()
	wg.Wait()

	got := store.Get()
	if got.Difficulty != policy.Hard {
		t.Errorf("Difficulty = %v, want HARD", got.Difficulty)
	}
	// An even number of toggles lands back on the initial value
	if got.SoundEnabled {
		t.Error("SoundEnabled = true, want false after an even number of toggles")
	}
}
