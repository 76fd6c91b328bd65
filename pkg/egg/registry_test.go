package egg

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestActionFunc(t *testing.T) {
	ran := false
	a := NewActionFunc("party", func() error {
		ran = true
		return nil
	})

	if a.Name() != "party" {
		t.Errorf("Name() = %q, want %q", a.Name(), "party")
	}
	if err := a.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !ran {
		t.Error("Run() did not invoke the wrapped function")
	}
}

func TestActionFuncPropagatesError(t *testing.T) {
	wantErr := errors.New("player offline")
	a := NewActionFunc("party", func() error { return wantErr })

	if err := a.Run(); err != wantErr {
		t.Errorf("Run() error = %v, want %v", err, wantErr)
	}
}

func TestActionFuncNilBody(t *testing.T) {
	a := NewActionFunc("noop", nil)
	if err := a.Run(); err != nil {
		t.Errorf("Run() with nil body error = %v, want nil", err)
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	d := Descriptor{
		Key:            "911",
		Label:          "SHIT",
		Message:        "emergency mode",
		Action:         NewActionFunc("emergency", func() error { return nil }),
		Cleanup:        func() {},
		Cooldown:       time.Hour,
		EffectDuration: 30 * time.Minute,
		Description:    "Emergency mode (30m active, 1h cooldown)",
	}
	if err := r.Register(d); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := r.Lookup("911")
	if !ok {
		t.Fatal("Lookup() did not find registered key")
	}
	if got.Label != "SHIT" || got.Cooldown != time.Hour {
		t.Errorf("Lookup() returned wrong descriptor: %+v", got)
	}
	if !got.Timed() {
		t.Error("Descriptor with duration and cleanup should be timed")
	}

	if !r.Contains("911") {
		t.Error("Contains() = false for registered key")
	}
	if r.Contains("420") {
		t.Error("Contains() = true for unregistered key")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Descriptor{Action: NewActionFunc("x", nil)})
	if err != ErrNoKey {
		t.Errorf("Register without key error = %v, want ErrNoKey", err)
	}

	err = r.Register(Descriptor{Key: "911"})
	if err != ErrNoAction {
		t.Errorf("Register without action error = %v, want ErrNoAction", err)
	}

	if r.Count() != 0 {
		t.Errorf("Count() = %d after rejected registrations, want 0", r.Count())
	}
}

func TestRegisterLastWriteWins(t *testing.T) {
	r := NewRegistry()

	first := Descriptor{Key: "404", Label: "404", Action: NewActionFunc("first", nil)}
	second := Descriptor{Key: "404", Label: "ERR2", Action: NewActionFunc("second", nil)}

	if err := r.Register(first); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(second); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, _ := r.Lookup("404")
	if got.Label != "ERR2" {
		t.Errorf("Lookup() label = %q, want the replacement %q", got.Label, "ERR2")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d after replacement, want 1", r.Count())
	}
}

func TestInstantDescriptorNotTimed(t *testing.T) {
	// Duration without cleanup, and cleanup without duration, are both
	// instant activations.
	withDuration := Descriptor{Key: "a", EffectDuration: time.Minute}
	withCleanup := Descriptor{Key: "b", Cleanup: func() {}}

	if withDuration.Timed() {
		t.Error("Descriptor without cleanup should not be timed")
	}
	if withCleanup.Timed() {
		t.Error("Descriptor without duration should not be timed")
	}
}

func TestKeysSorted(t *testing.T) {
	r := NewRegistry()
	for _, key := range []string{"911", "0000", "666", "420", "DIGITAL_ANALOG"} {
		if err := r.Register(Descriptor{Key: key, Action: NewActionFunc(key, nil)}); err != nil {
			t.Fatalf("Register(%q) error = %v", key, err)
		}
	}

	want := []string{"0000", "420", "666", "911", "DIGITAL_ANALOG"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	all := r.All()
	for i, d := range all {
		if d.Key != want[i] {
			t.Errorf("All()[%d].Key = %q, want %q", i, d.Key, want[i])
		}
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n))
			_ = r.Register(Descriptor{Key: key, Action: NewActionFunc(key, nil)})
			r.Lookup(key)
			r.Keys()
			r.Count()
		}(i)
	}
	wg.Wait()

	if r.Count() != 10 {
		t.Errorf("Count() = %d after concurrent registration, want 10", r.Count())
	}
}
