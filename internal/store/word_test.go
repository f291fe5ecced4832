package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestWordRepository(t *testing.T) {
	s := newTestStore(t)
	words := s.Words()

	if _, err := words.Get(day(5)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	w, err := words.Set(day(5), " mano ")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if w.Word != "MANO" || w.Day != "2026-03-05" {
		t.Errorf("Set() = %+v", w)
	}

	if _, err := words.Set(day(5), "sign"); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}
	got, err := words.Get(day(5))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Word != "SIGN" {
		t.Errorf("Get() = %q, want SIGN", got.Word)
	}

	if _, err := words.Get(day(6)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() for another day error = %v, want ErrNotFound", err)
	}

	if _, err := words.Set(day(7), "   "); err == nil {
		t.Error("Set() with a blank word should fail")
	}
}

func TestTemplateRepository(t *testing.T) {
	s := newTestStore(t)
	templates := s.Templates()

	got, err := templates.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("fresh store has %d templates", len(got))
	}

	want := []SignTemplate{
		{Label: "A", Features: Vector{0, 0, 1, -0.5}, Samples: 3},
		{Label: "B", Features: Vector{0, 0, -1, 0.25}, Samples: 1},
	}
	if err := templates.Replace(want); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	got, err = templates.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d templates, want 2", len(got))
	}
	for i := range want {
		if got[i].Label != want[i].Label || got[i].Samples != want[i].Samples {
			t.Errorf("template %d = %+v, want %+v", i, got[i], want[i])
		}
		if !reflect.DeepEqual(got[i].Features, want[i].Features) {
			t.Errorf("template %d features = %v, want %v", i, got[i].Features, want[i].Features)
		}
	}

	// Replace drops earlier templates.
	if err := templates.Replace(want[:1]); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	got, _ = templates.List()
	if len(got) != 1 || got[0].Label != "A" {
		t.Errorf("after replace got %+v", got)
	}

	if err := templates.Replace(nil); err == nil {
		t.Error("Replace(nil) should fail")
	}
}
