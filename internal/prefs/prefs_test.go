package prefs

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"scout-tui/internal/kbselect"
	"scout-tui/internal/state"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestThemeDefaultsToDark(t *testing.T) {
	s, _ := openTemp(t)
	got, err := s.Theme(context.Background())
	if err != nil {
		t.Fatalf("theme: %v", err)
	}
	if got != state.ThemeDark {
		t.Fatalf("theme=%q, want dark", got)
	}
}

func TestThemeRoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	if err := s.SetTheme(ctx, state.ThemeLight); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	_ = s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Theme(ctx)
	if err != nil {
		t.Fatalf("theme: %v", err)
	}
	if got != state.ThemeLight {
		t.Fatalf("theme=%q, want light", got)
	}
}

func TestUnknownThemeValueReadsDark(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	if err := s.Set(ctx, "theme-mode", "solarized"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := s.Theme(ctx); got != state.ThemeDark {
		t.Fatalf("theme=%q, want dark", got)
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	empty, err := s.Selection(ctx)
	if err != nil {
		t.Fatalf("selection: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty selection, got %+v", empty)
	}

	want := kbselect.Selection{{ID: "kb1", Active: true}, {ID: "kb2"}}
	if err := s.SaveSelection(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Selection(ctx)
	if err != nil {
		t.Fatalf("selection: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	raw, _, _ := s.Get(ctx, "kbs")
	if raw != `[{"id":"kb1","active":true},{"id":"kb2","active":false}]` {
		t.Fatalf("unexpected stored form %s", raw)
	}
}

func TestCorruptSelectionReadsEmpty(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	if err := s.Set(ctx, "kbs", "{not json"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Selection(ctx)
	if err != nil {
		t.Fatalf("selection: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
}
