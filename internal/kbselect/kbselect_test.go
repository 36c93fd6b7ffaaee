package kbselect

import (
	"reflect"
	"testing"

	"scout-tui/internal/domain"
)

func listing(ids ...string) []domain.KnowledgeBase {
	out := make([]domain.KnowledgeBase, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.KnowledgeBase{ID: id, Name: "kb " + id})
	}
	return out
}

func TestMergeDefaultsUnseenToInactive(t *testing.T) {
	sel := Selection{{ID: "a", Active: true}, {ID: "b", Active: false}}
	in := listing("a", "b", "c")

	got := Merge(in, sel)
	want := []bool{true, false, false}
	for i, kb := range got {
		if kb.Active != want[i] {
			t.Fatalf("kb %s active=%v, want %v", kb.ID, kb.Active, want[i])
		}
	}
	for _, kb := range in {
		if kb.Active {
			t.Fatalf("Merge mutated the listing: %+v", kb)
		}
	}
}

func TestSetAppendsUnseen(t *testing.T) {
	sel := Selection{{ID: "a", Active: false}}
	next := sel.Set("a", true).Set("b", true)

	want := Selection{{ID: "a", Active: true}, {ID: "b", Active: true}}
	if !reflect.DeepEqual(next, want) {
		t.Fatalf("got %+v, want %+v", next, want)
	}
	if sel[0].Active {
		t.Fatal("Set mutated the receiver")
	}
}

func TestActiveIDs(t *testing.T) {
	sel := Selection{{ID: "a", Active: true}, {ID: "b"}, {ID: "c", Active: true}, {ID: "", Active: true}}
	got := sel.ActiveIDs()
	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("got %v", got)
	}
	if ids := (Selection{}).ActiveIDs(); len(ids) != 0 {
		t.Fatalf("expected no ids, got %v", ids)
	}
}

func TestSyncUnionsListingsAndKeepsFlags(t *testing.T) {
	sel := Selection{{ID: "gone", Active: true}, {ID: "b", Active: true}}
	got := Sync(sel, listing("a", "b"), listing("b", "c"), listing("p"))

	want := Selection{{ID: "a"}, {ID: "b", Active: true}, {ID: "c"}, {ID: "p"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestToggle(t *testing.T) {
	kb := domain.KnowledgeBase{ID: "a"}
	sel, kb := Toggle(nil, kb)
	if !kb.Active || !sel.IsActive("a") {
		t.Fatalf("expected a active, got %+v / %+v", kb, sel)
	}
	sel, kb = Toggle(sel, kb)
	if kb.Active || sel.IsActive("a") {
		t.Fatalf("expected a inactive, got %+v / %+v", kb, sel)
	}
}
