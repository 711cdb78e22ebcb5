package activity

import (
	"testing"

	"github.com/goliatone/go-confval"
)

func TestBuildOptionUpdatedEventIncludesScopeMetadata(t *testing.T) {
	meta := map[string]any{"source": "ui"}
	scopeMeta := map[string]any{"vendor": "prusa"}
	input := OptionEventInput{
		ActorID:    " actor ",
		TenantID:   " tenant ",
		Key:        "layer_height",
		Metadata:   meta,
		Scope:      ScopeContext{Name: "print", Label: "Print Settings", Priority: 400, Metadata: scopeMeta, SnapshotID: "snap-1"},
		OldValue:   "0.3",
		NewValue:   "0.2",
		Recipients: []string{"ops@example.com"},
	}

	event := BuildOptionUpdatedEvent(input)

	if event.Verb != VerbOptionUpdated || event.ObjectType != ObjectOption || event.ObjectID != "layer_height" {
		t.Fatalf("unexpected event fields: %+v", event)
	}
	if event.ActorID != "actor" || event.TenantID != "tenant" {
		t.Fatalf("unexpected identity fields: %+v", event)
	}
	want := map[string]any{
		"source":         "ui",
		"key":            "layer_height",
		"scope_name":     "print",
		"scope_priority": 400,
		"scope_label":    "Print Settings",
		"snapshot_id":    "snap-1",
		"old_value":      "0.3",
		"new_value":      "0.2",
	}
	for key, value := range want {
		if event.Metadata[key] != value {
			t.Fatalf("expected metadata %s=%v, got %v", key, value, event.Metadata[key])
		}
	}
	if scoped, ok := event.Metadata["scope_metadata"].(map[string]any); !ok || scoped["vendor"] != "prusa" {
		t.Fatalf("expected scope metadata copy, got %v", event.Metadata["scope_metadata"])
	}
	if _, ok := meta["key"]; ok {
		t.Fatalf("expected input metadata untouched")
	}
}

func TestBuildEventsObjectIDFallbacks(t *testing.T) {
	if id := BuildOptionErasedEvent(OptionEventInput{}).ObjectID; id != ObjectOption {
		t.Fatalf("expected fallback to object type, got %q", id)
	}
	layer := BuildLayerAppliedEvent(OptionEventInput{Key: "ignored", Scope: ScopeContext{Name: "filament", SnapshotID: "snap-9"}})
	if layer.ObjectType != ObjectLayer || layer.ObjectID != "snap-9" {
		t.Fatalf("expected snapshot id for layer event, got %+v", layer)
	}
	saved := BuildSnapshotSavedEvent(OptionEventInput{ObjectID: "explicit", Scope: ScopeContext{SnapshotID: "snap-9"}})
	if saved.ObjectID != "explicit" || saved.Verb != VerbSnapshotSaved {
		t.Fatalf("expected explicit object id, got %+v", saved)
	}
}

func TestScopeFromLayer(t *testing.T) {
	layer := confval.NewLayer(
		confval.NewScope("printer", confval.ScopePriorityPrinter, confval.WithScopeLabel("Printer")),
		nil,
		confval.WithSnapshotID("abc"),
	)
	scope := ScopeFromLayer(layer)
	if scope.Name != "printer" || scope.Priority != confval.ScopePriorityPrinter || scope.Label != "Printer" || scope.SnapshotID != "abc" {
		t.Fatalf("unexpected scope context %+v", scope)
	}
}
