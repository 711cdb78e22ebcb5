package confval

import (
	"errors"
	"fmt"
	"testing"
)

func newLayerConfig(t *testing.T, reg *Registry, values map[string]string) *DynamicConfig {
	t.Helper()
	cfg := NewDynamicConfig(reg)
	for key, value := range values {
		mustSet(t, cfg, key, value)
	}
	return cfg
}

func TestNewScopeCopiesMetadata(t *testing.T) {
	meta := map[string]any{"owner": "vendor"}
	scope := NewScope("printer", ScopePriorityPrinter,
		WithScopeLabel("Printer Settings"),
		WithScopeMetadata(meta),
	)

	meta["owner"] = "mutated"

	if got := scope.Metadata["owner"]; got != "vendor" {
		t.Fatalf("expected metadata copy to remain 'vendor', got %q", got)
	}
	if scope.Label != "Printer Settings" {
		t.Fatalf("label not set, got %q", scope.Label)
	}
}

func TestNewLayerClonesConfig(t *testing.T) {
	reg := newPrintRegistry(t)
	cfg := newLayerConfig(t, reg, map[string]string{"layer_height": "0.2"})

	layer := NewLayer(NewScope("print", ScopePriorityPrint), cfg, WithSnapshotID("abc-123"))

	mustSet(t, cfg, "layer_height", "0.3")
	if got, _ := layer.Config.Serialize("layer_height"); got != "0.2" {
		t.Fatalf("expected layer config to remain immutable; got %q", got)
	}
	if layer.SnapshotID != "abc-123" {
		t.Fatalf("snapshot id not set, got %q", layer.SnapshotID)
	}
}

func TestNewStackOrdersAndValidates(t *testing.T) {
	reg := newPrintRegistry(t)
	printLayer := NewLayer(NewScope("print", 300), NewDynamicConfig(reg))
	filament := NewLayer(NewScope("filament", 200), NewDynamicConfig(reg))
	defaults := NewLayer(NewScope("defaults", 100), NewDynamicConfig(reg))

	stack, err := NewStack(defaults, printLayer, filament)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	layers := stack.Layers()
	wantOrder := []string{"print", "filament", "defaults"}
	for i, want := range wantOrder {
		if layers[i].Scope.Name != want {
			t.Fatalf("expected layer %d to be %q, got %q", i, want, layers[i].Scope.Name)
		}
	}

	if _, err := NewStack(printLayer, NewLayer(NewScope("print", 50), nil)); !errors.Is(err, ErrDuplicateScopeName) {
		t.Fatalf("expected duplicate scope name error, got %v", err)
	}
	if _, err := NewStack(
		NewLayer(NewScope("alpha", 100), nil),
		NewLayer(NewScope("beta", 100), nil),
	); !errors.Is(err, ErrPriorityOrder) {
		t.Fatalf("expected priority order error, got %v", err)
	}
	if _, err := NewStack(NewLayer(NewScope("", 1), nil)); !errors.Is(err, ErrScopeNameRequired) {
		t.Fatalf("expected scope name error, got %v", err)
	}
}

func TestStackMergeStrongestWins(t *testing.T) {
	reg := newPrintRegistry(t)
	defaults := newLayerConfig(t, reg, map[string]string{
		"layer_height": "0.3",
		"perimeters":   "2",
		"notes":        "defaults",
	})
	printer := newLayerConfig(t, reg, map[string]string{"nozzle_diameter": "0.6"})
	printCfg := newLayerConfig(t, reg, map[string]string{
		"layer_height":    "0.15",
		"extrusion_width": "150%",
	})

	merged, err := DefaultsPrinterFilamentPrint(reg, defaults, printer, nil, printCfg)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	checks := map[string]string{
		"layer_height":    "0.15",
		"perimeters":      "2",
		"notes":           "defaults",
		"nozzle_diameter": "0.6",
		"extrusion_width": "150%",
	}
	for key, want := range checks {
		if got, err := merged.Serialize(key); err != nil || got != want {
			t.Fatalf("expected %s=%q, got %q (%v)", key, want, got, err)
		}
	}
	if got, err := merged.GetAbsValue("extrusion_width"); err != nil || !approxEqual(got, 0.9) {
		t.Fatalf("expected merged ratio to resolve against printer nozzle, got %v (%v)", got, err)
	}
}

func TestStackMergeSkipsForeignKeys(t *testing.T) {
	wide := newPrintRegistry(t)
	narrow := MustNewRegistry(OptionDef{Key: "layer_height", Type: TypeFloat})

	stack, err := NewStack(
		NewLayer(NewScope("print", ScopePriorityPrint), newLayerConfig(t, wide, map[string]string{
			"layer_height": "0.1",
			"perimeters":   "4",
		})),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	var merges []string
	merged, err := stack.Merge(narrow, WithLogger(LoggerFunc(func(event OperationLogEvent) {
		if event.Op == OpMerge {
			merges = append(merges, event.Key)
		}
	})))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.Has("perimeters") {
		t.Fatalf("expected key outside the registry to be skipped")
	}
	if len(merges) != 1 || merges[0] != "print" {
		t.Fatalf("expected one merge event, got %v", merges)
	}

	if _, err := (&Stack{}).Merge(narrow); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected ErrEmptyStack, got %v", err)
	}
}

func TestStackTrace(t *testing.T) {
	reg := newPrintRegistry(t)
	stack, err := NewStack(
		NewLayer(NewScope("defaults", ScopePriorityDefaults), newLayerConfig(t, reg, map[string]string{"perimeters": "2"}), WithSnapshotID("snap-1")),
		NewLayer(NewScope("printer", ScopePriorityPrinter), newLayerConfig(t, reg, nil)),
		NewLayer(NewScope("print", ScopePriorityPrint), newLayerConfig(t, reg, map[string]string{"perimeters": "5"})),
	)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	trace := stack.Trace("perimeters")
	if len(trace.Layers) != 3 {
		t.Fatalf("expected 3 provenance entries, got %d", len(trace.Layers))
	}
	effective, ok := trace.Effective()
	if !ok || effective.Scope.Name != "print" || effective.Value != "5" {
		t.Fatalf("expected print scope to win, got %+v", effective)
	}
	if trace.Layers[1].Found {
		t.Fatalf("expected printer layer to miss")
	}
	if trace.Layers[2].SnapshotID != "snap-1" || trace.Layers[2].Value != "2" {
		t.Fatalf("unexpected defaults provenance %+v", trace.Layers[2])
	}

	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if decoded.Key != "perimeters" || len(decoded.Layers) != 3 || decoded.Layers[0].Value != "5" {
		t.Fatalf("unexpected decoded trace %+v", decoded)
	}

	if _, ok := stack.Trace("notes").Effective(); ok {
		t.Fatalf("expected no effective layer for an unset key")
	}
}

func BenchmarkStackMerge(b *testing.B) {
	reg := MustNewRegistry(
		OptionDef{Key: "layer_height", Type: TypeFloat},
		OptionDef{Key: "perimeters", Type: TypeInt},
		OptionDef{Key: "bed_shape", Type: TypePoints},
	)
	layers := make([]Layer, 10)
	for i := range layers {
		cfg := NewDynamicConfig(reg)
		_ = cfg.SetDeserialize("layer_height", fmt.Sprintf("0.%d", i+1))
		_ = cfg.SetDeserialize("perimeters", fmt.Sprint(i))
		_ = cfg.SetDeserialize("bed_shape", "0x0,200x0,200x200,0x200")
		layers[i] = NewLayer(NewScope(fmt.Sprintf("layer_%d", i), 100-i), cfg)
	}
	stack, err := NewStack(layers...)
	if err != nil {
		b.Fatalf("stack: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := stack.Merge(reg); err != nil {
			b.Fatalf("merge: %v", err)
		}
	}
}
