package confval

import (
	"errors"
	"slices"
	"testing"
)

func TestDynamicConfigCreatesLazily(t *testing.T) {
	cfg := NewDynamicConfig(newPrintRegistry(t))

	if cfg.Len() != 0 || cfg.Has("perimeters") {
		t.Fatalf("expected empty config")
	}
	if _, err := cfg.Option("perimeters", false); !errors.Is(err, ErrOptionNotSet) {
		t.Fatalf("expected ErrOptionNotSet, got %v", err)
	}
	if _, err := cfg.Option("nope", true); !errors.Is(err, ErrUndefinedKey) {
		t.Fatalf("expected ErrUndefinedKey, got %v", err)
	}

	opt, err := cfg.Option("perimeters", true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if opt.(*Int).Value != 3 {
		t.Fatalf("expected created option to carry default 3, got %d", opt.(*Int).Value)
	}
	again, _ := cfg.Option("perimeters", true)
	if again != opt {
		t.Fatalf("expected the stored option to be returned on second lookup")
	}
	if got := cfg.Keys(); !slices.Equal(got, []string{"perimeters"}) {
		t.Fatalf("unexpected keys %v", got)
	}
}

func TestDynamicConfigEraseAndClone(t *testing.T) {
	var events []OperationLogEvent
	logger := LoggerFunc(func(event OperationLogEvent) { events = append(events, event) })

	cfg := NewDynamicConfig(newPrintRegistry(t), WithLogger(logger))
	if err := cfg.SetDeserialize("layer_height", "0.3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cfg.SetDeserialize("bed_shape", "0x0,10x10"); err != nil {
		t.Fatalf("set: %v", err)
	}

	clone := cfg.Clone()
	mustSet(t, clone, "layer_height", "0.1")
	if got, _ := cfg.Serialize("layer_height"); got != "0.3" {
		t.Fatalf("expected clone writes not to leak, got %q", got)
	}

	if !cfg.Erase("layer_height") {
		t.Fatalf("expected erase to report a removed key")
	}
	if cfg.Erase("layer_height") {
		t.Fatalf("expected second erase to be a no-op")
	}
	if cfg.Has("layer_height") || !clone.Has("layer_height") {
		t.Fatalf("expected erase to affect only the original")
	}

	var ops []string
	for _, event := range events {
		ops = append(ops, event.Op+":"+event.Key)
	}
	want := []string{"set:layer_height", "set:bed_shape", "erase:layer_height"}
	if !slices.Equal(ops, want) {
		t.Fatalf("expected logged ops %v, got %v", want, ops)
	}
}

func TestDynamicConfigDiff(t *testing.T) {
	reg := newPrintRegistry(t)
	a := NewDynamicConfig(reg)
	mustSet(t, a, "layer_height", "0.2")
	mustSet(t, a, "perimeters", "3")
	mustSet(t, a, "notes", "only in a")

	b := NewDynamicConfig(reg)
	mustSet(t, b, "layer_height", "0.25")
	mustSet(t, b, "perimeters", "3")
	mustSet(t, b, "bed_shape", "0x0")

	got := a.Diff(b)
	want := []string{"bed_shape", "layer_height", "notes"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected diff %v, got %v", want, got)
	}
	if diff := a.Diff(a.Clone()); len(diff) != 0 {
		t.Fatalf("expected no diff against clone, got %v", diff)
	}
}

func TestDynamicConfigLogsApplySkips(t *testing.T) {
	narrow := MustNewRegistry(OptionDef{Key: "layer_height", Type: TypeFloat})
	var skipped []string
	dst := NewDynamicConfig(narrow, WithLogger(LoggerFunc(func(event OperationLogEvent) {
		if event.Skipped {
			skipped = append(skipped, event.Key)
		}
	})))

	src := NewDynamicConfig(newPrintRegistry(t))
	mustSet(t, src, "layer_height", "0.2")
	mustSet(t, src, "perimeters", "2")

	if err := dst.Apply(src, true); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !slices.Equal(skipped, []string{"perimeters"}) {
		t.Fatalf("expected perimeters skipped, got %v", skipped)
	}
	if got, _ := dst.Serialize("layer_height"); got != "0.2" {
		t.Fatalf("expected layer_height applied, got %q", got)
	}
}
