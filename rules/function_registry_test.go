package rules

import (
	"slices"
	"strings"
	"testing"
)

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	double := func(args ...any) (any, error) { return args[0].(float64) * 2, nil }

	if err := registry.Register("Double", double); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("double", double); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := registry.Register("abs", double); err == nil || !strings.Contains(err.Error(), "reserved") {
		t.Fatalf("expected reserved name to be rejected, got %v", err)
	}
	if err := registry.Register("", double); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := registry.Register("nil", nil); err == nil {
		t.Fatalf("expected nil function to fail")
	}

	got, err := registry.Call("DOUBLE", 1.5)
	if err != nil || got != 3.0 {
		t.Fatalf("expected 3, got %v (%v)", got, err)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected missing function to fail")
	}

	clone := registry.Clone()
	_ = clone.Register("triple", double)
	if slices.Contains(registry.Names(), "triple") {
		t.Fatalf("expected clone registrations not to leak")
	}
	if !slices.Equal(clone.Names(), []string{"double", "triple"}) {
		t.Fatalf("unexpected clone names %v", clone.Names())
	}

	var nilRegistry *FunctionRegistry
	if nilRegistry.Names() != nil || nilRegistry.Clone() != nil {
		t.Fatalf("expected nil registry helpers to be nil-safe")
	}
	if _, err := nilRegistry.Call("double"); err == nil {
		t.Fatalf("expected call on nil registry to fail")
	}
}
