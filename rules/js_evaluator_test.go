//go:build js_eval

package rules_test

import (
	"testing"

	"github.com/goliatone/go-confval/rules"
)

func TestJSEvaluator(t *testing.T) {
	if !rules.JSEvaluatorAvailable() {
		t.Fatalf("expected js evaluator to be available with js_eval")
	}
	engine, err := rules.NewEngine(rules.WithEvaluator(rules.NewJSEvaluator(
		rules.JSWithProgramCache(rules.NewMemoryProgramCache()),
	)))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	cfg := newConfig(t)

	resp, err := engine.Evaluate(cfg, "gcode_flavor === 'mach3' && perimeters > 2")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if resp.Value != true {
		t.Fatalf("expected true, got %v", resp.Value)
	}

	if err := engine.Derive(cfg, "top_solid_layers", "Math.ceil(abs.first_layer_height / layer_height) + perimeters"); err != nil {
		t.Fatalf("derive: %v", err)
	}
	if got, _ := cfg.Serialize("top_solid_layers"); got != "5" {
		t.Fatalf("expected 5, got %q", got)
	}
}
