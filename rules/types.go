// Package rules evaluates expressions against a config so derived values can be
// computed from other options. Three engines are available: expr-lang/expr
// (default), cel-go and goja (behind the js_eval build tag).
package rules

import (
	"maps"
	"time"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/bridge"
)

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	// Config is exposed to expressions through its host values and through
	// the abs map of resolved numeric values.
	Config confval.Config
	// Snapshot overrides the host values taken from Config.
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Key names the option the expression computes, if any.
	Key string
}

// reserved names are bound by every engine and shadow snapshot keys.
var reserved = map[string]struct{}{
	"now":      {},
	"args":     {},
	"metadata": {},
	"abs":      {},
	"call":     {},
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

// withDefaultSnapshot fills Snapshot from Config. Keys that fail to convert are
// left out.
func (ctx RuleContext) withDefaultSnapshot() RuleContext {
	if ctx.Snapshot != nil || ctx.Config == nil {
		return ctx
	}
	snapshot := make(map[string]any)
	for _, key := range ctx.Config.Keys() {
		if value, err := bridge.Get(ctx.Config, key); err == nil {
			snapshot[key] = value
		}
	}
	ctx.Snapshot = snapshot
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps().withDefaultSnapshot()
}

// absValues resolves every numeric option of Config. Keys whose absolute value
// cannot be computed are omitted.
func (ctx RuleContext) absValues() map[string]any {
	out := map[string]any{}
	if ctx.Config == nil {
		return out
	}
	for _, key := range ctx.Config.Keys() {
		if value, err := confval.GetAbsValue(ctx.Config, key); err == nil {
			out[key] = value
		}
	}
	return out
}

// variables returns the snapshot keys that do not collide with reserved or
// registered function names.
func (ctx RuleContext) variables(functions []string) map[string]any {
	out := maps.Clone(ctx.Snapshot)
	if out == nil {
		out = map[string]any{}
	}
	for name := range reserved {
		delete(out, name)
	}
	for _, name := range functions {
		delete(out, name)
	}
	return out
}

func (ctx RuleContext) keyLabel() string {
	if ctx.Key != "" {
		return ctx.Key
	}
	return "-"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}
