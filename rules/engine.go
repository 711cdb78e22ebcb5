package rules

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/bridge"
)

var ErrNoEvaluator = errors.New("rules: evaluator not configured")

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
}

func applyOptions(opts []Option) engineConfig {
	cfg := engineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator selects the evaluator. The default is an expr evaluator built
// from the configured cache and functions.
func WithEvaluator(evaluator Evaluator) Option {
	return func(cfg *engineConfig) {
		cfg.evaluator = evaluator
	}
}

// WithProgramCache registers a program cache used by the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *engineConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry configures the engine to use registry.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *engineConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the engine.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *engineConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// WithEvaluatorLogger attaches an evaluator logger to the engine.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *engineConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

// Engine evaluates expressions against configs.
type Engine struct {
	cfg engineConfig
}

// NewEngine builds an Engine. It fails only when no evaluator can be built.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{cfg: applyOptions(opts)}
	if e.cfg.evaluator == nil {
		var exprOpts []ExprEvaluatorOption
		if e.cfg.programCache != nil {
			exprOpts = append(exprOpts, ExprWithProgramCache(e.cfg.programCache))
		}
		if e.cfg.functions != nil {
			exprOpts = append(exprOpts, ExprWithFunctionRegistry(e.cfg.functions))
		}
		e.cfg.evaluator = NewExprEvaluator(exprOpts...)
	}
	if e.cfg.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	return e, nil
}

func (e *Engine) logger() EvaluatorLogger {
	if e.cfg.logger != nil {
		return e.cfg.logger
	}
	return noopEvaluatorLogger{}
}

// Evaluate executes expr against cfg.
func (e *Engine) Evaluate(cfg confval.Config, expr string) (Response[any], error) {
	return e.EvaluateWith(RuleContext{Config: cfg}, expr)
}

// EvaluateWith executes expr using ctx.
func (e *Engine) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, fmt.Errorf("rules: expression must not be empty")
	}
	ctx = ctx.withDefaults()
	engine := evaluatorEngineName(e.cfg.evaluator)
	start := time.Now()
	value, evalErr := e.cfg.evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError(engine, expr, ctx.keyLabel(), evalErr)
	e.logger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Key:      ctx.keyLabel(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return Response[any]{}, evalErr
	}
	return Response[any]{Value: value}, nil
}

// Derive evaluates expr against cfg and stores the result under key, converting
// it with the bridge rules for the key's option type.
func (e *Engine) Derive(cfg confval.Config, key, expr string) error {
	resp, err := e.EvaluateWith(RuleContext{Config: cfg, Key: key}, expr)
	if err != nil {
		return err
	}
	if err := bridge.Set(cfg, key, resp.Value); err != nil {
		return wrapEvaluationError(evaluatorEngineName(e.cfg.evaluator), expr, key, err)
	}
	return nil
}

// Rule pairs a target key with the expression that computes it.
type Rule struct {
	Key  string
	Expr string
}

// DeriveAll runs rules in order, so later rules observe values derived by
// earlier ones. It stops at the first failure.
func (e *Engine) DeriveAll(cfg confval.Config, rules ...Rule) error {
	for _, rule := range rules {
		if err := e.Derive(cfg, rule.Key, rule.Expr); err != nil {
			return err
		}
	}
	return nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*rules.exprEvaluator":
		return "expr"
	case "*rules.celEvaluator":
		return "cel"
	case "*rules.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
