package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/pkg/activity"
)

// Resolver loads scoped snapshots and merges them into a single config.
type Resolver struct {
	Store    Store
	Registry *confval.Registry
	// Emitter receives option and snapshot events from Mutate. Optional.
	Emitter *activity.Emitter
	// Validate runs on a mutated config before it is saved. Optional.
	Validate func(*confval.DynamicConfig) error
	// ConfigOptions are applied to every config the resolver builds.
	ConfigOptions []confval.ConfigOption
	NewID         func() string
	Clock         func() time.Time
}

// Mutator edits the config of one scope.
type Mutator func(*confval.DynamicConfig) error

// Resolved is a merged config together with the stack it was merged from.
type Resolved struct {
	Config *confval.DynamicConfig
	Stack  *confval.Stack
}

// Trace reports which layers set key.
func (r *Resolved) Trace(key string) confval.Trace {
	return r.Stack.Trace(key)
}

func (r Resolver) check(domain string) error {
	if r.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	if r.Registry == nil {
		return fmt.Errorf("state: registry is required")
	}
	if domain == "" {
		return fmt.Errorf("state: domain is required")
	}
	return nil
}

// Resolve merges the stored snapshots of scopes for domain. Scopes without a
// stored snapshot are skipped; ErrNoLayers is returned when none has one.
func (r Resolver) Resolve(ctx context.Context, domain string, scopes ...confval.Scope) (*Resolved, error) {
	if err := r.check(domain); err != nil {
		return nil, err
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("state: at least one scope is required")
	}

	layers, err := r.loadLayers(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w for domain %q", ErrNoLayers, domain)
	}
	return r.merge(layers)
}

// ResolveWithDefaults is Resolve with an extra "defaults" layer holding every
// registry default, placed below the weakest requested scope.
func (r Resolver) ResolveWithDefaults(ctx context.Context, domain string, scopes ...confval.Scope) (*Resolved, error) {
	if err := r.check(domain); err != nil {
		return nil, err
	}

	used := make(map[int]struct{}, len(scopes))
	weakest := 0
	for i, scope := range scopes {
		if scope.Name == DefaultsScopeName {
			return nil, fmt.Errorf("state: scope name %q is reserved", DefaultsScopeName)
		}
		used[scope.Priority] = struct{}{}
		if i == 0 || scope.Priority < weakest {
			weakest = scope.Priority
		}
	}
	priority := weakest - 1
	if len(scopes) == 0 {
		priority = confval.ScopePriorityDefaults
	}
	for {
		if _, taken := used[priority]; !taken {
			break
		}
		priority--
	}

	layers, err := r.loadLayers(ctx, domain, scopes)
	if err != nil {
		return nil, err
	}
	defaultsScope := confval.NewScope(DefaultsScopeName, priority, confval.WithScopeLabel("Defaults"))
	layers = append(layers, confval.NewLayer(defaultsScope, RegistryDefaults(r.Registry)))
	return r.merge(layers)
}

// Mutate loads the snapshot at ref, applies fn to its config and saves the
// result under a new snapshot id. A non-empty meta.ETag must match the stored
// one. When an Emitter is set, one event per changed key and a snapshot event
// are emitted after the save; an emission failure is returned together with
// the saved config and meta.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (*confval.DynamicConfig, Meta, error) {
	if err := r.check(ref.Domain); err != nil {
		return nil, Meta{}, err
	}
	if ref.Scope.Name == "" {
		return nil, Meta{}, fmt.Errorf("state: scope name is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	snapshot, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	if !ok {
		snapshot, loadedMeta = Snapshot{}, Meta{}
	}
	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	before, err := Hydrate(r.Registry, snapshot, true)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: hydrate %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	cfg := confval.NewDynamicConfig(r.Registry, r.ConfigOptions...)
	if err := cfg.Apply(before, true); err != nil {
		return nil, loadedMeta, err
	}
	if err := fn(cfg); err != nil {
		return nil, loadedMeta, err
	}
	if r.Validate != nil {
		if err := r.Validate(cfg); err != nil {
			return nil, loadedMeta, err
		}
	}
	after, err := Capture(cfg)
	if err != nil {
		return nil, loadedMeta, err
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.SnapshotID = r.newID()
	saveMeta.UpdatedAt = r.now()
	savedMeta, err := r.Store.Save(ctx, ref, after, saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}

	if err := r.emitChanges(ctx, ref, savedMeta, before, cfg); err != nil {
		return cfg, savedMeta, fmt.Errorf("state: emit: %w", err)
	}
	return cfg, savedMeta, nil
}

func (r Resolver) emitChanges(ctx context.Context, ref Ref, meta Meta, before, after *confval.DynamicConfig) error {
	if !r.Emitter.Enabled() {
		return nil
	}
	scope := activity.ScopeContext{
		Name:       ref.Scope.Name,
		Label:      ref.Scope.Label,
		Priority:   ref.Scope.Priority,
		Metadata:   ref.Scope.Metadata,
		SnapshotID: meta.SnapshotID,
	}
	actor := meta.Extra["actor_id"]

	for _, key := range before.Diff(after) {
		input := activity.OptionEventInput{
			ActorID:    actor,
			Key:        key,
			OldValue:   serialized(before, key),
			NewValue:   serialized(after, key),
			Scope:      scope,
			OccurredAt: meta.UpdatedAt,
		}
		event := activity.BuildOptionUpdatedEvent(input)
		if input.NewValue == nil {
			event = activity.BuildOptionErasedEvent(input)
		}
		if err := r.Emitter.Emit(ctx, event); err != nil {
			return err
		}
	}
	return r.Emitter.Emit(ctx, activity.BuildSnapshotSavedEvent(activity.OptionEventInput{
		ActorID:    actor,
		Metadata:   map[string]any{"domain": ref.Domain},
		Scope:      scope,
		OccurredAt: meta.UpdatedAt,
	}))
}

func (r Resolver) loadLayers(ctx context.Context, domain string, scopes []confval.Scope) ([]confval.Layer, error) {
	layers := make([]confval.Layer, 0, len(scopes)+1)
	for _, scope := range scopes {
		snapshot, meta, ok, err := r.Store.Load(ctx, Ref{Domain: domain, Scope: scope})
		if err != nil {
			return nil, fmt.Errorf("state: load %q for scope %q: %w", domain, scope.Name, err)
		}
		if !ok {
			continue
		}
		cfg, err := Hydrate(r.Registry, snapshot, true)
		if err != nil {
			return nil, fmt.Errorf("state: hydrate %q for scope %q: %w", domain, scope.Name, err)
		}
		layers = append(layers, confval.NewLayer(scope, cfg, confval.WithSnapshotID(meta.SnapshotID)))
	}
	return layers, nil
}

func (r Resolver) merge(layers []confval.Layer) (*Resolved, error) {
	stack, err := confval.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	merged, err := stack.Merge(r.Registry, r.ConfigOptions...)
	if err != nil {
		return nil, err
	}
	return &Resolved{Config: merged, Stack: stack}, nil
}

func (r Resolver) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}

func (r Resolver) now() time.Time {
	if r.Clock != nil {
		return r.Clock()
	}
	return time.Now().UTC()
}

// RegistryDefaults returns a config holding every key of reg that declares a
// default.
func RegistryDefaults(reg *confval.Registry) *confval.DynamicConfig {
	cfg := confval.NewDynamicConfig(reg)
	for _, def := range reg.Definitions() {
		if def.Default == "" {
			continue
		}
		// Defaults are validated by NewRegistry.
		_, _ = cfg.Option(def.Key, true)
	}
	return cfg
}

// serialized returns the text of key, or nil when c does not hold it.
func serialized(c confval.Config, key string) any {
	text, err := confval.Serialize(c, key)
	if err != nil {
		return nil
	}
	return text
}

func mergeMeta(base, override Meta) Meta {
	out := base.clone()
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
