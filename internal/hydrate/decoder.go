// Package hydrate turns JSON payloads, such as preset bodies posted by a UI,
// into configs.
package hydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/bridge"
)

// Context carries identifiers tied to a payload.
type Context struct {
	Source string
	Scope  string
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers adjust or validate the hydrated config.
type PostHook func(Context, confval.Config) error

// CustomDecoder replaces the default key-by-key decoding when provided.
type CustomDecoder func(Context, map[string]any, confval.Config) error

// DecoderOption configures a Decoder instance.
type DecoderOption func(*Decoder)

// Decoder writes payload values into configs through the bridge coercions.
type Decoder struct {
	preHooks      []PreHook
	postHooks     []PostHook
	custom        CustomDecoder
	useNumber     bool
	ignoreUnknown bool
	configOptions []confval.ConfigOption
}

// WithPreHook applies hook prior to decoding.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithUseNumber keeps JSON numbers as json.Number so integers wider than a
// float64 mantissa survive.
func WithUseNumber() DecoderOption {
	return func(d *Decoder) {
		d.useNumber = true
	}
}

// WithIgnoreUnknownKeys skips payload keys the config cannot hold.
func WithIgnoreUnknownKeys() DecoderOption {
	return func(d *Decoder) {
		d.ignoreUnknown = true
	}
}

// WithCustomDecoder replaces the default decoding path.
func WithCustomDecoder(decoder CustomDecoder) DecoderOption {
	return func(d *Decoder) {
		d.custom = decoder
	}
}

// WithConfigOptions sets the options of configs created by Decode.
func WithConfigOptions(opts ...confval.ConfigOption) DecoderOption {
	return func(d *Decoder) {
		d.configOptions = append(d.configOptions, opts...)
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode hydrates a new dynamic config backed by reg from payload.
func (d *Decoder) Decode(ctx Context, reg *confval.Registry, payload map[string]any) (*confval.DynamicConfig, error) {
	cfg := confval.NewDynamicConfig(reg, d.configOptions...)
	if err := d.DecodeInto(ctx, payload, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeJSON parses data as a JSON object and decodes it into c.
func (d *Decoder) DecodeJSON(ctx Context, data []byte, c confval.Config) error {
	var payload map[string]any
	if err := d.unmarshal(data, &payload); err != nil {
		return fmt.Errorf("hydrate: parse payload for %q: %w", ctx.Source, err)
	}
	return d.DecodeInto(ctx, payload, c)
}

// DecodeInto writes payload into c applying the configured hooks. The payload
// is copied first, so hooks may mutate it freely.
func (d *Decoder) DecodeInto(ctx Context, payload map[string]any, c confval.Config) error {
	if payload == nil {
		return fmt.Errorf("hydrate: payload is nil for %q", ctx.Source)
	}
	current, err := d.clonePayload(payload)
	if err != nil {
		return fmt.Errorf("hydrate: clone payload for %q: %w", ctx.Source, err)
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return fmt.Errorf("hydrate: pre-hook for %q failed: %w", ctx.Source, err)
		}
		if next != nil {
			current = next
		}
	}

	if d.custom != nil {
		if err := d.custom(ctx, current, c); err != nil {
			return fmt.Errorf("hydrate: custom decoder for %q failed: %w", ctx.Source, err)
		}
	} else if err := d.assign(current, c); err != nil {
		return fmt.Errorf("hydrate: decode %q: %w", ctx.Source, err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, c); err != nil {
			return fmt.Errorf("hydrate: post-hook for %q failed: %w", ctx.Source, err)
		}
	}
	return nil
}

func (d *Decoder) assign(payload map[string]any, c confval.Config) error {
	for _, key := range slices.Sorted(maps.Keys(payload)) {
		err := bridge.Set(c, key, payload[key])
		if err != nil && d.ignoreUnknown && errors.Is(err, confval.ErrUndefinedKey) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) clonePayload(payload map[string]any) (map[string]any, error) {
	buffer, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := d.unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Decoder) unmarshal(data []byte, out *map[string]any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if d.useNumber {
		dec.UseNumber()
	}
	return dec.Decode(out)
}
