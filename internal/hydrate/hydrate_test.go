package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/bridge"
)

func newRegistry(t *testing.T) *confval.Registry {
	t.Helper()
	reg, err := confval.NewRegistry(
		confval.OptionDef{Key: "layer_height", Type: confval.TypeFloat},
		confval.OptionDef{Key: "perimeters", Type: confval.TypeInt},
		confval.OptionDef{Key: "bed_shape", Type: confval.TypePoints},
		confval.OptionDef{Key: "temperature", Type: confval.TypeInts},
		confval.OptionDef{Key: "notes", Type: confval.TypeString},
		confval.OptionDef{Key: "gcode_flavor", Type: confval.TypeEnum, EnumValues: confval.SymbolTable{"reprap": 0, "teacup": 1}},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func serializeAll(t *testing.T, c confval.Config) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, key := range c.Keys() {
		text, err := confval.Serialize(c, key)
		if err != nil {
			t.Fatalf("serialize %s: %v", key, err)
		}
		out[key] = text
	}
	return out
}

// bedSizePreHook expands a "bed_size": "WxH" shorthand into a rectangle.
func bedSizePreHook(_ Context, payload map[string]any) (map[string]any, error) {
	value, ok := payload["bed_size"].(string)
	if !ok {
		return payload, nil
	}
	var w, h float64
	if _, err := fmt.Sscanf(value, "%gx%g", &w, &h); err != nil {
		return nil, fmt.Errorf("invalid bed size %q", value)
	}
	delete(payload, "bed_size")
	payload["bed_shape"] = [][]float64{{0, 0}, {w, 0}, {w, h}, {0, h}}
	return payload, nil
}

func tagPostHook(ctx Context, c confval.Config) error {
	if _, err := c.Option("notes", false); err == nil {
		return nil
	}
	return confval.SetDeserialize(c, "notes", ctx.Scope+":"+ctx.Source)
}

func TestDecoderDecodes(t *testing.T) {
	cases := []struct {
		name    string
		options []DecoderOption
		input   string
		expect  map[string]string
		err     string
	}{
		{
			name:  "plain values",
			input: `{"layer_height": 0.2, "perimeters": 3, "temperature": [210, 215], "gcode_flavor": "teacup"}`,
			expect: map[string]string{
				"layer_height": "0.2",
				"perimeters":   "3",
				"temperature":  "210,215",
				"gcode_flavor": "teacup",
			},
		},
		{
			name:    "use number",
			options: []DecoderOption{WithUseNumber()},
			input:   `{"perimeters": 9007199254740993, "layer_height": 0.15}`,
			expect: map[string]string{
				"perimeters":   "9007199254740993",
				"layer_height": "0.15",
			},
		},
		{
			name:    "pre hook shorthand",
			options: []DecoderOption{WithPreHook(bedSizePreHook)},
			input:   `{"bed_size": "250x210"}`,
			expect:  map[string]string{"bed_shape": "0x0,250x0,250x210,0x210"},
		},
		{
			name:    "pre hook failure",
			options: []DecoderOption{WithPreHook(bedSizePreHook)},
			input:   `{"bed_size": "huge"}`,
			err:     `pre-hook for "mk3s" failed: invalid bed size "huge"`,
		},
		{
			name:    "post hook tags",
			options: []DecoderOption{WithPostHook(tagPostHook)},
			input:   `{"perimeters": 2}`,
			expect:  map[string]string{"perimeters": "2", "notes": "printer:mk3s"},
		},
		{
			name:  "unknown key",
			input: `{"perimeters": 2, "mystery": true}`,
			err:   "undefined option key",
		},
		{
			name:    "unknown key ignored",
			options: []DecoderOption{WithIgnoreUnknownKeys()},
			input:   `{"perimeters": 2, "mystery": true}`,
			expect:  map[string]string{"perimeters": "2"},
		},
		{
			name: "custom decoder",
			options: []DecoderOption{WithCustomDecoder(func(_ Context, payload map[string]any, c confval.Config) error {
				raw, ok := payload["ini"].(string)
				if !ok {
					return errors.New("missing ini string")
				}
				for _, line := range strings.Split(raw, "\n") {
					key, value, _ := strings.Cut(line, "=")
					if err := confval.SetDeserialize(c, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
						return err
					}
				}
				return nil
			})},
			input:  `{"ini": "layer_height = 0.1\nbed_shape = 0x0,10x0"}`,
			expect: map[string]string{"layer_height": "0.1", "bed_shape": "0x0,10x0"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoder := NewDecoder(tc.options...)
			var payload map[string]any
			dec := json.NewDecoder(strings.NewReader(tc.input))
			dec.UseNumber()
			if err := dec.Decode(&payload); err != nil {
				t.Fatalf("fixture: %v", err)
			}

			cfg, err := decoder.Decode(Context{Source: "mk3s", Scope: "printer"}, newRegistry(t), payload)
			if tc.err != "" {
				if err == nil || !strings.Contains(err.Error(), tc.err) {
					t.Fatalf("expected error containing %q, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			got := serializeAll(t, cfg)
			if len(got) != len(tc.expect) {
				t.Fatalf("expected %v, got %v", tc.expect, got)
			}
			for key, want := range tc.expect {
				if got[key] != want {
					t.Fatalf("expected %s=%q, got %q", key, want, got[key])
				}
			}
		})
	}
}

func TestDecodeDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"bed_size": "100x100"}
	if _, err := NewDecoder(WithPreHook(bedSizePreHook)).Decode(Context{}, newRegistry(t), payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := payload["bed_size"]; !ok {
		t.Fatalf("expected caller payload untouched, got %v", payload)
	}
	if _, err := NewDecoder().Decode(Context{Source: "x"}, newRegistry(t), nil); err == nil {
		t.Fatalf("expected nil payload error")
	}
}

func TestDecodeJSON(t *testing.T) {
	reg := newRegistry(t)
	dst := confval.NewDynamicConfig(reg)

	decoder := NewDecoder(WithUseNumber())
	if err := decoder.DecodeJSON(Context{Source: "body"}, []byte(`{"layer_height": "0.3mm", "bed_shape": [[0,0],{"x":5,"y":5}]}`), dst); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	snap, err := bridge.Snapshot(dst)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap["layer_height"] != 0.3 {
		t.Fatalf("expected prefix-parsed float, got %v", snap["layer_height"])
	}
	if err := decoder.DecodeJSON(Context{Source: "body"}, []byte(`[1,2]`), dst); err == nil {
		t.Fatalf("expected non-object payload error")
	}
}
