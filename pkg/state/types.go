package state

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/goliatone/go-confval"
)

var (
	// ErrETagMismatch indicates a save against a snapshot that changed since
	// the caller read it.
	ErrETagMismatch = errors.New("state: etag mismatch")
	// ErrNoLayers indicates that no requested scope had a stored snapshot.
	ErrNoLayers = errors.New("state: no layers found")
)

// DefaultsScopeName is the scope name used for registry defaults.
const DefaultsScopeName = "defaults"

// Snapshot maps option keys to their serialized text.
type Snapshot map[string]string

// Clone returns an independent copy of s.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Ref identifies one persisted snapshot for one config domain, such as
// "print" presets for a given printer.
type Ref struct {
	Domain string
	Scope  confval.Scope
}

// Identifier returns the deterministic storage key of r.
func (r Ref) Identifier() (string, error) {
	if r.Domain == "" {
		return "", fmt.Errorf("state: domain is required")
	}
	switch r.Scope.Name {
	case "":
		return "", fmt.Errorf("state: scope name is required")
	case DefaultsScopeName:
		return fmt.Sprintf("%s/%s", DefaultsScopeName, r.Domain), nil
	}
	metadataKey := r.Scope.Name + "_id"
	id, ok := r.Scope.Metadata[metadataKey].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("missing metadata key %q for scope %q", metadataKey, r.Scope.Name)
	}
	return fmt.Sprintf("%s/%s/%s", r.Scope.Name, id, r.Domain), nil
}

// Meta is storage-owned metadata used for audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

func (m Meta) clone() Meta {
	out := m
	if m.Extra != nil {
		out.Extra = maps.Clone(m.Extra)
	}
	return out
}

// Store loads and saves one snapshot for a single scope reference.
type Store interface {
	Load(ctx context.Context, ref Ref) (snapshot Snapshot, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot Snapshot, meta Meta) (Meta, error)
}

// Capture returns the serialized text of every key c holds.
func Capture(c confval.Config) (Snapshot, error) {
	keys := c.Keys()
	out := make(Snapshot, len(keys))
	for _, key := range keys {
		text, err := confval.Serialize(c, key)
		if err != nil {
			return nil, err
		}
		out[key] = text
	}
	return out, nil
}

// Hydrate builds a dynamic config backed by reg from snap. Keys reg does not
// define fail with confval.ErrUndefinedKey unless ignoreNonexistent is set.
func Hydrate(reg *confval.Registry, snap Snapshot, ignoreNonexistent bool, opts ...confval.ConfigOption) (*confval.DynamicConfig, error) {
	cfg := confval.NewDynamicConfig(reg, opts...)
	for _, key := range slices.Sorted(maps.Keys(snap)) {
		err := confval.SetDeserialize(cfg, key, snap[key])
		if err != nil && ignoreNonexistent && errors.Is(err, confval.ErrUndefinedKey) {
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
