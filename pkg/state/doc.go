// Package state loads and saves per-scope config snapshots and merges them
// into a single config.
//
// A Snapshot holds the serialized text of every option a scope sets. Stores
// only load and save one snapshot for one Ref; the Resolver loads the
// snapshots of several scopes, hydrates them against a registry and merges
// them with confval.Stack, so the strongest scope wins for each key.
//
// Data flow:
//
//	Store -> Hydrate -> confval.NewStack(...).Merge(...) -> *confval.DynamicConfig
//
// Meta.SnapshotID is carried onto confval.Layer.SnapshotID and is reported by
// Stack.Trace for provenance.
//
// Ref.Identifier gives the canonical storage key: "defaults/<domain>" for the
// defaults scope and "<scope>/<id>/<domain>" otherwise, where id is read from
// the scope metadata key "<scope>_id".
package state
