package activity

import (
	"strings"
	"time"

	"github.com/goliatone/go-confval"
)

// Event verbs and object types.
const (
	VerbOptionUpdated = "config.option.updated"
	VerbOptionErased  = "config.option.erased"
	VerbLayerApplied  = "config.layer.applied"
	VerbSnapshotSaved = "config.snapshot.saved"

	ObjectOption   = "config.option"
	ObjectLayer    = "config.layer"
	ObjectSnapshot = "config.snapshot"
)

// ScopeContext captures the scope a change was made in.
type ScopeContext struct {
	Name       string
	Label      string
	Priority   int
	Metadata   map[string]any
	SnapshotID string
}

// ScopeFromLayer derives a ScopeContext from a stack layer.
func ScopeFromLayer(layer confval.Layer) ScopeContext {
	return ScopeContext{
		Name:       layer.Scope.Name,
		Label:      layer.Scope.Label,
		Priority:   layer.Scope.Priority,
		Metadata:   cloneMap(layer.Scope.Metadata),
		SnapshotID: layer.SnapshotID,
	}
}

// OptionEventInput carries the fields shared by config events. Values are the
// serialized option text; nil means the side did not exist.
type OptionEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Key        string
	ObjectID   string
	Channel    string
	Recipients []string
	Metadata   map[string]any
	OldValue   any
	NewValue   any
	Scope      ScopeContext
	OccurredAt time.Time
}

// BuildOptionUpdatedEvent describes a write to a single option.
func BuildOptionUpdatedEvent(input OptionEventInput) Event {
	return buildConfigEvent(VerbOptionUpdated, ObjectOption, input)
}

// BuildOptionErasedEvent describes an option removed from a dynamic config.
func BuildOptionErasedEvent(input OptionEventInput) Event {
	return buildConfigEvent(VerbOptionErased, ObjectOption, input)
}

// BuildLayerAppliedEvent describes a layer folded into a merged config.
func BuildLayerAppliedEvent(input OptionEventInput) Event {
	return buildConfigEvent(VerbLayerApplied, ObjectLayer, input)
}

// BuildSnapshotSavedEvent describes a persisted config snapshot.
func BuildSnapshotSavedEvent(input OptionEventInput) Event {
	return buildConfigEvent(VerbSnapshotSaved, ObjectSnapshot, input)
}

func buildConfigEvent(verb, objectType string, input OptionEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}

	key := strings.TrimSpace(input.Key)
	if key != "" {
		set("key", key)
	}
	if input.Scope.Name != "" {
		set("scope_name", input.Scope.Name)
		set("scope_priority", input.Scope.Priority)
		if input.Scope.Label != "" {
			set("scope_label", input.Scope.Label)
		}
		if len(input.Scope.Metadata) > 0 {
			set("scope_metadata", cloneMap(input.Scope.Metadata))
		}
	}
	if input.Scope.SnapshotID != "" {
		set("snapshot_id", input.Scope.SnapshotID)
	}
	if input.OldValue != nil {
		set("old_value", input.OldValue)
	}
	if input.NewValue != nil {
		set("new_value", input.NewValue)
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectIDFor(objectType, key, input),
		Channel:    strings.TrimSpace(input.Channel),
		Recipients: input.Recipients,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// objectIDFor picks the explicit id, then the option key for option events,
// then the snapshot id, then the scope name, falling back to the object type.
func objectIDFor(objectType, key string, input OptionEventInput) string {
	candidates := []string{input.ObjectID}
	if objectType == ObjectOption {
		candidates = append(candidates, key)
	}
	candidates = append(candidates, input.Scope.SnapshotID, input.Scope.Name)
	for _, candidate := range candidates {
		if id := strings.TrimSpace(candidate); id != "" {
			return id
		}
	}
	return objectType
}
