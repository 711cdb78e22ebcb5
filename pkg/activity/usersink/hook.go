// Package usersink forwards config activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"maps"
	"slices"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-confval/pkg/activity"
)

// Hook adapts activity events to a go-users ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Clock stamps records whose event has no time. Defaults to time.Now.
	Clock func() time.Time
}

// Notify maps the event into an ActivityRecord and logs it. Identifiers that
// are not UUIDs are recorded as uuid.Nil and kept in the record data.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	normalized := activity.NormalizeEvent(event)
	if !normalized.Complete() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := map[string]any{}
	maps.Copy(data, normalized.Metadata)
	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID, "actor_ref", data),
		UserID:     parseUUID(normalized.UserID, "user_ref", data),
		TenantID:   parseUUID(normalized.TenantID, "tenant_ref", data),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		OccurredAt: normalized.OccurredAt,
	}
	if event.OccurredAt.IsZero() && h.Clock != nil {
		record.OccurredAt = h.Clock()
	}
	if len(normalized.Recipients) > 0 {
		data["recipients"] = slices.Clone(normalized.Recipients)
	}
	if len(data) > 0 {
		record.Data = data
	}
	return h.Sink.Log(ctx, record)
}

func parseUUID(value, refKey string, data map[string]any) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		data[refKey] = value
		return uuid.Nil
	}
	return id
}
