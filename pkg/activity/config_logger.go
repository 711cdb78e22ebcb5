package activity

import (
	"context"

	"github.com/goliatone/go-confval"
)

// ConfigLogger turns config write events into activity events. Attach it with
// confval.WithLogger so every successful set, erase and merge is audited.
// Failed or skipped operations are not emitted.
type ConfigLogger struct {
	Emitter *Emitter
	Scope   ScopeContext
	ActorID string
	// Context is passed to hooks; context.Background is used when nil.
	Context context.Context
	// OnError receives hook failures, which LogOperation cannot return.
	OnError func(error)
}

// LogOperation implements confval.Logger.
func (l ConfigLogger) LogOperation(event confval.OperationLogEvent) {
	if !l.Emitter.Enabled() || event.Err != nil || event.Skipped {
		return
	}

	input := OptionEventInput{
		ActorID: l.ActorID,
		Key:     event.Key,
		Scope:   l.Scope,
	}
	var out Event
	switch event.Op {
	case confval.OpSet:
		input.NewValue = event.Value
		out = BuildOptionUpdatedEvent(input)
	case confval.OpErase:
		out = BuildOptionErasedEvent(input)
	case confval.OpMerge:
		input.Key = ""
		input.Scope = ScopeContext{Name: event.Key}
		out = BuildLayerAppliedEvent(input)
	default:
		return
	}

	ctx := l.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := l.Emitter.Emit(ctx, out); err != nil && l.OnError != nil {
		l.OnError(err)
	}
}
