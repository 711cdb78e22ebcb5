package logsink_test

import (
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/pkg/logsink"
	"github.com/goliatone/go-confval/rules"
)

func TestLogrusConfigEvents(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	reg := confval.MustNewRegistry(
		confval.OptionDef{Key: "layer_height", Type: confval.TypeFloat},
		confval.OptionDef{Key: "perimeters", Type: confval.TypeInt},
	)
	cfg := confval.NewDynamicConfig(reg, confval.WithLogger(logsink.Logrus(logger)))
	if err := cfg.SetDeserialize("layer_height", "0.2"); err != nil {
		t.Fatalf("set: %v", err)
	}

	entries := hook.AllEntries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != log.DebugLevel || entry.Data["op"] != confval.OpSet || entry.Data["key"] != "layer_height" || entry.Data["value"] != "0.2" {
		t.Fatalf("unexpected entry %v %v", entry.Level, entry.Data)
	}

	hook.Reset()
	sink := logsink.Logrus(logger)
	sink.LogOperation(confval.OperationLogEvent{Op: confval.OpSet, Key: "perimeters", Err: errors.New("boom")})
	sink.LogOperation(confval.OperationLogEvent{Op: confval.OpApply, Key: "notes", Skipped: true})

	entries = hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if entries[0].Level != log.WarnLevel || entries[0].Data[log.ErrorKey] == nil {
		t.Fatalf("expected warn entry with error, got %v %v", entries[0].Level, entries[0].Data)
	}
	if entries[1].Message != "config key skipped" {
		t.Fatalf("unexpected skip message %q", entries[1].Message)
	}
}

func TestLogrusEvaluatorEvents(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	sink := logsink.LogrusEvaluator(logger)
	sink.LogEvaluation(rules.EvaluatorLogEvent{Engine: "expr", Expr: "1 + 1", Key: "perimeters", Duration: 3 * time.Millisecond})
	sink.LogEvaluation(rules.EvaluatorLogEvent{Engine: "cel", Expr: "bad(", Err: errors.New("syntax")})

	entries := hook.AllEntries()
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(entries))
	}
	if entries[0].Data["duration_ms"] != int64(3) || entries[0].Level != log.DebugLevel {
		t.Fatalf("unexpected success entry %v %v", entries[0].Level, entries[0].Data)
	}
	if entries[1].Level != log.WarnLevel || entries[1].Data["engine"] != "cel" {
		t.Fatalf("unexpected failure entry %v %v", entries[1].Level, entries[1].Data)
	}
}
