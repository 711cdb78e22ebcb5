// Package logsink forwards config and rule events to logrus.
package logsink

import (
	log "github.com/sirupsen/logrus"

	"github.com/goliatone/go-confval"
	"github.com/goliatone/go-confval/rules"
)

// Logrus returns a confval.Logger writing structured entries to logger.
// Failed operations log at warn level, skipped keys and writes at debug.
func Logrus(logger log.FieldLogger) confval.Logger {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return confval.LoggerFunc(func(event confval.OperationLogEvent) {
		fields := log.Fields{
			"op":  event.Op,
			"key": event.Key,
		}
		if event.Value != "" {
			fields["value"] = event.Value
		}
		entry := logger.WithFields(fields)
		switch {
		case event.Skipped:
			entry.Debug("config key skipped")
		case event.Err != nil:
			entry.WithError(event.Err).Warn("config operation failed")
		default:
			entry.Debug("config operation")
		}
	})
}

// LogrusEvaluator returns a rules.EvaluatorLogger writing to logger.
func LogrusEvaluator(logger log.FieldLogger) rules.EvaluatorLogger {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return rules.EvaluatorLoggerFunc(func(event rules.EvaluatorLogEvent) {
		entry := logger.WithFields(log.Fields{
			"engine":      event.Engine,
			"expr":        event.Expr,
			"key":         event.Key,
			"duration_ms": event.Duration.Milliseconds(),
		})
		if event.Err != nil {
			entry.WithError(event.Err).Warn("rule evaluation failed")
			return
		}
		entry.Debug("rule evaluated")
	})
}
