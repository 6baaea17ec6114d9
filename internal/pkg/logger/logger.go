package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"aria-analytics-pipeline/internal/config"
)

type Fields = logrus.Fields

// Logger wraps logrus with the key/value helpers the services use.
type Logger struct {
	log *logrus.Logger
}

type Entry struct {
	entry *logrus.Entry
}

func New(cfg config.LogConfig) (*Logger, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}

	log.SetOutput(resolveOutput(cfg.Output))

	return &Logger{log: log}, nil
}

func resolveOutput(output string) io.Writer {
	switch output {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		return &lumberjack.Logger{
			Filename:   output,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     14, // days
			Compress:   true,
		}
	}
}

func kvToFields(keysAndValues []any) Fields {
	fields := Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.log.WithFields(kvToFields(keysAndValues)).Debug(msg)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.log.WithFields(kvToFields(keysAndValues)).Info(msg)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.log.WithFields(kvToFields(keysAndValues)).Warn(msg)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.log.WithFields(kvToFields(keysAndValues)).Error(msg)
}

func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{entry: l.log.WithFields(fields)}
}

func (l *Logger) WithError(err error) *Entry {
	return &Entry{entry: l.log.WithError(err)}
}

func (e *Entry) WithFields(fields Fields) *Entry {
	return &Entry{entry: e.entry.WithFields(fields)}
}

func (e *Entry) Debug(msg string) { e.entry.Debug(msg) }
func (e *Entry) Info(msg string)  { e.entry.Info(msg) }
func (e *Entry) Warn(msg string)  { e.entry.Warn(msg) }
func (e *Entry) Error(msg string) { e.entry.Error(msg) }

// LogService records one backend service call with its duration and outcome.
func (l *Logger) LogService(service, operation string, duration time.Duration, fields map[string]any, err error) {
	entry := l.log.WithFields(Fields{
		"service":     service,
		"operation":   operation,
		"duration_ms": duration.Milliseconds(),
	}).WithFields(fields)

	if err != nil {
		entry.WithError(err).Error("service call failed")
		return
	}
	entry.Info("service call completed")
}

// LogAgent records one agent operation with its duration and outcome.
func (l *Logger) LogAgent(agent, operation string, duration time.Duration, fields map[string]any, err error) {
	entry := l.log.WithFields(Fields{
		"agent":       agent,
		"operation":   operation,
		"duration_ms": duration.Milliseconds(),
	}).WithFields(fields)

	if err != nil {
		entry.WithError(err).Error("agent operation failed")
		return
	}
	entry.Info("agent operation completed")
}
