package logging

import (
	"context"
	"maps"
	"strings"
	"sync"
)

// Entry is a single record captured by a RecordingLogger.
type Entry struct {
	Level   Level
	Message string
	Err     error
	Fields  Fields
}

// RecordingLogger keeps every entry at or above its level in memory.
// Loggers derived with WithFields share the same entry store.
type RecordingLogger struct {
	store  *entryStore
	fields Fields
	level  Level
}

type entryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecordingLogger creates a recording logger that captures all levels.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{
		store:  &entryStore{},
		fields: make(Fields),
		level:  DebugLevel,
	}
}

func (r *RecordingLogger) record(level Level, err error, msg string, fields ...Fields) {
	if level < r.level {
		return
	}
	all := make(Fields)
	maps.Copy(all, r.fields)
	for _, f := range fields {
		maps.Copy(all, f)
	}

	r.store.mu.Lock()
	r.store.entries = append(r.store.entries, Entry{Level: level, Message: msg, Err: err, Fields: all})
	r.store.mu.Unlock()
}

func (r *RecordingLogger) Debug(msg string, fields ...Fields) { r.record(DebugLevel, nil, msg, fields...) }
func (r *RecordingLogger) Info(msg string, fields ...Fields)  { r.record(InfoLevel, nil, msg, fields...) }
func (r *RecordingLogger) Warn(msg string, fields ...Fields)  { r.record(WarnLevel, nil, msg, fields...) }

func (r *RecordingLogger) Error(err error, msg string, fields ...Fields) {
	r.record(ErrorLevel, err, msg, fields...)
}

// Fatal records the entry; unlike DefaultLogger it never exits.
func (r *RecordingLogger) Fatal(err error, msg string, fields ...Fields) {
	r.record(FatalLevel, err, msg, fields...)
}

func (r *RecordingLogger) WithFields(fields Fields) Logger {
	newFields := make(Fields)
	maps.Copy(newFields, r.fields)
	maps.Copy(newFields, fields)
	return &RecordingLogger{store: r.store, fields: newFields, level: r.level}
}

func (r *RecordingLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return r.WithFields(fields)
	}
	return r
}

func (r *RecordingLogger) SetLevel(level Level) {
	r.level = level
}

// Entries returns a copy of everything recorded so far.
func (r *RecordingLogger) Entries() []Entry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]Entry, len(r.store.entries))
	copy(out, r.store.entries)
	return out
}

// Contains reports whether any entry at level has a message containing substr.
func (r *RecordingLogger) Contains(level Level, substr string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
