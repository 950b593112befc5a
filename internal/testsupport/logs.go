package testsupport

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecorder is a slog.Handler that keeps every record for assertions.
type LogRecorder struct {
	mu      *sync.Mutex
	records *[]RecordedLog
	attrs   []slog.Attr
}

// RecordedLog is one captured log line with its attributes flattened.
type RecordedLog struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// NewLogRecorder returns a recorder and a logger writing into it.
func NewLogRecorder() (*LogRecorder, *slog.Logger) {
	rec := &LogRecorder{mu: &sync.Mutex{}, records: &[]RecordedLog{}}
	return rec, slog.New(rec)
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	entry := RecordedLog{Level: record.Level, Message: record.Message, Attrs: map[string]string{}}
	for _, attr := range r.attrs {
		entry.Attrs[attr.Key] = attr.Value.String()
	}
	record.Attrs(func(attr slog.Attr) bool {
		entry.Attrs[attr.Key] = attr.Value.String()
		return true
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.records = append(*r.records, entry)
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{mu: r.mu, records: r.records, attrs: append(append([]slog.Attr(nil), r.attrs...), attrs...)}
}

func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Records returns a snapshot of the captured logs.
func (r *LogRecorder) Records() []RecordedLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedLog(nil), *r.records...)
}

// WithAttr returns the captured logs whose attribute key equals value.
func (r *LogRecorder) WithAttr(key, value string) []RecordedLog {
	var out []RecordedLog
	for _, entry := range r.Records() {
		if entry.Attrs[key] == value {
			out = append(out, entry)
		}
	}
	return out
}
