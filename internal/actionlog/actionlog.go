// Package actionlog persists an append-only audit trail of executor
// invocations. Each role gets one JSON-lines file per UTC calendar day;
// records are appended with a single write and never rewritten or deleted.
package actionlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const dayFormat = "2006-01-02"

// Payload is the caller-supplied key-value body of one record.
type Payload map[string]any

// Record is one appended entry, as read back for audit.
type Record struct {
	Time    time.Time
	Payload Payload
}

// Log appends records to per-(role, day) files under a base directory.
type Log struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// Option customizes the log.
type Option func(*Log)

// WithClock overrides the timestamp source (used in tests).
func WithClock(clock func() time.Time) Option {
	return func(l *Log) {
		if clock != nil {
			l.now = clock
		}
	}
}

// New creates a log rooted at dir, creating the directory if needed.
func New(dir string, opts ...Option) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("actionlog: ensure dir: %w", err)
	}
	log := &Log{dir: dir, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(log)
		}
	}
	return log, nil
}

// Dir returns the base directory backing this log.
func (l *Log) Dir() string {
	if l == nil {
		return ""
	}
	return l.dir
}

// Append writes one record for role to today's file. The record is
// marshalled once and written with a single call so concurrent appenders
// never interleave partial records. The audit trail is best-effort by
// contract: callers are expected to log a returned error and carry on
// rather than fail their run over a lost record.
func (l *Log) Append(role string, payload Payload) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	record := map[string]any{"time": now.Format(time.RFC3339)}
	for key, value := range payload {
		if key == "time" {
			continue
		}
		record[key] = value
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("actionlog: marshal record: %w", err)
	}
	data = append(data, '\n')

	path := l.filePath(role, now)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("actionlog: open %s: %w", path, err)
	}
	defer file.Close()
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("actionlog: append %s: %w", path, err)
	}
	return nil
}

// Read returns all records for role on the given day, in append order.
// Malformed lines (for example a truncated trailing record) are skipped.
// Reading is an audit operation; the pipeline itself never calls it.
func (l *Log) Read(role string, day time.Time) ([]Record, error) {
	if l == nil {
		return nil, nil
	}
	path := l.filePath(role, day.UTC())
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("actionlog: open %s: %w", path, err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var raw map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &raw); err != nil {
			continue
		}
		record := Record{Payload: Payload{}}
		for key, value := range raw {
			if key == "time" {
				if s, ok := value.(string); ok {
					if ts, err := time.Parse(time.RFC3339, s); err == nil {
						record.Time = ts
					}
				}
				continue
			}
			record.Payload[key] = value
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("actionlog: scan %s: %w", path, err)
	}
	return records, nil
}

func (l *Log) filePath(role string, day time.Time) string {
	return filepath.Join(l.dir, fmt.Sprintf("%s_%s.jsonl", role, day.Format(dayFormat)))
}
