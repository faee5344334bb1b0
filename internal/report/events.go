package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventScan  EventType = "scan"
	EventSkip  EventType = "skip"
	EventMkdir EventType = "mkdir"
	EventPlace EventType = "place"
	EventError EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// outcome maps the result of an operation to its level and error text
func outcome(err error) (EventLevel, string) {
	if err != nil {
		return LevelError, err.Error()
	}
	return LevelInfo, ""
}

// Event represents a single event of a sorting run
type Event struct {
	Timestamp    time.Time         `json:"ts"`
	Level        EventLevel        `json:"level"`
	Event        EventType         `json:"event"`
	RunID        string            `json:"run_id,omitempty"`
	SrcPath      string            `json:"src_path,omitempty"`
	DestPath     string            `json:"dest_path,omitempty"`
	Action       string            `json:"action,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	BytesWritten int64             `json:"bytes_written,omitempty"`
	Duration     int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error        string            `json:"error,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	runID    string
	minLevel EventLevel
}

// NewEventLogger creates the JSONL log of one run in eventsDir, named
// events-<timestamp>-<run id prefix>.jsonl. Events below minLevel are dropped.
func NewEventLogger(eventsDir, runID string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(eventsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create events directory: %w", err)
	}

	name := "events-" + time.Now().Format("20060102-150405")
	if len(runID) >= 8 {
		name += "-" + runID[:8]
	}
	path := filepath.Join(eventsDir, name+".jsonl")

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		runID:    runID,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogScan logs the start of a directory listing
func (l *EventLogger) LogScan(dir string, recursive bool) error {
	return l.Log(&Event{
		Level:   LevelDebug,
		Event:   EventScan,
		SrcPath: dir,
		Extra:   map[string]string{"recursive": strconv.FormatBool(recursive)},
	})
}

// LogSkip logs a file or directory left untouched
func (l *EventLogger) LogSkip(srcPath, reason string) error {
	return l.Log(&Event{
		Level:   LevelInfo,
		Event:   EventSkip,
		SrcPath: srcPath,
		Reason:  reason,
	})
}

// LogMkdir logs a directory creation attempt
func (l *EventLogger) LogMkdir(dir string, err error) error {
	level, errMsg := outcome(err)
	return l.Log(&Event{
		Level:    level,
		Event:    EventMkdir,
		DestPath: dir,
		Error:    errMsg,
	})
}

// LogPlace logs a copy or move of one file
func (l *EventLogger) LogPlace(srcPath, destPath, action string, bytesWritten int64, duration time.Duration, err error) error {
	level, errMsg := outcome(err)
	return l.Log(&Event{
		Level:        level,
		Event:        EventPlace,
		SrcPath:      srcPath,
		DestPath:     destPath,
		Action:       action,
		BytesWritten: bytesWritten,
		Duration:     duration.Milliseconds(),
		Error:        errMsg,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, srcPath string, err error) error {
	return l.Log(&Event{
		Level:   LevelError,
		Event:   event,
		SrcPath: srcPath,
		Error:   err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// RunID returns the run id stamped on every event
func (l *EventLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
