// Package logger keeps the append-only audit trail of every command llmsec
// decides on. Each record is one line:
//
//	TIMESTAMP | STATUS | COMMAND
package logger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gzhole/llmsec/internal/normalize"
	"github.com/gzhole/llmsec/internal/redact"
)

// Status is the terminal state of one invocation.
type Status string

const (
	StatusAllowed     Status = "ALLOWED"
	StatusBlocked     Status = "BLOCKED"
	StatusAskDeferred Status = "ALLOWED_ASK_DEFERRED"
	StatusApproved    Status = "APPROVED_BY_USER"
	StatusCancelled   Status = "CANCELLED_BY_USER"
)

const (
	timestampLayout = time.RFC3339
	fieldSeparator  = " | "
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusAllowed, StatusBlocked, StatusAskDeferred, StatusApproved, StatusCancelled}

// Record is one parsed audit line.
type Record struct {
	Timestamp time.Time
	Status    Status
	Command   string
}

// Recorder is what the mode controller needs from an audit logger.
type Recorder interface {
	Record(status Status, command string)
}

type AuditLogger struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// New returns a logger appending to path. The file and its directory are
// created on first write.
func New(path string) *AuditLogger {
	return &AuditLogger{path: path, now: time.Now}
}

// WithClock replaces the logger's clock.
func (l *AuditLogger) WithClock(now func() time.Time) *AuditLogger {
	l.now = now
	return l
}

func (l *AuditLogger) Path() string {
	return l.path
}

// Record appends one line. Failures are swallowed: auditing must never
// change the decision or block the command.
func (l *AuditLogger) Record(status Status, command string) {
	_ = l.Log(Record{Timestamp: l.now(), Status: status, Command: command})
}

// Log appends rec and reports any I/O error.
func (l *AuditLogger) Log(rec Record) error {
	if l == nil || l.path == "" {
		return errors.New("audit log path not set")
	}
	line := FormatLine(rec)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	// A single write keeps concurrent appenders from interleaving.
	_, err = file.Write([]byte(line))
	return err
}

// FormatLine renders rec as a newline-terminated audit line with secrets
// redacted, hidden characters marked and embedded line breaks escaped.
func FormatLine(rec Record) string {
	cmd := normalize.Visible(redact.Redact(rec.Command))
	cmd = strings.ReplaceAll(cmd, "\r", `\r`)
	cmd = strings.ReplaceAll(cmd, "\n", `\n`)
	ts := rec.Timestamp.UTC().Truncate(time.Second).Format(timestampLayout)
	return ts + fieldSeparator + string(rec.Status) + fieldSeparator + cmd + "\n"
}

// ParseLine is the inverse of FormatLine (minus redaction and escaping).
func ParseLine(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.SplitN(line, fieldSeparator, 3)
	if len(parts) < 2 {
		return Record{}, fmt.Errorf("malformed audit line %q", line)
	}
	ts, err := time.Parse(timestampLayout, parts[0])
	if err != nil {
		return Record{}, fmt.Errorf("malformed audit timestamp: %w", err)
	}
	rec := Record{Timestamp: ts, Status: Status(parts[1])}
	if len(parts) == 3 {
		rec.Command = parts[2]
	}
	return rec, nil
}

// Read loads every well-formed record from path. Malformed lines are
// skipped.
func Read(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}
