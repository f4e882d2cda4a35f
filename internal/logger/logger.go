// Package logger writes the structured log of cfmon.
//
// Each record is a line.
// It is a JSON object when writing to a file or pipe, so the scheduler's log collector can parse it.
// It is a tab separated text when writing to a terminal.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
)

// CurrentTime returns current time.
// This variable is for testing purpose.
var CurrentTime = time.Now

// Logger is the record logger.
type Logger struct {
	mu     sync.Mutex
	writer io.Writer
	asJSON bool
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New makes a Logger that writes to w.
// It writes JSON lines unless w is a terminal, or forceJSON is true.
func New(w io.Writer, forceJSON bool) *Logger {
	return &Logger{
		writer: w,
		asJSON: forceJSON || !isTerminal(w),
	}
}

// NewText makes a Logger that always writes human readable lines.
func NewText(w io.Writer) *Logger {
	return &Logger{writer: w}
}

// Discard is a Logger that writes nothing.
var Discard = &Logger{writer: io.Discard, asJSON: true}

// Print prints a Record.
func (l *Logger) Print(r Record) error {
	if r.Time.IsZero() {
		r.Time = CurrentTime()
	}

	var line []byte
	if l.asJSON {
		bs, err := json.Marshal(r)
		if err != nil {
			return err
		}
		line = append(bs, '\n')
	} else {
		line = []byte(r.String() + "\n")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.writer.Write(line)
	return err
}

// Healthy prints Healthy status record.
func (l *Logger) Healthy(target, message string, extra map[string]interface{}) {
	l.Print(Record{Status: StatusHealthy, Target: target, Message: message, Extra: extra})
}

// Degrade prints Degrade status record.
func (l *Logger) Degrade(target, message string, extra map[string]interface{}) {
	l.Print(Record{Status: StatusDegrade, Target: target, Message: message, Extra: extra})
}

// Failure prints Failure status record.
func (l *Logger) Failure(target, message string, extra map[string]interface{}) {
	l.Print(Record{Status: StatusFailure, Target: target, Message: message, Extra: extra})
}

// Unknown prints Unknown status record.
func (l *Logger) Unknown(target, message string, extra map[string]interface{}) {
	l.Print(Record{Status: StatusUnknown, Target: target, Message: message, Extra: extra})
}

// Aborted prints Aborted status record.
func (l *Logger) Aborted(target, message string, extra map[string]interface{}) {
	l.Print(Record{Status: StatusAborted, Target: target, Message: message, Extra: extra})
}
