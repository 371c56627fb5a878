// Package output writes command results either as human text or as one JSON
// envelope per command. Data goes to stdout, chatter to stderr.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Writer renders the result of one command.
type Writer struct {
	JSONMode  bool
	QuietMode bool
	Stdout    io.Writer
	Stderr    io.Writer
}

// New returns a Writer on os.Stdout and os.Stderr.
func New(jsonMode, quietMode bool) *Writer {
	return &Writer{
		JSONMode:  jsonMode,
		QuietMode: quietMode,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	}
}

// Success reports a successful result. Multi-line messages (tables, trees,
// detail views) are printed as-is; a one-line message gets a check mark.
func (w *Writer) Success(data any, message string) {
	if w.JSONMode {
		encode(w.Stdout, envelope{OK: true, Data: data, Message: message})
		return
	}
	switch {
	case message == "":
	case strings.Contains(message, "\n"):
		fmt.Fprintln(w.Stdout, message)
	default:
		line(w.Stdout, levelOK, message)
	}
}

// Error reports a failure and returns the exit code for code. Details are
// extra lines such as file differences or the members of a cycle. In JSON
// mode the envelope goes to stdout like any other result.
func (w *Writer) Error(err error, code ErrorCode, details ...string) int {
	if w.JSONMode {
		encode(w.Stdout, envelope{Error: err.Error(), Code: code, Details: details})
	} else {
		line(w.Stderr, levelError, err.Error())
		list(w.Stderr, details, 0)
	}
	return ExitCodeForError(code)
}

// Info writes progress chatter to stderr. Quiet and JSON mode drop it.
func (w *Writer) Info(format string, args ...any) {
	if w.QuietMode || w.JSONMode {
		return
	}
	line(w.Stderr, levelInfo, fmt.Sprintf(format, args...))
}

// Warn writes a warning to stderr, also in quiet mode. JSON mode drops it.
func (w *Writer) Warn(format string, args ...any) {
	if w.JSONMode {
		return
	}
	line(w.Stderr, levelWarn, fmt.Sprintf(format, args...))
}

// Diagnostics warns with title and the item count, then lists the first
// limit items. Nothing is written in JSON mode; callers put the items in the
// envelope instead.
func (w *Writer) Diagnostics(title string, items []string, limit int) {
	if w.JSONMode || len(items) == 0 {
		return
	}
	w.Warn("%s (%d)", title, len(items))
	list(w.Stderr, items, limit)
}
