package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Outcome is the terminal state of one file.
type Outcome int

const (
	OK Outcome = iota
	Skip
	Fail
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "OK"
	case Skip:
		return "SKIP"
	case Fail:
		return "FAIL"
	}
	return "UNKNOWN"
}

// label is the metric label value of o.
func (o Outcome) label() string { return strings.ToLower(o.String()) }

// Status reports what happened to one file. Rows is meaningful for OK only;
// Reason explains a Skip or a Fail.
type Status struct {
	Outcome Outcome
	File    string
	Rows    int
	Reason  string
	Notes   []string
	Elapsed time.Duration
}

var printer = message.NewPrinter(language.English)

// String renders the status line, e.g.
//
//	OK   clean_yellow_tripdata_2024-01.parquet (1,234 rows; zones, weather)
//	SKIP clean_yellow_tripdata_2024-01.parquet: already exists
//	FAIL yellow_tripdata_2024-02.parquet: input not found
func (s Status) String() string {
	var b strings.Builder
	b.WriteString(printer.Sprintf("%-4s %s", s.Outcome.String(), filepath.Base(s.File)))
	if s.Outcome == OK {
		b.WriteString(printer.Sprintf(" (%d rows", s.Rows))
		if len(s.Notes) > 0 {
			b.WriteString("; ")
			b.WriteString(strings.Join(s.Notes, ", "))
		}
		b.WriteString(")")
	}
	if s.Reason != "" {
		b.WriteString(": ")
		b.WriteString(s.Reason)
	}
	return b.String()
}

// then folds the status of a later stage on the same file into s. A failure
// wins; otherwise any stage that did work makes the file OK.
func (s Status) then(stage string, next Status) Status {
	s.Elapsed += next.Elapsed
	switch next.Outcome {
	case Fail:
		s.Outcome = Fail
		s.Reason = stage + ": " + next.Reason
	case OK:
		if s.Outcome != Fail {
			s.Outcome = OK
			s.Reason = ""
		}
		s.Rows = next.Rows
		s.Notes = append(s.Notes, next.Notes...)
	case Skip:
		if s.Outcome == OK {
			s.Notes = append(s.Notes, stage+" skipped")
		}
	}
	return s
}

func ok(file string, rows int, notes ...string) Status {
	return Status{Outcome: OK, File: file, Rows: rows, Notes: notes}
}

func skip(file, reason string) Status {
	return Status{Outcome: Skip, File: file, Reason: reason}
}

func fail(file string, err error) Status {
	return Status{Outcome: Fail, File: file, Reason: err.Error()}
}
