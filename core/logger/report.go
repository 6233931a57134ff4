package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       StrCounter `json:"sessions"`
	InvalidEntries int        `json:"invalid_log_entries,omitempty"`

	RunCommand      RunCommandReport      `json:"run_command_report"`
	JobExit         JobExitReport         `json:"job_exit_report"`
	UnknownCommand  UnknownCommandReport  `json:"unknown_command_report"`
	RedirectFailure RedirectFailureReport `json:"redirect_failure_report"`
	Builtin         BuiltinReport         `json:"builtin_report"`
}

// Update adds the entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	if le.SessionID != "" {
		r.Sessions.Increment(le.SessionID)
	}

	switch event := le.GetLogType().(type) {
	case *RunCommand:
		r.RunCommand.update(event)
	case *JobExit:
		r.JobExit.update(event)
	case *UnknownCommand:
		r.UnknownCommand.update(event)
	case *RedirectFailure:
		r.RedirectFailure.update(event)
	case *Builtin:
		r.Builtin.update(event)
	case *TerminalUpdate:
		// Ignore
	default:
		r.InvalidEntries++
	}
}

type RunCommandReport struct {
	// Paths that were executed.
	ResolvedCommandPaths StrCounter `json:"resolved_command_paths"`
	// Names as typed.
	CommandNames StrCounter `json:"command_names"`
	Background   int        `json:"background"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	r.ResolvedCommandPaths.Increment(rc.ResolvedCommandPath)
	if len(rc.Command) > 0 {
		r.CommandNames.Increment(rc.Command[0])
	}
	if rc.Background {
		r.Background++
	}
}

type JobExitReport struct {
	ExitCodes StrCounter `json:"exit_codes"`
	Signals   StrCounter `json:"signals"`
	Stopped   int        `json:"stopped"`
}

func (r *JobExitReport) update(je *JobExit) {
	r.ExitCodes.Increment(fmt.Sprintf("%d", je.ExitCode))
	if je.Signal != "" {
		r.Signals.Increment(je.Signal)
	}
	if je.Stopped {
		r.Stopped++
	}
}

type UnknownCommandReport struct {
	Commands *PathCounter `json:"commands"`
}

func (r *UnknownCommandReport) update(uc *UnknownCommand) {
	if r.Commands == nil {
		r.Commands = NewPathCounter("command", "error")
	}
	if len(uc.Command) > 0 {
		r.Commands.Increment(uc.Command[0], uc.ErrorMessage)
	}
}

type RedirectFailureReport struct {
	Files StrCounter `json:"files"`
}

func (r *RedirectFailureReport) update(rf *RedirectFailure) {
	r.Files.Increment(rf.File)
}

type BuiltinReport struct {
	CommandNames StrCounter `json:"command_names"`
	Failures     int        `json:"failures"`
}

func (r *BuiltinReport) update(b *Builtin) {
	if len(b.Command) > 0 {
		r.CommandNames.Increment(b.Command[0])
	}
	if b.Status != 0 {
		r.Failures++
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns how many times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of unique column tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count returns how many times the tuple was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	if ctr == nil {
		return 0
	}
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
