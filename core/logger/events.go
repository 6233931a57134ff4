package logger

// LogEntry is a single logged event. Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	RunCommand      *RunCommand      `json:"run_command,omitempty"`
	JobExit         *JobExit         `json:"job_exit,omitempty"`
	UnknownCommand  *UnknownCommand  `json:"unknown_command,omitempty"`
	RedirectFailure *RedirectFailure `json:"redirect_failure,omitempty"`
	Builtin         *Builtin         `json:"builtin,omitempty"`
	TerminalUpdate  *TerminalUpdate  `json:"terminal_update,omitempty"`
}

// LogType is implemented by every event that can be recorded.
type LogType interface {
	attach(le *LogEntry)
}

// GetLogType returns the event held by the entry or nil.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.RunCommand != nil:
		return le.RunCommand
	case le.JobExit != nil:
		return le.JobExit
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.RedirectFailure != nil:
		return le.RedirectFailure
	case le.Builtin != nil:
		return le.Builtin
	case le.TerminalUpdate != nil:
		return le.TerminalUpdate
	default:
		return nil
	}
}

// RunCommand is logged when a program starts.
type RunCommand struct {
	Command             []string `json:"command"`
	ResolvedCommandPath string   `json:"resolved_command_path"`
	Pid                 int      `json:"pid"`
	Background          bool     `json:"background,omitempty"`
}

func (e *RunCommand) attach(le *LogEntry) { le.RunCommand = e }

// JobExit is logged when the shell stops waiting for a foreground job.
type JobExit struct {
	Pid      int    `json:"pid"`
	ExitCode int    `json:"exit_code"`
	Signal   string `json:"signal,omitempty"`
	Stopped  bool   `json:"stopped,omitempty"`
}

func (e *JobExit) attach(le *LogEntry) { le.JobExit = e }

// UnknownCommand is logged when nothing could be executed for a command.
type UnknownCommand struct {
	Command      []string `json:"command"`
	ErrorMessage string   `json:"error_message"`
}

func (e *UnknownCommand) attach(le *LogEntry) { le.UnknownCommand = e }

// RedirectFailure is logged when a redirection file can't be opened.
type RedirectFailure struct {
	Command      []string `json:"command"`
	File         string   `json:"file"`
	ErrorMessage string   `json:"error_message"`
}

func (e *RedirectFailure) attach(le *LogEntry) { le.RedirectFailure = e }

// Builtin is logged after a shell builtin runs.
type Builtin struct {
	Command []string `json:"command"`
	Status  int      `json:"status"`
}

func (e *Builtin) attach(le *LogEntry) { le.Builtin = e }

// TerminalUpdate is logged when the session's terminal state is established.
type TerminalUpdate struct {
	Interactive bool `json:"interactive"`
	ShellPgid   int  `json:"shell_pgid"`
}

func (e *TerminalUpdate) attach(le *LogEntry) { le.TerminalUpdate = e }
