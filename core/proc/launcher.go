package proc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/josephlewis42/jobsh/core/logger"
	"golang.org/x/sys/unix"
)

// Launcher runs external programs for the shell.
type Launcher struct {
	Session  *Session
	Resolver *Resolver
	Arbiter  *Arbiter

	// Streams are inherited by jobs that don't redirect them.
	Streams Streams
	// Diagnostics receives the messages printed when a launch fails, it
	// defaults to Streams.Stderr.
	Diagnostics io.Writer
	// Events records job lifecycle events, may be nil.
	Events *logger.SessionLogger
}

// NewLauncher creates a launcher that runs jobs on the process's own standard
// streams.
func NewLauncher(session *Session, events *logger.SessionLogger) *Launcher {
	return &Launcher{
		Session:  session,
		Resolver: &Resolver{},
		Arbiter:  NewArbiter(session),
		Streams: Streams{
			Stdin:  os.Stdin,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		},
		Events: events,
	}
}

func (l *Launcher) diagnostics() io.Writer {
	if l.Diagnostics != nil {
		return l.Diagnostics
	}
	if l.Streams.Stderr != nil {
		return l.Streams.Stderr
	}
	return io.Discard
}

// Launch runs the command line tokens as a job.
//
// A trailing & starts the job in the background and returns at once.
// Otherwise the job is given the terminal and Launch blocks until it exits or
// stops. Either way the returned Job describes what ran.
//
// When the program can't be run, because a redirection failed or no
// executable was found, a diagnostic is printed and the returned Job has exit
// code 1 along with the error. A nil Job means no process could be created
// at all (ErrFork) or the line had no command (ErrEmptyCommand).
func (l *Launcher) Launch(tokens []string) (*Job, error) {
	background := NeedsBackground(tokens)

	argv, redir, err := ParseRedirection(StripBackground(tokens))
	if err != nil {
		return l.failed(tokens, err), err
	}
	if len(argv) == 0 || argv[0] == "" {
		return nil, ErrEmptyCommand
	}

	streams, err := redir.Open(l.Streams)
	if err != nil {
		return l.failed(argv, err), err
	}
	defer streams.Close()

	foreground := !background
	attr := &os.ProcAttr{
		Files: streams.Files(),
		Sys:   l.sysProcAttr(foreground),
	}

	// Exec resets caught signals to their default in the child.
	restoreSignals := l.Session.Signals.CatchForLaunch()
	process, path, err := l.Resolver.StartResolved(argv, attr)
	restoreSignals()
	if err != nil && foreground && l.Session.Interactive {
		// Failed attempts may have already moved the terminal to a group that
		// no longer exists.
		l.Arbiter.Reclaim()
	}
	if err != nil {
		if errors.Is(err, ErrFork) || errors.Is(err, ErrEmptyCommand) {
			return nil, err
		}
		return l.failed(argv, err), err
	}

	// Also done by the child, repeated here so the group exists no matter
	// which side runs first. The child may have already exec'd.
	_ = unix.Setpgid(process.Pid, process.Pid)

	job := &Job{
		Pid:        process.Pid,
		Pgid:       process.Pid,
		Foreground: foreground,
		Path:       path,
		Argv:       argv,
	}

	l.Events.Record(&logger.RunCommand{
		Command:             argv,
		ResolvedCommandPath: path,
		Pid:                 job.Pid,
		Background:          background,
	})

	if background {
		if l.Session.Interactive {
			fmt.Fprintf(l.diagnostics(), "[%d]\n", job.Pid)
		}
		// Background jobs are never waited for.
		return job, process.Release()
	}

	streams.Close()
	waitErr := l.Arbiter.Foreground(job)
	process.Release()

	exit := &logger.JobExit{
		Pid:      job.Pid,
		ExitCode: job.ExitCode,
		Stopped:  job.Stopped,
	}
	if job.Signal != 0 {
		exit.Signal = job.Signal.String()
	}
	l.Events.Record(exit)

	if job.Stopped {
		fmt.Fprintln(l.diagnostics(), job)
	}

	return job, waitErr
}

func (l *Launcher) sysProcAttr(foreground bool) *syscall.SysProcAttr {
	attr := &syscall.SysProcAttr{Setpgid: true}
	if foreground && l.Session.Interactive {
		// The child takes the terminal before exec so it never runs in the
		// background by accident, the arbiter repeats the hand over.
		attr.Foreground = true
		attr.Ctty = l.Session.TerminalFD
	}
	return attr
}

// failed reports a job that never ran.
func (l *Launcher) failed(argv []string, err error) *Job {
	fmt.Fprintf(l.diagnostics(), "%s\n", err)

	var redirErr *RedirectError
	if errors.As(err, &redirErr) {
		l.Events.Record(&logger.RedirectFailure{
			Command:      argv,
			File:         redirErr.File,
			ErrorMessage: err.Error(),
		})
	} else {
		l.Events.Record(&logger.UnknownCommand{
			Command:      argv,
			ErrorMessage: err.Error(),
		})
	}

	return &Job{Argv: argv, ExitCode: 1}
}
