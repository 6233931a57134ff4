package proc

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Session is the process-wide job-control state of the shell. It is set up
// once at startup and shared by the launcher and the arbiter.
type Session struct {
	// Interactive is true when the shell's input is a terminal.
	Interactive bool
	// TerminalFD is the descriptor of the controlling terminal.
	TerminalFD int
	// ShellPgid is the shell's own process group.
	ShellPgid int
	// Modes are the terminal settings restored after every foreground job.
	Modes *term.State

	Terminal Terminal
	Signals  *SignalPolicy
}

// NewSession sets up job control on fd, normally standard input.
//
// When fd is a terminal the shell waits until it is in the foreground, shields
// itself from job-control signals, becomes a process group leader, takes the
// terminal and saves its modes. Otherwise none of that happens and jobs are
// simply waited for.
func NewSession(fd int) (*Session, error) {
	signals := NewSignalPolicy()
	return newSession(NewTerminal(fd, signals), signals)
}

func newSession(tty Terminal, signals *SignalPolicy) (*Session, error) {
	s := &Session{
		Interactive: tty.IsTerminal(),
		TerminalFD:  tty.Fd(),
		ShellPgid:   unix.Getpgrp(),
		Terminal:    tty,
		Signals:     signals,
	}
	if !s.Interactive {
		return s, nil
	}

	// Stop ourselves until whoever started us puts us in the foreground.
	for {
		fg, err := tty.ForegroundGroup()
		if err != nil {
			return nil, fmt.Errorf("reading terminal foreground group: %w", err)
		}
		pgid := unix.Getpgrp()
		if fg == pgid {
			break
		}
		if err := unix.Kill(-pgid, unix.SIGTTIN); err != nil {
			return nil, fmt.Errorf("waiting for foreground: %w", err)
		}
	}

	signals.Shield()

	// A session leader can't change its group and already leads one.
	pid := unix.Getpid()
	if err := unix.Setpgid(pid, pid); err != nil && !errors.Is(err, unix.EPERM) {
		return nil, fmt.Errorf("couldn't put the shell in its own process group: %w", err)
	}
	s.ShellPgid = unix.Getpgrp()

	if err := tty.SetForegroundGroup(s.ShellPgid); err != nil {
		return nil, fmt.Errorf("taking the terminal: %w", err)
	}

	modes, err := tty.SaveModes()
	if err != nil {
		return nil, fmt.Errorf("saving terminal modes: %w", err)
	}
	s.Modes = modes

	return s, nil
}

// Close gives the job-control signals back their default handling.
func (s *Session) Close() error {
	s.Signals.Release()
	return nil
}
