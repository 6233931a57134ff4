package proc

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Owner identifies who holds the controlling terminal.
type Owner int

const (
	// ShellOwnsTerminal is the resting state between jobs.
	ShellOwnsTerminal Owner = iota
	// JobOwnsTerminal holds while a foreground job runs.
	JobOwnsTerminal
)

func (o Owner) String() string {
	switch o {
	case ShellOwnsTerminal:
		return "shell"
	case JobOwnsTerminal:
		return "job"
	default:
		return fmt.Sprintf("Owner(%d)", int(o))
	}
}

// WaitFunc blocks until the process pid exits or stops.
type WaitFunc func(pid int) (unix.WaitStatus, error)

// Arbiter lends the terminal to one foreground job at a time.
type Arbiter struct {
	session *Session
	owner   Owner

	// Wait defaults to wait4 with WUNTRACED, retried on EINTR.
	Wait WaitFunc
}

// NewArbiter creates an arbiter for the session's terminal.
func NewArbiter(session *Session) *Arbiter {
	return &Arbiter{session: session, Wait: waitForeground}
}

// Owner returns who currently holds the terminal.
func (a *Arbiter) Owner() Owner {
	return a.owner
}

// Foreground gives the terminal to job's process group and blocks until the
// job exits or stops, recording its status on job. The terminal is taken back
// and its modes restored whatever the outcome of the wait.
func (a *Arbiter) Foreground(job *Job) error {
	var errs []error
	if a.session.Interactive {
		err := a.session.Terminal.SetForegroundGroup(job.Pgid)
		switch {
		case err == nil:
			a.owner = JobOwnsTerminal
		case errors.Is(err, unix.EPERM), errors.Is(err, unix.ESRCH):
			// The job's group is already gone, there is nothing to hand over.
		default:
			errs = append(errs, fmt.Errorf("giving terminal to job %d: %w", job.Pid, err))
		}
	}

	ws, err := a.Wait(job.Pid)
	job.setStatus(ws)

	errs = append(errs, ignoreECHILD(err), a.Reclaim())
	return errors.Join(errs...)
}

// Reclaim makes the shell the terminal's foreground group again and restores
// the saved terminal modes, the job may have changed them.
func (a *Arbiter) Reclaim() error {
	defer func() { a.owner = ShellOwnsTerminal }()

	if !a.session.Interactive {
		return nil
	}

	tty := a.session.Terminal
	var errs []error
	if err := tty.SetForegroundGroup(a.session.ShellPgid); err != nil {
		errs = append(errs, fmt.Errorf("reclaiming terminal: %w", err))
	}
	if err := tty.RestoreModes(a.session.Modes); err != nil {
		errs = append(errs, fmt.Errorf("restoring terminal modes: %w", err))
	}
	return errors.Join(errs...)
}

func waitForeground(pid int) (unix.WaitStatus, error) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, unix.WUNTRACED, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return ws, err
	}
}

// ignoreECHILD treats a child that was already reaped as finished.
func ignoreECHILD(err error) error {
	if errors.Is(err, unix.ECHILD) {
		return nil
	}
	return err
}
