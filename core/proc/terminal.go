package proc

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal is the controlling terminal shared by the shell and its
// foreground job.
type Terminal interface {
	// Fd is the file descriptor of the terminal.
	Fd() int
	// IsTerminal reports whether Fd refers to a terminal at all.
	IsTerminal() bool
	// ForegroundGroup returns the terminal's foreground process group.
	ForegroundGroup() (int, error)
	// SetForegroundGroup hands the terminal to the process group pgid.
	SetForegroundGroup(pgid int) error
	// SaveModes captures the line discipline settings.
	SaveModes() (*term.State, error)
	// RestoreModes puts back settings captured by SaveModes.
	RestoreModes(modes *term.State) error
}

// NewTerminal returns the Terminal backed by fd.
func NewTerminal(fd int, signals *SignalPolicy) Terminal {
	return &ttyDevice{fd: fd, signals: signals}
}

type ttyDevice struct {
	fd      int
	signals *SignalPolicy
}

var _ Terminal = (*ttyDevice)(nil)

func (t *ttyDevice) Fd() int {
	return t.fd
}

func (t *ttyDevice) IsTerminal() bool {
	return term.IsTerminal(t.fd)
}

func (t *ttyDevice) ForegroundGroup() (int, error) {
	return unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
}

func (t *ttyDevice) SetForegroundGroup(pgid int) error {
	return t.signals.WithTTOUIgnored(func() error {
		return unix.IoctlSetPointerInt(t.fd, unix.TIOCSPGRP, pgid)
	})
}

func (t *ttyDevice) SaveModes() (*term.State, error) {
	return term.GetState(t.fd)
}

func (t *ttyDevice) RestoreModes(modes *term.State) error {
	if modes == nil {
		return nil
	}
	return t.signals.WithTTOUIgnored(func() error {
		return term.Restore(t.fd, modes)
	})
}
