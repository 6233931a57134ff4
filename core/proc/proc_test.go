package proc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// writeScript creates an executable shell script named name in dir.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
	return path
}

type fakeTerminal struct {
	fd          int
	interactive bool
	fg          int
	setCalls    []int
	setErr      error
	restores    int
}

var _ Terminal = (*fakeTerminal)(nil)

func (f *fakeTerminal) Fd() int                       { return f.fd }
func (f *fakeTerminal) IsTerminal() bool              { return f.interactive }
func (f *fakeTerminal) ForegroundGroup() (int, error) { return f.fg, nil }

func (f *fakeTerminal) SetForegroundGroup(pgid int) error {
	f.setCalls = append(f.setCalls, pgid)
	if f.setErr != nil {
		return f.setErr
	}
	f.fg = pgid
	return nil
}

func (f *fakeTerminal) SaveModes() (*term.State, error) { return &term.State{}, nil }

func (f *fakeTerminal) RestoreModes(*term.State) error {
	f.restores++
	return nil
}

// interactiveSession pretends the shell owns a terminal without touching the
// real one.
func interactiveSession(tty *fakeTerminal) *Session {
	tty.interactive = true
	return &Session{
		Interactive: true,
		TerminalFD:  tty.fd,
		ShellPgid:   unix.Getpgrp(),
		Modes:       &term.State{},
		Terminal:    tty,
		Signals:     NewSignalPolicy(),
	}
}

func batchSession(t *testing.T) *Session {
	t.Helper()

	session, err := newSession(&fakeTerminal{}, NewSignalPolicy())
	require.NoError(t, err)
	return session
}
