package proc

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNeedsResolution(t *testing.T) {
	cases := map[string]bool{
		"ls":            true,
		"wc":            true,
		"my-prog.sh":    true,
		"./cmd":         false,
		"foo/bar":       false,
		"/usr/bin/wc":   false,
		"../bin/tool":   false,
		"trailing/":     false,
		"/":             false,
		"with space":    true,
		"dots...":       true,
		"back\\slashes": true,
	}

	for cmd, want := range cases {
		t.Run(cmd, func(t *testing.T) {
			assert.Equal(t, want, NeedsResolution(cmd))
		})
	}
}

func TestSearchPath(t *testing.T) {
	cases := map[string]struct {
		path string
		want []string
	}{
		"ordered":        {"/a:/b", []string{"/a/foo", "/b/foo"}},
		"single":         {"/usr/bin", []string{"/usr/bin/foo"}},
		"empty":          {"", nil},
		"empty-elements": {":/a::/b:", []string{"/a/foo", "/b/foo"}},
		"relative":       {"bin", []string{"bin/foo"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, SearchPath(tc.path, "foo"))
		})
	}
}

// recordingStarter fails with ENOENT for every path except ok.
type recordingStarter struct {
	ok    string
	tried []string
	argv  [][]string
}

func (r *recordingStarter) Start(name string, argv []string, attr *os.ProcAttr) (*os.Process, error) {
	r.tried = append(r.tried, name)
	r.argv = append(r.argv, argv)
	if name == r.ok {
		return &os.Process{Pid: 42}, nil
	}
	return nil, &os.PathError{Op: "fork/exec", Path: name, Err: syscall.ENOENT}
}

func staticEnv(path string) func(string) string {
	return func(key string) string {
		if key == EnvPath {
			return path
		}
		return ""
	}
}

func TestStartResolvedFollowsPathOrder(t *testing.T) {
	starter := &recordingStarter{ok: "/b/foo"}
	resolver := &Resolver{Getenv: staticEnv("/a:/b:/c"), Start: starter.Start}

	proc, path, err := resolver.StartResolved([]string{"foo", "-x"}, &os.ProcAttr{})
	require.NoError(t, err)

	assert.Equal(t, 42, proc.Pid)
	assert.Equal(t, "/b/foo", path)
	assert.Equal(t, []string{"/a/foo", "/b/foo"}, starter.tried)
	for _, argv := range starter.argv {
		assert.Equal(t, []string{"foo", "-x"}, argv, "argv[0] must stay as typed")
	}
}

func TestStartResolvedEmptyPath(t *testing.T) {
	for _, path := range []string{"", ":", "::"} {
		t.Run(path, func(t *testing.T) {
			starter := &recordingStarter{}
			resolver := &Resolver{Getenv: staticEnv(path), Start: starter.Start}

			_, _, err := resolver.StartResolved([]string{"foo"}, &os.ProcAttr{})
			assert.True(t, errors.Is(err, ErrNotFound))
			assert.Empty(t, starter.tried, "nothing should be executed")
			assert.EqualError(t, err, "foo: command not found")
		})
	}
}

func TestStartResolvedNotFound(t *testing.T) {
	starter := &recordingStarter{}
	resolver := &Resolver{Getenv: staticEnv("/a:/b"), Start: starter.Start}

	_, _, err := resolver.StartResolved([]string{"foo"}, &os.ProcAttr{})

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "foo", execErr.Name)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"/a/foo", "/b/foo"}, starter.tried)
}

func TestStartResolvedDirectPath(t *testing.T) {
	starter := &recordingStarter{}
	resolver := &Resolver{Getenv: staticEnv("/a:/b"), Start: starter.Start}

	_, _, err := resolver.StartResolved([]string{"./foo"}, &os.ProcAttr{})

	assert.Equal(t, []string{"./foo"}, starter.tried, "PATH must not be consulted")
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, syscall.ENOENT))
	assert.EqualError(t, err, "./foo: no such file or directory")
}

func TestStartResolvedForkFailure(t *testing.T) {
	var tried []string
	resolver := &Resolver{
		Getenv: staticEnv("/a:/b"),
		Start: func(name string, argv []string, attr *os.ProcAttr) (*os.Process, error) {
			tried = append(tried, name)
			return nil, &os.PathError{Op: "fork/exec", Path: name, Err: syscall.EAGAIN}
		},
	}

	_, _, err := resolver.StartResolved([]string{"foo"}, &os.ProcAttr{})

	assert.True(t, errors.Is(err, ErrFork))
	assert.Equal(t, []string{"/a/foo"}, tried, "fork failures abandon the launch")
}

func TestIsExecFailure(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"missing":        {syscall.ENOENT, true},
		"not executable": {syscall.EACCES, true},
		"bad format":     {syscall.ENOEXEC, true},
		"directory":      {syscall.EISDIR, true},
		"wrapped":        {&os.PathError{Op: "fork/exec", Path: "/a/foo", Err: syscall.ENOTDIR}, true},
		"no processes":   {syscall.EAGAIN, false},
		"no memory":      {syscall.ENOMEM, false},
		"terminal":       {&os.PathError{Op: "fork/exec", Path: "/a/foo", Err: syscall.EPERM}, false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, IsExecFailure(tc.err))
		})
	}
}

func TestStartResolvedHandoverFailure(t *testing.T) {
	var tried []string
	resolver := &Resolver{
		Getenv: staticEnv("/a:/b"),
		Start: func(name string, argv []string, attr *os.ProcAttr) (*os.Process, error) {
			tried = append(tried, name)
			return nil, &os.PathError{Op: "fork/exec", Path: name, Err: syscall.EPERM}
		},
	}

	_, _, err := resolver.StartResolved([]string{"foo"}, &os.ProcAttr{})

	assert.True(t, errors.Is(err, ErrFork))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, []string{"/a/foo"}, tried)
}

func TestStartResolvedEmptyCommand(t *testing.T) {
	resolver := &Resolver{Getenv: staticEnv("/a")}

	_, _, err := resolver.StartResolved(nil, &os.ProcAttr{})
	assert.Equal(t, ErrEmptyCommand, err)

	_, _, err = resolver.StartResolved([]string{""}, &os.ProcAttr{})
	assert.Equal(t, ErrEmptyCommand, err)
}

func TestStartResolvedRealFiles(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	want := writeScript(t, second, "foo", "exit 0")

	// Present in the first directory but not executable.
	require.NoError(t, os.WriteFile(first+"/foo", []byte("#!/bin/sh\nexit 1\n"), 0644))

	resolver := &Resolver{Getenv: staticEnv(first + ":" + second)}
	proc, path, err := resolver.StartResolved([]string{"foo"}, &os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	require.NoError(t, err)
	assert.Equal(t, want, path)

	state, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, state.ExitCode())
}
