package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// EnvPath is the environment variable searched for bare command names.
const EnvPath = "PATH"

var (
	// ErrNotFound is the error resulting if a path search failed to find an executable file.
	ErrNotFound = exec.ErrNotFound

	// ErrEmptyCommand is returned when there is no program name to run.
	ErrEmptyCommand = errors.New("empty command")

	// ErrFork is returned when a new process could not be created at all.
	ErrFork = errors.New("unable to create process")
)

// ExecError is returned when a program could not be started.
type ExecError struct {
	// Name is the command as typed.
	Name string
	// Err is ErrNotFound after a failed PATH search, otherwise the reason the
	// named file could not be executed.
	Err error
}

func (e *ExecError) Error() string {
	if errors.Is(e.Err, ErrNotFound) {
		return e.Name + ": command not found"
	}
	return e.Name + ": " + errnoText(e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// StartFunc starts a program. It has the signature of os.StartProcess.
type StartFunc func(name string, argv []string, attr *os.ProcAttr) (*os.Process, error)

// NeedsResolution reports whether cmd is a bare name that has to be looked up
// in PATH. Anything containing a slash is executed as given:
//
//	./cmd         relative to the working directory
//	foo/bar       relative path
//	/usr/bin/wc   absolute path
func NeedsResolution(cmd string) bool {
	return !strings.Contains(cmd, "/")
}

// SearchPath returns the candidate executables for cmd in PATH order. Empty
// PATH elements are skipped, so an empty PATH has no candidates.
func SearchPath(pathEnv, cmd string) []string {
	var candidates []string
	for _, dir := range strings.Split(pathEnv, ":") {
		if dir == "" {
			continue
		}
		candidates = append(candidates, dir+"/"+cmd)
	}
	return candidates
}

// Resolver starts programs, searching PATH for bare command names.
type Resolver struct {
	// Getenv reads PATH, it defaults to os.Getenv. PATH is read on every
	// call, never cached.
	Getenv func(string) string
	// Start defaults to os.StartProcess.
	Start StartFunc
}

func (r *Resolver) getenv(key string) string {
	if r.Getenv == nil {
		return os.Getenv(key)
	}
	return r.Getenv(key)
}

func (r *Resolver) start(name string, argv []string, attr *os.ProcAttr) (*os.Process, error) {
	if r.Start == nil {
		return os.StartProcess(name, argv, attr)
	}
	return r.Start(name, argv, attr)
}

// StartResolved starts argv[0] with the full argument vector and returns the
// running process along with the path that was executed.
//
// Bare names are tried against each PATH directory in order and the first one
// that executes wins. argv is passed through untouched for every attempt, so
// the program sees the name as typed in argv[0].
func (r *Resolver) StartResolved(argv []string, attr *os.ProcAttr) (*os.Process, string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, "", ErrEmptyCommand
	}
	cmd := argv[0]

	if !NeedsResolution(cmd) {
		proc, err := r.start(cmd, argv, attr)
		switch {
		case err == nil:
			return proc, cmd, nil
		case IsExecFailure(err):
			return nil, "", &ExecError{Name: cmd, Err: err}
		default:
			return nil, "", fmt.Errorf("%w: %v", ErrFork, err)
		}
	}

	for _, candidate := range SearchPath(r.getenv(EnvPath), cmd) {
		proc, err := r.start(candidate, argv, attr)
		switch {
		case err == nil:
			return proc, candidate, nil
		case IsExecFailure(err):
			continue
		default:
			return nil, "", fmt.Errorf("%w: %v", ErrFork, err)
		}
	}

	return nil, "", &ExecError{Name: cmd, Err: ErrNotFound}
}

// IsExecFailure reports whether err means the file could not be executed, as
// opposed to the process not being created at all. EPERM is not one of them:
// the child's own setpgid or terminal hand over also fail with it.
func IsExecFailure(err error) bool {
	for _, errno := range []syscall.Errno{
		syscall.ENOENT,
		syscall.EACCES,
		syscall.ENOEXEC,
		syscall.ENOTDIR,
		syscall.EISDIR,
		syscall.ELOOP,
		syscall.ENAMETOOLONG,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// errnoText strips the operation and path from an *os.PathError.
func errnoText(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
