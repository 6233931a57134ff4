package proc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Job describes one launched command line.
type Job struct {
	// Pid of the started program.
	Pid int
	// Pgid always equals Pid, every job leads its own process group.
	Pgid int
	// Foreground is false for jobs started with a trailing &.
	Foreground bool
	// Path is the file that was executed.
	Path string
	// Argv is the argument vector the program received.
	Argv []string

	// ExitCode is the status of a finished foreground job, 128+n when it was
	// killed or stopped by signal n, and 1 when nothing could be run.
	ExitCode int
	// Signal is set when the job was killed or stopped by a signal.
	Signal unix.Signal
	// Stopped is true when the job was suspended rather than terminated.
	Stopped bool
}

func (j *Job) setStatus(ws unix.WaitStatus) {
	switch {
	case ws.Exited():
		j.ExitCode = ws.ExitStatus()
	case ws.Signaled():
		j.Signal = ws.Signal()
		j.ExitCode = 128 + int(j.Signal)
	case ws.Stopped():
		j.Stopped = true
		j.Signal = ws.StopSignal()
		j.ExitCode = 128 + int(j.Signal)
	}
}

func (j *Job) String() string {
	switch {
	case j.Stopped:
		return fmt.Sprintf("[%d] Stopped (%s)", j.Pid, j.Signal)
	case j.Signal != 0:
		return fmt.Sprintf("[%d] Terminated (%s)", j.Pid, j.Signal)
	default:
		return fmt.Sprintf("[%d] Exit %d", j.Pid, j.ExitCode)
	}
}
