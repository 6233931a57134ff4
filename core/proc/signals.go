package proc

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// JobControlSignals are delivered by the terminal to its foreground process
// group. The shell shields itself from them while idle; jobs get the default
// disposition.
var JobControlSignals = []os.Signal{unix.SIGINT, unix.SIGTSTP, unix.SIGTTOU}

// SignalPolicy applies the shell's job-control signal dispositions.
//
// Shielded signals are caught and discarded, never ignored. Exec resets a
// caught signal to its default but keeps an ignored one ignored.
type SignalPolicy struct {
	sink     chan os.Signal
	shielded bool
}

// NewSignalPolicy creates a policy that has not yet touched any signal.
func NewSignalPolicy() *SignalPolicy {
	// Nobody reads sink; deliveries beyond its capacity are dropped by the
	// signal package.
	return &SignalPolicy{sink: make(chan os.Signal, 1)}
}

// Shield stops the job-control signals from affecting the shell.
func (p *SignalPolicy) Shield() {
	signal.Notify(p.sink, JobControlSignals...)
	p.shielded = true
}

// Shielded reports whether Shield was called.
func (p *SignalPolicy) Shielded() bool {
	return p.shielded
}

// CatchForLaunch catches every job-control signal until the returned function
// is called. A program started in between begins with default handling for
// them, even when the shell itself was started with them ignored. Afterwards
// an unshielded shell gets its previous dispositions back.
func (p *SignalPolicy) CatchForLaunch() (done func()) {
	var ignored []os.Signal
	for _, sig := range JobControlSignals {
		if signal.Ignored(sig) {
			ignored = append(ignored, sig)
		}
	}

	signal.Notify(p.sink, JobControlSignals...)

	return func() {
		if p.shielded {
			return
		}
		signal.Reset(JobControlSignals...)
		if len(ignored) > 0 {
			signal.Ignore(ignored...)
		}
	}
}

// WithTTOUIgnored runs fn with SIGTTOU ignored. A shell in a background
// process group must ignore SIGTTOU to change the terminal's foreground group
// or modes without being stopped.
func (p *SignalPolicy) WithTTOUIgnored(fn func() error) error {
	signal.Ignore(unix.SIGTTOU)
	defer p.restore(unix.SIGTTOU)
	return fn()
}

func (p *SignalPolicy) restore(sig os.Signal) {
	if p.shielded {
		signal.Notify(p.sink, sig)
	} else {
		signal.Reset(sig)
	}
}

// Release returns all job-control signals to their default handling.
func (p *SignalPolicy) Release() {
	signal.Stop(p.sink)
	signal.Reset(JobControlSignals...)
	p.shielded = false
}
