package proc

import (
	"errors"
	"os"
)

// Reserved operator tokens.
const (
	OpInput      = "<"
	OpOutput     = ">"
	OpBackground = "&"
)

// ErrMissingRedirectTarget is returned for a redirection operator with no file name after it.
var ErrMissingRedirectTarget = errors.New("missing file name for redirection")

// RedirectError is returned when a redirection can't be set up.
type RedirectError struct {
	Op   string
	File string
	Err  error
}

func (e *RedirectError) Error() string {
	if e.File == "" {
		return "syntax error near " + e.Op + ": " + e.Err.Error()
	}
	return e.File + ": " + errnoText(e.Err)
}

func (e *RedirectError) Unwrap() error { return e.Err }

// Redirection holds the files a job's standard streams are bound to. Empty
// names leave the stream inherited from the shell.
type Redirection struct {
	Input  string
	Output string
}

// NeedsRedirection reports whether any token is a redirection operator.
func NeedsRedirection(tokens []string) bool {
	for _, tok := range tokens {
		if tok == OpInput || tok == OpOutput {
			return true
		}
	}
	return false
}

// ParseRedirection splits tokens into the argument vector and the requested
// redirection. Operators and their file names never reach the argument
// vector. Only the first operator of each direction is honored; later ones
// are dropped along with their file name.
func ParseRedirection(tokens []string) ([]string, Redirection, error) {
	var redir Redirection
	argv := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok != OpInput && tok != OpOutput {
			argv = append(argv, tok)
			continue
		}

		if i+1 >= len(tokens) {
			return nil, Redirection{}, &RedirectError{Op: tok, Err: ErrMissingRedirectTarget}
		}
		i++
		file := tokens[i]

		switch {
		case tok == OpInput && redir.Input == "":
			redir.Input = file
		case tok == OpOutput && redir.Output == "":
			redir.Output = file
		}
	}

	return argv, redir, nil
}

// Streams are the standard input, output and error handed to a job.
type Streams struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	opened []*os.File
}

// Files returns the streams in file descriptor order.
func (s *Streams) Files() []*os.File {
	return []*os.File{s.Stdin, s.Stdout, s.Stderr}
}

// Close closes the files opened for redirection, inherited streams are left
// alone. The child keeps its own duplicates.
func (s *Streams) Close() error {
	var lastErr error
	for _, f := range s.opened {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	s.opened = nil
	return lastErr
}

// Open binds the redirected streams on top of inherited. Output files are
// created or truncated. On failure nothing is left open.
func (r Redirection) Open(inherited Streams) (*Streams, error) {
	out := &Streams{
		Stdin:  inherited.Stdin,
		Stdout: inherited.Stdout,
		Stderr: inherited.Stderr,
	}

	if r.Input != "" {
		fd, err := os.Open(r.Input)
		if err != nil {
			return nil, &RedirectError{Op: OpInput, File: r.Input, Err: err}
		}
		out.opened = append(out.opened, fd)
		out.Stdin = fd
	}

	if r.Output != "" {
		fd, err := os.Create(r.Output)
		if err != nil {
			out.Close()
			return nil, &RedirectError{Op: OpOutput, File: r.Output, Err: err}
		}
		out.opened = append(out.opened, fd)
		out.Stdout = fd
	}

	return out, nil
}

// NeedsBackground reports whether the command line ends in a standalone
// background marker.
func NeedsBackground(tokens []string) bool {
	return len(tokens) > 0 && tokens[len(tokens)-1] == OpBackground
}

// StripBackground returns tokens without a trailing background marker.
func StripBackground(tokens []string) []string {
	if NeedsBackground(tokens) {
		return tokens[:len(tokens)-1]
	}
	return tokens
}
