package shell

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/jobsh/core/config"
	"github.com/josephlewis42/jobsh/core/logger"
	"github.com/josephlewis42/jobsh/core/proc"
)

const (
	EnvHome = "HOME"
	EnvUser = "USER"

	// Name prefixes the shell's own error messages.
	Name = "sh"
)

var promptColor = color.New(color.FgGreen, color.Bold)

// Shell reads lines, runs builtins itself and hands everything else to the
// launcher.
type Shell struct {
	Config   *config.Configuration
	Session  *proc.Session
	Launcher *proc.Launcher
	Events   *logger.SessionLogger
	Readline *readline.Instance

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Set to true to quit the shell
	Quit bool

	gate    *lineGate
	lineNum int
	lastRet int
	history []string
}

// New creates a shell that runs jobs in session on the process's standard
// streams.
func New(cfg *config.Configuration, session *proc.Session, events *logger.SessionLogger) *Shell {
	launcher := proc.NewLauncher(session, events)
	launcher.Resolver.Getenv = cfg.Getenv

	return &Shell{
		Config:   cfg,
		Session:  session,
		Launcher: launcher,
		Events:   events,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// LastStatus is the status of the most recent command.
func (s *Shell) LastStatus() int {
	return s.lastRet
}

// RunCommand runs a single line and returns its status.
func (s *Shell) RunCommand(line string) int {
	tokens, err := Tokenize(line)
	if err != nil {
		fmt.Fprintf(s.Stderr, "%s: syntax error: %v\n", Name, err)
		s.lastRet = 2
		return s.lastRet
	}

	if len(tokens) == 0 {
		return s.lastRet
	}

	if builtin, ok := AllBuiltins[tokens[0]]; ok {
		s.lastRet = builtin.Main(s, tokens)
		s.Events.Record(&logger.Builtin{Command: tokens, Status: s.lastRet})
		return s.lastRet
	}

	job, err := s.Launcher.Launch(tokens)
	switch {
	case errors.Is(err, proc.ErrEmptyCommand):
		token := "newline"
		if proc.NeedsBackground(tokens) {
			token = proc.OpBackground
		}
		fmt.Fprintf(s.Stderr, "%s: syntax error near unexpected token `%s'\n", Name, token)
		s.lastRet = 2
	case job == nil:
		fmt.Fprintf(s.Stderr, "%s: %v\n", Name, err)
		s.lastRet = 1
	default:
		if err != nil && job.Pid != 0 {
			log.Printf("job %d: %v", job.Pid, err)
		}
		s.lastRet = job.ExitCode
	}

	return s.lastRet
}

// Run reads and runs lines until input ends or exit is called. It returns the
// status of the last command.
func (s *Shell) Run() int {
	if err := s.initReadline(); err != nil {
		fmt.Fprintf(s.Stderr, "%s: %v\n", Name, err)
		return 1
	}
	defer func() {
		s.gate.Close()
		s.Readline.Close()
	}()

	for !s.Quit {
		s.Readline.SetPrompt(s.prompt())
		s.gate.Open()
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return s.lastRet // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			return 1
		}

		s.lineNum++
		if strings.TrimSpace(line) == "" {
			continue
		}

		s.history = append(s.history, line)
		s.RunCommand(line)
	}

	return s.lastRet
}

func (s *Shell) initReadline() error {
	s.gate = newLineGate(s.Stdin)

	interactive := s.Session != nil && s.Session.Interactive
	cfg := &readline.Config{
		Stdin:        s.gate,
		Stdout:       s.Stdout,
		Stderr:       s.Stderr,
		HistoryFile:  s.Config.HistoryPath(),
		HistoryLimit: s.Config.HistoryLimit,

		FuncIsTerminal: func() bool {
			return interactive
		},
		// The line editor would suspend its parent on ^Z.
		FuncFilterInputRune: func(r rune) (rune, bool) {
			return r, r != readline.CharCtrlZ
		},
	}

	if !interactive {
		cfg.FuncMakeRaw = func() error { return nil }
		cfg.FuncExitRaw = func() error { return nil }
	}

	if err := cfg.Init(); err != nil {
		return err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	s.Readline = rl
	return nil
}

// prompt expands the configured prompt. Nothing is shown unless the shell is
// interactive.
func (s *Shell) prompt() string {
	if s.Session == nil || !s.Session.Interactive {
		return ""
	}

	prompt := s.expandPrompt(s.Config.Prompt)
	if s.Config.ColorPrompt {
		return promptColor.Sprint(prompt)
	}
	return prompt
}

func (s *Shell) expandPrompt(prompt string) string {
	host, _ := os.Hostname()
	prompt = strings.ReplaceAll(prompt, `\u`, os.Getenv(EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, host)

	pwd, _ := os.Getwd()
	if home := os.Getenv(EnvHome); home != "" && strings.HasPrefix(pwd, home) {
		pwd = "~" + strings.TrimPrefix(pwd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if os.Geteuid() == 0 {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return strings.ReplaceAll(prompt, `\#`, strconv.Itoa(s.lineNum))
}

// errText gives the lowercase description of a filesystem error without the
// operation and path.
func errText(err error) string {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
