package shell

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]Builtin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// Builtin is a registered builtin and its one line description.
type Builtin struct {
	ShellBuiltin
	Short string
}

// IsBuiltin reports whether name is run by the shell itself.
func IsBuiltin(name string) bool {
	_, ok := AllBuiltins[name]
	return ok
}

// BuiltinNames returns the builtin names in sorted order.
func BuiltinNames() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help prints a description of every builtin.
func Help(s *Shell, args []string) int {
	for _, name := range BuiltinNames() {
		fmt.Fprintf(s.Stdout, "%s - %s\n", name, AllBuiltins[name].Short)
	}
	return 0
}

// Exit quits the shell with an optional status.
func Exit(s *Shell, args []string) int {
	s.Quit = true

	switch len(args) {
	case 1:
		return s.lastRet
	case 2:
		status, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(s.Stderr, "%s: %s: numeric argument required\n", args[0], args[1])
			return 2
		}
		return status
	default:
		s.Quit = false
		fmt.Fprintf(s.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}
}

// Pwd prints the working directory.
func Pwd(s *Shell, args []string) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(s.Stderr, "%s: %v\n", args[0], err)
		return 1
	}
	fmt.Fprintln(s.Stdout, wd)
	return 0
}

// Cd changes the working directory and prints the new one.
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		args = append(args, os.Getenv(EnvHome))
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(s.Stderr, "%s: %s: %s\n", args[0], args[1], errText(err))
			return 1
		}
	default:
		fmt.Fprintf(s.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	return Pwd(s, args)
}

// History lists or clears the lines read so far.
func History(s *Shell, args []string) int {
	opts := getopt.New()
	clearOpt := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: history [-c]")
		fmt.Fprintln(w, "Display the history list with line numbers.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil {
			return 1
		}
		return 0
	}

	if *clearOpt {
		if s.Readline != nil {
			s.Readline.Operation.ResetHistory()
		}
		s.history = nil
		return 0
	}

	for i, line := range s.history {
		fmt.Fprintf(s.Stdout, "% 5d  %s\n", i, line)
	}
	return 0
}

func init() {
	AllBuiltins["?"] = Builtin{ShellBuiltinFunc(Help), "show this help menu"}
	AllBuiltins["help"] = Builtin{ShellBuiltinFunc(Help), "show this help menu"}
	AllBuiltins["exit"] = Builtin{ShellBuiltinFunc(Exit), "exit the command shell"}
	AllBuiltins["pwd"] = Builtin{ShellBuiltinFunc(Pwd), "print current working directory"}
	AllBuiltins["cd"] = Builtin{ShellBuiltinFunc(Cd), "change current working directory"}
	AllBuiltins["history"] = Builtin{ShellBuiltinFunc(History), "display or clear the command history"}
}
