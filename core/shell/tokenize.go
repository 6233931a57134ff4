package shell

import (
	"github.com/anmitsu/go-shlex"
)

// Tokenize splits a line into words. Operators are only recognized by the
// launcher when they stand alone, so "a>b" is one word.
func Tokenize(line string) ([]string, error) {
	return shlex.Split(line, true)
}
