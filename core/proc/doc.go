// Package proc launches external programs as jobs of an interactive shell.
//
// A command line arrives already split into tokens. The launcher strips the
// redirection operators and the background marker, resolves the program
// against PATH, starts it in its own process group and, for foreground jobs,
// lends it the controlling terminal until it exits or stops.
package proc
