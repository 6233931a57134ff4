// Package logger is a standardized event logging framework for the shell.
//
// Every launch, exit and failure of a session is written as one JSON object
// per line so sessions can be summarized afterwards with Report.
package logger
