// Package commands wires the convoy CLI subcommands.
package commands

// Flags holds global CLI flags shared by all subcommands.
type Flags struct {
	LogLevel string
	LogFile  string
}
