// Package command defines the redisharp-cli application.
//
// With no subcommand the CLI opens an interactive session against
// [host [port]]. The exec subcommand runs one command and exits non-zero
// on an error reply; bench measures throughput over a connection pool.
//
// Settings come from ~/.redisharp/cli.yaml, then positional arguments,
// then flags.
package command
