// Command redisharp-cli is the interactive client for redisharp-server.
//
// Usage:
//
//	redisharp-cli [host [port]]        interactive session, default localhost 6379
//	redisharp-cli GET key              run one command
//	redisharp-cli exec -l "SET k 'a b'" run one quoted command line
//	redisharp-cli bench -n 100000      measure throughput
//
// In a session each line is split on spaces; single or double quotes group
// words and a backslash escapes the next character inside quotes.
package main
