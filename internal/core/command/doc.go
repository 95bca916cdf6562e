// Package command implements the command set.
//
// A command is a pure function of a Store and an argument list that
// returns exactly one protocol value. Validation failures are returned as
// simple error values, never as Go errors, so every call yields something
// that can be written back to the client.
//
// Verbs form a closed set. Dispatch goes through a lookup table keyed by
// Verb; names are matched case-insensitively by ParseVerb.
//
// Compound commands (APPEND, POP, TAIL, LOCK) run their read and their
// write inside one critical section of the store so the background
// sweeper cannot delete the key between the two.
package command
