// Package output renders server replies for redisharp-cli.
//
// Replies can be printed as text (the default, colored on terminals), as
// JSON or as YAML. Map entries keep the order in which the server sent
// them in every format.
package output
