package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/MattEstHaut/RediSharp/internal/cli/connection"
	"github.com/MattEstHaut/RediSharp/internal/cli/repl"
)

// ExecCommand runs one command and prints its reply.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Aliases:   []string{"x"},
		Usage:     "Run a single command",
		ArgsUsage: "COMMAND [ARG...] | -l 'COMMAND LINE'",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "line",
				Aliases: []string{"l"},
				Usage:   "command line to tokenize, quotes allowed",
			},
		},
		Action: runExec,
	}
}

func runExec(c *cli.Context) error {
	args := c.Args().Slice()
	if c.IsSet("line") {
		args = append(repl.Tokenize(c.String("line")), args...)
	}
	if len(args) == 0 {
		return cli.Exit("exec: missing command", 2)
	}

	s := GetSession(c)
	ctx, cancel := s.commandContext(c.Context)
	defer cancel()

	client, err := connection.Dial(ctx, s.Addr)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer client.Close()

	reply, err := client.Do(ctx, args...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("exec: %v", err), 1)
	}
	if err := s.Formatter.Format(c.App.Writer, reply); err != nil {
		return err
	}
	if reply.IsError() {
		return cli.Exit("", 1)
	}
	return nil
}
