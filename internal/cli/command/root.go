package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/MattEstHaut/RediSharp/internal/cli/config"
	"github.com/MattEstHaut/RediSharp/internal/cli/connection"
	"github.com/MattEstHaut/RediSharp/internal/cli/output"
	"github.com/MattEstHaut/RediSharp/internal/cli/repl"
	verbs "github.com/MattEstHaut/RediSharp/internal/core/command"
	"github.com/MattEstHaut/RediSharp/internal/infra/buildinfo"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

const sessionKey = "session"

// Session carries the settings resolved before any command runs.
type Session struct {
	Addr      string
	Format    output.Format
	Formatter output.Formatter
	History   string
	Timeout   time.Duration
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "redisharp-cli",
		Usage:     "RediSharp command-line client",
		UsageText: "redisharp-cli [global options] [host [port]]\n   redisharp-cli [global options] VERB [ARG...]\n   redisharp-cli [global options] command [arguments...]",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			ExecCommand(),
			BenchCommand(),
		},
		Before: before,
		Action: interactive,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"REDISHARP_CLI_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "host",
			Aliases: []string{"H"},
			Usage:   "server host",
			EnvVars: []string{"REDISHARP_HOST"},
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "server port",
			EnvVars: []string{"REDISHARP_PORT"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json, yaml",
		},
		&cli.StringFlag{
			Name:  "history",
			Usage: "REPL history file",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored output",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-command timeout, 0 for none",
			Value: 0,
		},
	}
}

// before merges the config file, positional host and port, and flags,
// in increasing priority.
func before(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	// Positional [host [port]] only applies to the REPL.
	if isHostArgs(c) {
		if c.NArg() > 2 {
			return cli.Exit("usage: redisharp-cli [host [port]]", 2)
		}
		cfg.Host = c.Args().Get(0)
		if c.NArg() == 2 {
			port, err := parsePort(c.Args().Get(1))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			cfg.Port = port
		}
	}

	if c.IsSet("host") {
		cfg.Host = c.String("host")
	}
	if c.IsSet("port") {
		port, err := parsePort(strconv.Itoa(c.Int("port")))
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		cfg.Port = port
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("history") {
		cfg.History = c.String("history")
	}
	if c.Bool("no-color") {
		cfg.NoColor = true
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	history := cfg.History
	if history == "" {
		history = repl.DefaultHistoryPath()
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[sessionKey] = &Session{
		Addr:      cfg.Addr(),
		Format:    format,
		Formatter: output.NewFormatter(format, !cfg.NoColor && !color.NoColor),
		History:   history,
		Timeout:   c.Duration("timeout"),
	}
	return nil
}

// isHostArgs reports whether the positional arguments name a server
// rather than a subcommand or a command to run.
func isHostArgs(c *cli.Context) bool {
	first := c.Args().First()
	return c.Args().Present() &&
		c.App.Command(first) == nil &&
		verbs.ParseVerb(first) == verbs.VerbUnknown
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return port, nil
}

// GetSession retrieves the resolved settings from context.
func GetSession(c *cli.Context) *Session {
	if s, ok := c.App.Metadata[sessionKey].(*Session); ok {
		return s
	}
	return &Session{
		Addr:      config.Default().Addr(),
		Format:    output.FormatText,
		Formatter: output.NewTextFormatter(false),
	}
}

// commandContext bounds a single round trip by the --timeout flag.
func (s *Session) commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout > 0 {
		return context.WithTimeout(parent, s.Timeout)
	}
	return context.WithCancel(parent)
}

type timeoutDoer struct {
	s    *Session
	doer repl.Doer
}

func (d timeoutDoer) Do(ctx context.Context, args ...string) (resp.Value, error) {
	ctx, cancel := d.s.commandContext(ctx)
	defer cancel()
	return d.doer.Do(ctx, args...)
}

// interactive runs the positional command when the first argument is a
// known verb, and otherwise starts the REPL against the resolved server.
func interactive(c *cli.Context) error {
	if c.Args().Present() && !isHostArgs(c) {
		return runExec(c)
	}
	s := GetSession(c)

	pool := connection.NewPool(c.Context, s.Addr, connection.PoolConfig{MaxTotal: 1, MaxIdle: 1})
	defer pool.Close(context.Background())

	// Fail fast on an unreachable server.
	if _, err := (timeoutDoer{s, pool}).Do(c.Context, "PING"); err != nil {
		return cli.Exit(fmt.Sprintf("could not connect: %v", err), 1)
	}

	r := repl.New(timeoutDoer{s, pool},
		repl.WithIO(c.App.Reader, c.App.Writer, c.App.ErrWriter),
		repl.WithFormatter(s.Formatter),
		repl.WithHistory(repl.NewHistory(s.History)),
	)
	return r.Run(c.Context)
}
