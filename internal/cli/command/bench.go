package command

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MattEstHaut/RediSharp/internal/cli/connection"
	"github.com/MattEstHaut/RediSharp/internal/cli/output"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// BenchCommand measures server throughput over a pool of connections.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Measure command throughput and latency",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "requests",
				Aliases: []string{"n"},
				Usage:   "requests per test",
				Value:   10000,
			},
			&cli.IntFlag{
				Name:    "clients",
				Aliases: []string{"c"},
				Usage:   "parallel connections",
				Value:   8,
			},
			&cli.IntFlag{
				Name:    "size",
				Aliases: []string{"d"},
				Usage:   "value size for SET and APPEND",
				Value:   16,
			},
			&cli.IntFlag{
				Name:    "keyspace",
				Aliases: []string{"r"},
				Usage:   "number of distinct keys",
				Value:   1000,
			},
			&cli.StringFlag{
				Name:    "tests",
				Aliases: []string{"t"},
				Usage:   "comma-separated tests: ping, set, get, append, del",
				Value:   "ping,set,get",
			},
		},
		Action: runBench,
	}
}

// BenchResult summarizes one test.
type BenchResult struct {
	Test     string
	Requests int
	Errors   int64
	Elapsed  time.Duration
	P50      time.Duration
	P99      time.Duration
	Max      time.Duration
}

// OpsPerSec returns the throughput of the test.
func (r BenchResult) OpsPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Requests) / r.Elapsed.Seconds()
}

// BenchOptions configures RunBench.
type BenchOptions struct {
	Requests int
	Clients  int
	Size     int
	Keyspace int
}

// benchTests maps a test name to the command it sends for request i.
var benchTests = map[string]func(key, value string) []string{
	"ping":   func(string, string) []string { return []string{"PING"} },
	"set":    func(k, v string) []string { return []string{"SET", k, v} },
	"get":    func(k, _ string) []string { return []string{"GET", k} },
	"append": func(k, v string) []string { return []string{"APPEND", k, v} },
	"del":    func(k, _ string) []string { return []string{"DEL", k} },
}

func runBench(c *cli.Context) error {
	opts := BenchOptions{
		Requests: c.Int("requests"),
		Clients:  c.Int("clients"),
		Size:     c.Int("size"),
		Keyspace: c.Int("keyspace"),
	}
	if opts.Requests < 1 || opts.Clients < 1 || opts.Size < 0 || opts.Keyspace < 1 {
		return cli.Exit("bench: requests, clients and keyspace must be positive", 2)
	}

	var tests []string
	for _, name := range strings.Split(c.String("tests"), ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := benchTests[name]; !ok {
			return cli.Exit(fmt.Sprintf("bench: unknown test %q", name), 2)
		}
		tests = append(tests, name)
	}

	s := GetSession(c)
	pool := connection.NewPool(c.Context, s.Addr, connection.PoolConfig{
		MaxTotal: opts.Clients,
		MaxIdle:  opts.Clients,
	})
	defer pool.Close(context.Background())

	results := make([]BenchResult, 0, len(tests))
	for _, name := range tests {
		r, err := RunBench(c.Context, pool, name, opts)
		if err != nil {
			return cli.Exit(fmt.Sprintf("bench %s: %v", name, err), 1)
		}
		results = append(results, r)
	}
	return printBench(c, s, results)
}

// RunBench sends opts.Requests commands of the named test through pool
// from opts.Clients goroutines. Error replies are counted; a transport
// failure aborts the run.
func RunBench(ctx context.Context, pool *connection.Pool, test string, opts BenchOptions) (BenchResult, error) {
	build, ok := benchTests[test]
	if !ok {
		return BenchResult{}, fmt.Errorf("unknown test %q", test)
	}
	value := strings.Repeat("x", opts.Size)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		next      atomic.Int64
		errs      atomic.Int64
		latencies = make([]time.Duration, opts.Requests)
		firstErr  error
		errOnce   sync.Once
		wg        sync.WaitGroup
	)

	start := time.Now()
	for w := 0; w < opts.Clients; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				i := int(next.Add(1) - 1)
				if i >= opts.Requests || ctx.Err() != nil {
					return
				}
				key := fmt.Sprintf("bench:%d", rng.Intn(opts.Keyspace))

				t0 := time.Now()
				reply, err := pool.Do(ctx, build(key, value)...)
				latencies[i] = time.Since(t0)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				if reply.IsError() {
					errs.Add(1)
				}
			}
		}(start.UnixNano() + int64(w))
	}
	wg.Wait()
	elapsed := time.Since(start)

	if firstErr != nil {
		return BenchResult{}, firstErr
	}

	sort.Slice(latencies, func(a, b int) bool { return latencies[a] < latencies[b] })
	return BenchResult{
		Test:     strings.ToUpper(test),
		Requests: opts.Requests,
		Errors:   errs.Load(),
		Elapsed:  elapsed,
		P50:      percentile(latencies, 50),
		P99:      percentile(latencies, 99),
		Max:      latencies[len(latencies)-1],
	}, nil
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	i := (len(sorted)*p + 99) / 100
	if i > 0 {
		i--
	}
	return sorted[i]
}

func printBench(c *cli.Context, s *Session, results []BenchResult) error {
	if s.Format == output.FormatText {
		tbl := output.NewTable("TEST", "REQUESTS", "ERRORS", "OPS/SEC", "P50", "P99", "MAX")
		for _, r := range results {
			tbl.AddRow(r.Test, r.Requests, r.Errors, fmt.Sprintf("%.0f", r.OpsPerSec()), r.P50, r.P99, r.Max)
		}
		return tbl.Render(c.App.Writer)
	}

	rows := make([]resp.Value, 0, len(results))
	for _, r := range results {
		rows = append(rows, resp.Map(
			resp.Pair{Key: resp.BulkString("test"), Value: resp.BulkString(r.Test)},
			resp.Pair{Key: resp.BulkString("requests"), Value: resp.Integer(int64(r.Requests))},
			resp.Pair{Key: resp.BulkString("errors"), Value: resp.Integer(r.Errors)},
			resp.Pair{Key: resp.BulkString("ops_per_sec"), Value: resp.Integer(int64(r.OpsPerSec()))},
			resp.Pair{Key: resp.BulkString("p50_us"), Value: resp.Integer(r.P50.Microseconds())},
			resp.Pair{Key: resp.BulkString("p99_us"), Value: resp.Integer(r.P99.Microseconds())},
			resp.Pair{Key: resp.BulkString("max_us"), Value: resp.Integer(r.Max.Microseconds())},
		))
	}
	return s.Formatter.Format(c.App.Writer, resp.Array(rows...))
}
