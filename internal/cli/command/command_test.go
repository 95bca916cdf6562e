package command

import (
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/MattEstHaut/RediSharp/internal/cli/connection"
	"github.com/MattEstHaut/RediSharp/internal/core/service"
	"github.com/MattEstHaut/RediSharp/internal/server/redisserver"
	"github.com/MattEstHaut/RediSharp/internal/storage/memory"
)

func startServer(t *testing.T) (host, port string) {
	t.Helper()
	exec := service.NewExecutor(memory.New(), nil)
	exec.Start()

	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := redisserver.New(cfg, exec, nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = exec.Stop(ctx)
	})

	host, port, err := net.SplitHostPort(srv.Addr().String())
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	return host, port
}

type result struct {
	stdout, stderr string
	err            error
}

// run executes the app with an isolated config file and captured output.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}

	dir := t.TempDir()
	full := append([]string{"redisharp-cli",
		"--config", filepath.Join(dir, "cli.yaml"),
		"--history", filepath.Join(dir, "history"),
		"--no-color",
	}, args...)
	err := app.Run(full)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func exitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

func TestExec(t *testing.T) {
	host, port := startServer(t)
	base := []string{"--host", host, "--port", port}

	tests := []struct {
		name     string
		args     []string
		want     string
		wantCode int
	}{
		{"set", []string{"exec", "SET", "k", "hello world"}, "OK\n", 0},
		{"get", []string{"exec", "GET", "k"}, "hello world\n", 0},
		{"missing", []string{"exec", "GET", "nope"}, "null\n", 0},
		{"line", []string{"exec", "-l", `SET q 'it\'s'`}, "OK\n", 0},
		{"line get", []string{"exec", "GET", "q"}, "it's\n", 0},
		{"error reply", []string{"exec", "NOPE"}, "Unknown command\n", 1},
		{"json", []string{"--output", "json", "exec", "GET", "k"}, "\"hello world\"\n", 0},
		{"yaml null", []string{"-o", "yaml", "exec", "GET", "nope"}, "null\n", 0},
		{"verb without exec", []string{"GET", "k"}, "hello world\n", 0},
		{"lower-case verb", []string{"echo", "hi"}, "hi\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, "", append(append([]string{}, base...), tt.args...)...)
			if code := exitCode(r.err); code != tt.wantCode {
				t.Fatalf("exit code = %d (%v), want %d", code, r.err, tt.wantCode)
			}
			if r.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", r.stdout, tt.want)
			}
		})
	}
}

func TestExec_Usage(t *testing.T) {
	host, port := startServer(t)

	r := run(t, "", "--host", host, "--port", port, "exec")
	if exitCode(r.err) != 2 {
		t.Errorf("missing command exit code = %d, want 2", exitCode(r.err))
	}

	r = run(t, "", "--output", "table", "exec", "PING")
	if exitCode(r.err) != 2 {
		t.Errorf("bad format exit code = %d, want 2", exitCode(r.err))
	}
}

func TestExec_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	r := run(t, "", "--host", "127.0.0.1", "--port", port, "exec", "PING")
	if exitCode(r.err) != 1 {
		t.Errorf("exit code = %d (%v), want 1", exitCode(r.err), r.err)
	}
}

func TestInteractive_PositionalHostPort(t *testing.T) {
	host, port := startServer(t)

	r := run(t, "SET a 'x y'\n\nGET a\nDEL a\nGET a\n", host, port)
	if r.err != nil {
		t.Fatalf("Run: %v", r.err)
	}
	want := "> OK\n> > x y\n> OK\n> null\n> \n"
	if r.stdout != want {
		t.Errorf("stdout = %q, want %q", r.stdout, want)
	}
}

func TestInteractive_BadPort(t *testing.T) {
	r := run(t, "", "localhost", "notaport")
	if exitCode(r.err) != 2 {
		t.Errorf("exit code = %d, want 2", exitCode(r.err))
	}
}

func TestBench(t *testing.T) {
	host, port := startServer(t)

	r := run(t, "", "--host", host, "--port", port, "bench", "-n", "200", "-c", "4", "-t", "ping,set,get")
	if r.err != nil {
		t.Fatalf("bench: %v (%s)", r.err, r.stderr)
	}
	for _, test := range []string{"TEST", "PING", "SET", "GET"} {
		if !strings.Contains(r.stdout, test) {
			t.Errorf("output lacks %s:\n%s", test, r.stdout)
		}
	}

	r = run(t, "", "--host", host, "--port", port, "-o", "json", "bench", "-n", "50", "-t", "append")
	if r.err != nil {
		t.Fatalf("bench json: %v", r.err)
	}
	if !strings.Contains(r.stdout, `"test": "APPEND"`) || !strings.Contains(r.stdout, `"requests": 50`) {
		t.Errorf("json output = %s", r.stdout)
	}

	r = run(t, "", "--host", host, "--port", port, "bench", "-t", "flushall")
	if exitCode(r.err) != 2 {
		t.Errorf("unknown test exit code = %d, want 2", exitCode(r.err))
	}
}

func TestRunBench_CountsErrorReplies(t *testing.T) {
	host, port := startServer(t)
	ctx := context.Background()

	pool := connection.NewPool(ctx, net.JoinHostPort(host, port), connection.PoolConfig{MaxTotal: 2, MaxIdle: 2})
	defer pool.Close(ctx)

	res, err := RunBench(ctx, pool, "del", BenchOptions{Requests: 20, Clients: 2, Size: 1, Keyspace: 5})
	if err != nil {
		t.Fatalf("RunBench: %v", err)
	}
	if res.Requests != 20 || res.Errors != 0 {
		t.Errorf("result = %+v", res)
	}
	if res.P50 > res.P99 || res.P99 > res.Max {
		t.Errorf("percentiles out of order: %+v", res)
	}
	if res.OpsPerSec() <= 0 {
		t.Errorf("OpsPerSec() = %v", res.OpsPerSec())
	}
}

func TestPercentile(t *testing.T) {
	lat := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    int
		want time.Duration
	}{
		{50, 5},
		{99, 10},
		{100, 10},
		{1, 1},
	}
	for _, tt := range tests {
		if got := percentile(lat, tt.p); got != tt.want {
			t.Errorf("percentile(%d) = %d, want %d", tt.p, got, tt.want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("percentile of empty slice should be 0")
	}
}
