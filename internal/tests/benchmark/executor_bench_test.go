package benchmark

import (
	"context"
	"testing"

	"github.com/MattEstHaut/RediSharp/internal/core/command"
	"github.com/MattEstHaut/RediSharp/internal/core/service"
	"github.com/MattEstHaut/RediSharp/internal/storage/memory"
)

func newExecutor(b *testing.B) *service.Executor {
	b.Helper()
	e := service.NewExecutor(memory.New(), nil)
	e.Start()
	b.Cleanup(func() { _ = e.Stop(context.Background()) })
	return e
}

// BenchmarkExecutorSubmit measures one caller's round trip through the
// queue and worker.
func BenchmarkExecutorSubmit(b *testing.B) {
	e := newExecutor(b)
	ctx := context.Background()
	args := []string{"key", value(32)}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := e.Submit(ctx, command.VerbSet, args); err != nil {
			b.Fatalf("Submit: %v", err)
		}
	}
}

// BenchmarkExecutorSubmitParallel measures throughput when many
// connections contend for the single worker.
func BenchmarkExecutorSubmitParallel(b *testing.B) {
	e := newExecutor(b)
	ctx := context.Background()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			if _, err := e.Submit(ctx, command.VerbGet, []string{key(i % 1000)}); err != nil {
				b.Errorf("Submit: %v", err)
				return
			}
			i++
		}
	})
}

func BenchmarkCommandExecuteAppend(b *testing.B) {
	store := memory.New()
	args := []string{"list", "x"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if i%1000 == 0 {
			store.Delete("list")
		}
		command.Execute(store, command.VerbAppend, args)
	}
}
