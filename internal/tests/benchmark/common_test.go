package benchmark

import (
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/MattEstHaut/RediSharp/internal/storage/memory"
)

// KeyCounts are the store sizes benchmarks run against.
var KeyCounts = []int{1000, 10000, 100000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

func key(i int) string {
	return fmt.Sprintf("key:%08d", i)
}

func value(size int) string {
	return strings.Repeat("v", size)
}

// prefillStore writes count keys; every fourth one carries a TTL.
func prefillStore(store *memory.Store, count int) {
	v := value(32)
	for i := 0; i < count; i++ {
		if i%4 == 0 {
			store.SetWithExpiry(key(i), v, time.Hour)
		} else {
			store.Set(key(i), v)
		}
	}
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
