package benchmark

import (
	"testing"
	"time"

	"github.com/MattEstHaut/RediSharp/internal/storage/memory"
)

func BenchmarkStoreSet(b *testing.B) {
	runWithKeyCounts(b, KeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		prefillStore(store, count)
		v := value(32)

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			store.Set(key(i%count), v)
		}
	})
}

func BenchmarkStoreGet(b *testing.B) {
	runWithKeyCounts(b, KeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		prefillStore(store, count)

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			store.Get(key(i % count))
		}
	})
}

func BenchmarkStoreGetParallel(b *testing.B) {
	store := memory.New()
	prefillStore(store, 10000)

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			store.Get(key(i % 10000))
			i++
		}
	})
}

func BenchmarkStoreSetWithExpiry(b *testing.B) {
	store := memory.New()
	v := value(32)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		store.SetWithExpiry(key(i%10000), v, time.Minute)
	}
}

func BenchmarkStoreSweepExpired(b *testing.B) {
	runWithKeyCounts(b, SmallKeyCounts, func(b *testing.B, count int) {
		now := time.Now()
		store := memory.New(memory.WithClock(func() time.Time { return now }))
		v := value(16)

		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			b.StopTimer()
			for k := 0; k < count; k++ {
				store.SetWithExpiry(key(k), v, time.Millisecond)
			}
			now = now.Add(time.Second)
			b.StartTimer()

			if n := store.SweepExpired(); n != count {
				b.Fatalf("swept %d keys, want %d", n, count)
			}
		}
	})
}
