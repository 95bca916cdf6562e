package benchmark

import (
	"path/filepath"
	"testing"

	"github.com/MattEstHaut/RediSharp/internal/storage/memory"
	"github.com/MattEstHaut/RediSharp/internal/storage/snapshot"
)

// BenchmarkSnapshotSave measures encoding and durably writing the store.
func BenchmarkSnapshotSave(b *testing.B) {
	runWithKeyCounts(b, SmallKeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		prefillStore(store, count)

		mgr, err := snapshot.NewManager(filepath.Join(b.TempDir(), "data.resp"))
		if err != nil {
			b.Fatalf("NewManager: %v", err)
		}

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := mgr.Save(store.Snapshot()); err != nil {
				b.Fatalf("Save: %v", err)
			}
		}
		b.StopTimer()
		reportMemory(b, "mem")
	})
}

// BenchmarkSnapshotLoad measures reading, decoding and restoring a snapshot.
func BenchmarkSnapshotLoad(b *testing.B) {
	runWithKeyCounts(b, SmallKeyCounts, func(b *testing.B, count int) {
		store := memory.New()
		prefillStore(store, count)

		mgr, err := snapshot.NewManager(filepath.Join(b.TempDir(), "data.resp"))
		if err != nil {
			b.Fatalf("NewManager: %v", err)
		}
		if _, err := mgr.Save(store.Snapshot()); err != nil {
			b.Fatalf("Save: %v", err)
		}

		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			v, _, err := mgr.Load()
			if err != nil {
				b.Fatalf("Load: %v", err)
			}
			if err := memory.New().Restore(v); err != nil {
				b.Fatalf("Restore: %v", err)
			}
		}
	})
}
