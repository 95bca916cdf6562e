// Package benchmark holds performance benchmarks for the store, the
// executor, the wire codec and snapshots.
//
// Run with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/
package benchmark
