package cmap

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{8, 8},
		{64, 64},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("shard count = %d, want %d", len(m.shards), tt.expected)
			}
		})
	}
}

func TestMap_Basic(t *testing.T) {
	m := New[string, int64]()

	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	if v, ok := m.Get("a"); !ok || v != 3 {
		t.Errorf("Get(a) = (%d, %v), want (3, true)", v, ok)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	m.Delete("missing")
	m.Delete("b")
	if _, ok := m.Get("b"); ok {
		t.Error("b should be deleted")
	}

	m.Delete("a")
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestMap_RangeAndCollect(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("k%03d", i), i)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 10
	})
	if visited != 10 {
		t.Errorf("Range stopped after %d, want 10", visited)
	}

	even := m.Collect(func(_ string, v int) bool { return v%2 == 0 })
	sort.Strings(even)
	if len(even) != 50 || even[0] != "k000" || even[49] != "k098" {
		t.Errorf("Collect returned %d keys: first %q", len(even), even[0])
	}

	m.Clear()
	if m.Len() != 0 {
		t.Errorf("Len() after Clear = %d", m.Len())
	}
}

func TestMap_Concurrent(t *testing.T) {
	m := New[int, int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				m.Set(g*1000+i, i)
				m.Get(g*1000 + i)
			}
		}(g)
	}
	wg.Wait()
	if m.Len() != 8*500 {
		t.Errorf("Len() = %d, want %d", m.Len(), 8*500)
	}
}
