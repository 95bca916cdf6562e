package memory

import (
	"sort"

	"github.com/MattEstHaut/RediSharp/internal/core/domain"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

// Snapshot field names.
const (
	FieldData    = "data"
	FieldExpires = "ex"
)

// Snapshot encodes the live contents of the store as
//
//	{"data": {key: value, ...}, "ex": {key: unix-ms, ...}}
//
// Both maps are sorted by key, so equal contents encode to equal bytes.
// Keys that have expired but not been swept are left out.
func (s *Store) Snapshot() resp.Value {
	now := s.nowMillis()

	s.mu.RLock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		if deadline, ok := s.expiries.Get(k); ok && now >= deadline {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make([]resp.Pair, 0, len(keys))
	var ex []resp.Pair
	for _, k := range keys {
		data = append(data, resp.Pair{Key: resp.BulkString(k), Value: resp.BulkString(s.values[k])})
		if deadline, ok := s.expiries.Get(k); ok {
			ex = append(ex, resp.Pair{Key: resp.BulkString(k), Value: resp.Integer(deadline)})
		}
	}
	s.mu.RUnlock()

	return resp.Map(
		resp.Pair{Key: resp.BulkString(FieldData), Value: resp.Map(data...)},
		resp.Pair{Key: resp.BulkString(FieldExpires), Value: resp.Map(ex...)},
	)
}

// Restore replaces the contents of the store with a snapshot. On a format
// error the store is left unchanged and the error matches
// domain.ErrSnapshotFormat.
func (s *Store) Restore(snap resp.Value) error {
	values, expiries, err := parseSnapshot(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = values
	s.expiries.Clear()
	for k, deadline := range expiries {
		s.expiries.Set(k, deadline)
	}
	return nil
}

func parseSnapshot(snap resp.Value) (map[string]string, map[string]int64, error) {
	if snap.Kind() != resp.KindMap {
		return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("root is %s, want map", snap.Kind())
	}

	data, ok := snap.Lookup(resp.BulkString(FieldData))
	if !ok {
		return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("missing %q", FieldData)
	}
	if data.Kind() != resp.KindMap {
		return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("%q is %s, want map", FieldData, data.Kind())
	}
	ex, ok := snap.Lookup(resp.BulkString(FieldExpires))
	if !ok {
		return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("missing %q", FieldExpires)
	}
	if ex.Kind() != resp.KindMap {
		return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("%q is %s, want map", FieldExpires, ex.Kind())
	}

	values := make(map[string]string, data.Len())
	for _, p := range data.Pairs() {
		if p.Key.Kind() != resp.KindBulkString || p.Value.Kind() != resp.KindBulkString {
			return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("data entry %s: %s is not bulk string to bulk string", p.Key, p.Value.Kind())
		}
		values[p.Key.Str()] = p.Value.Str()
	}

	expiries := make(map[string]int64, ex.Len())
	for _, p := range ex.Pairs() {
		if p.Key.Kind() != resp.KindBulkString {
			return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("expiry key is %s, want bulk string", p.Key.Kind())
		}
		if p.Value.Kind() != resp.KindInteger {
			return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("expiry of %q is %s, want integer", p.Key.Str(), p.Value.Kind())
		}
		if _, ok := values[p.Key.Str()]; !ok {
			return nil, nil, domain.ErrSnapshotFormat.WithDetailsf("expiry for unknown key %q", p.Key.Str())
		}
		expiries[p.Key.Str()] = p.Value.Int()
	}

	return values, expiries, nil
}
