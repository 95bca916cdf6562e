package snapshot

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/MattEstHaut/RediSharp/internal/core/domain"
	"github.com/MattEstHaut/RediSharp/pkg/resp"
)

const tempSuffix = ".tmp"

// ErrNotFound is returned by Load when no snapshot exists at the path.
var ErrNotFound = errors.New("snapshot: not found")

// Info describes a snapshot file.
type Info struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Checksum  string `json:"checksum"` // hex SHA-256 of the file
	CreatedAt int64  `json:"created_at"`
}

// Manager saves and loads the snapshot at one path.
type Manager struct {
	path  string
	clock func() time.Time
}

// NewManager returns a Manager for path. The parent directory is created
// on the first Save.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot: path is required")
	}
	return &Manager{path: filepath.Clean(path), clock: time.Now}, nil
}

// Path returns the target path.
func (m *Manager) Path() string {
	return m.path
}

// TempPath returns the path written before the final rename.
func (m *Manager) TempPath() string {
	return m.path + tempSuffix
}

// Save writes v to the target path crash-safely.
func (m *Manager) Save(v resp.Value) (*Info, error) {
	if err := os.MkdirAll(filepath.Dir(m.path), 0750); err != nil {
		return nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: create dir: %w", err))
	}

	tempPath := m.TempPath()
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: create temp file: %w", err))
	}
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tempPath)
		}
	}()

	hash := sha256.New()
	bw := bufio.NewWriter(io.MultiWriter(file, hash))

	if err := resp.WriteValue(bw, v); err != nil {
		file.Close()
		return nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: write: %w", err))
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: flush: %w", err))
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: sync: %w", err))
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: stat: %w", err))
	}
	if err := file.Close(); err != nil {
		return nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: close: %w", err))
	}

	if err := os.Rename(tempPath, m.path); err != nil {
		return nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: rename: %w", err))
	}
	renamed = true

	// Best effort: persists the rename on filesystems that need it.
	syncDir(filepath.Dir(m.path))

	return &Info{
		Path:      m.path,
		Size:      stat.Size(),
		Checksum:  hex.EncodeToString(hash.Sum(nil)),
		CreatedAt: m.clock().UnixMilli(),
	}, nil
}

// Load reads the snapshot at the target path. It returns ErrNotFound when
// the file does not exist, an error matching domain.ErrSnapshotFormat when
// the file is not exactly one well-formed value, and an error matching
// domain.ErrSnapshotIO when the file cannot be read.
func (m *Manager) Load() (resp.Value, *Info, error) {
	file, err := os.Open(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return resp.Value{}, nil, ErrNotFound
		}
		return resp.Value{}, nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: open: %w", err))
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return resp.Value{}, nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: stat: %w", err))
	}

	hash := sha256.New()
	r := resp.NewReader(bufio.NewReader(io.TeeReader(file, hash)))

	v, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return resp.Value{}, nil, domain.ErrSnapshotFormat.WithDetails("empty file")
		}
		if errors.Is(err, resp.ErrProtocol) {
			return resp.Value{}, nil, domain.ErrSnapshotFormat.WithCause(err)
		}
		return resp.Value{}, nil, domain.ErrSnapshotIO.WithCause(fmt.Errorf("snapshot: read: %w", err))
	}
	if _, err := r.Read(); !errors.Is(err, io.EOF) {
		return resp.Value{}, nil, domain.ErrSnapshotFormat.WithDetails("trailing data after snapshot value")
	}

	return v, &Info{
		Path:      m.path,
		Size:      stat.Size(),
		Checksum:  hex.EncodeToString(hash.Sum(nil)),
		CreatedAt: stat.ModTime().UnixMilli(),
	}, nil
}

func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
