package snapshot

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Encoding selects how bytes are represented when crossing the file store.
type Encoding int

const (
	// Binary passes bytes through unchanged.
	Binary Encoding = iota
	// Base64 expects base64 text on Write and returns base64 text on Read;
	// the file itself holds the decoded bytes.
	Base64
)

func (e Encoding) String() string {
	switch e {
	case Binary:
		return "binary"
	case Base64:
		return "base64"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// FileInfo is the subset of file metadata the exporter records.
type FileInfo struct {
	Size    int64
	ModTime time.Time
}

// FileStore is the durable local storage used for versions and exports.
type FileStore interface {
	Write(path string, data []byte, enc Encoding) error
	Read(path string, enc Encoding) ([]byte, error)
	Stat(path string) (FileInfo, error)
	Copy(src, dst string) error
	Remove(path string) error
}

// DiskStore is a FileStore on the local filesystem.
type DiskStore struct{}

// Write stores data at path, creating parent directories. The file is
// written to a temporary sibling and renamed into place, so readers never
// see a partial file.
func (DiskStore) Write(path string, data []byte, enc Encoding) error {
	raw, err := decode(data, enc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Read returns the contents of path in the requested encoding.
func (DiskStore) Read(path string, enc Encoding) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if enc == Base64 {
		out := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
		base64.StdEncoding.Encode(out, raw)
		return out, nil
	}
	return raw, nil
}

// Stat returns size and modification time of path.
func (DiskStore) Stat(path string) (FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// Copy duplicates src at dst, creating parent directories.
func (s DiskStore) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return s.Write(dst, data, Binary)
}

// Remove deletes path. A missing file is not an error.
func (DiskStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func decode(data []byte, enc Encoding) ([]byte, error) {
	switch enc {
	case Binary:
		return data, nil
	case Base64:
		out := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
		n, err := base64.StdEncoding.Decode(out, data)
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
		return out[:n], nil
	default:
		return nil, fmt.Errorf("unknown encoding %v", enc)
	}
}
