// Package fsutil provides file snapshots for change detection and atomic
// writes for caches and generated config files.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilFileInfo is returned when a nil FileInfo is passed.
	ErrNilFileInfo = errors.New("nil FileInfo")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")
)

// FileInfo is the state of a file when it was last read.
type FileInfo struct {
	Path    string
	Mode    os.FileMode
	ModTime time.Time
	Size    int64

	// Hash is the SHA-256 of the content.
	Hash [32]byte
}

// Fingerprint identifies a file version by size and modification time only.
// It is cheap enough to compute for every jar on a classpath.
type Fingerprint struct {
	Size    int64
	ModTime int64
}

// ReadFile reads a tab or config file and snapshots its state.
func ReadFile(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	stat, err := statPath(path)
	if err != nil {
		return nil, nil, err
	}
	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, nil, fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
		}
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	return content, &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
		Hash:    sha256.Sum256(content),
	}, nil
}

// CheckModified reports whether the file changed since info was taken.
// A deleted file counts as modified. Size and mtime are compared first;
// when both match the content is hashed, so a touch without an edit is not a change.
func CheckModified(ctx context.Context, info *FileInfo) (bool, error) {
	if info == nil {
		return false, ErrNilFileInfo
	}
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check modified: %w", err)
	}

	stat, err := os.Stat(info.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat %s: %w", info.Path, err)
	}

	if stat.Size() != info.Size {
		return true, nil
	}
	if stat.ModTime().Equal(info.ModTime) {
		return false, nil
	}

	content, err := os.ReadFile(info.Path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", info.Path, err)
	}
	return sha256.Sum256(content) != info.Hash, nil
}

// FingerprintOf stats path and returns its fingerprint.
func FingerprintOf(path string) (Fingerprint, error) {
	stat, err := statPath(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{Size: stat.Size(), ModTime: stat.ModTime().UnixNano()}, nil
}

func statPath(path string) (os.FileInfo, error) {
	stat, err := os.Stat(path)
	if err == nil {
		return stat, nil
	}
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	if os.IsPermission(err) {
		return nil, fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	}
	return nil, fmt.Errorf("stat %s: %w", path, err)
}
