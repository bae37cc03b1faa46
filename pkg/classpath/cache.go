package classpath

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/yaklabco/sketchdiag/pkg/fsutil"
)

// Increment when cacheRecord changes shape.
const cacheSchemaVersion uint16 = 1

// DiskCache persists listings across processes. Records are keyed by entry
// path and validated against the entry's size and mtime.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type cacheRecord struct {
	Schema      uint16             `msgpack:"schema"`
	Fingerprint fsutil.Fingerprint `msgpack:"fingerprint"`
	Listing     Listing            `msgpack:"listing"`
}

// OpenDiskCache uses dir, or $XDG_CACHE_HOME/<app> when dir is empty.
func OpenDiskCache(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(entry string) string {
	sum := sha256.Sum256([]byte(entry))
	return filepath.Join(c.dir, "listings", hex.EncodeToString(sum[:])+".mp")
}

// Get returns the cached listing for entry if it was stored with fp.
func (c *DiskCache) Get(entry string, fp fsutil.Fingerprint) (*Listing, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(entry))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var rec cacheRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("decode cache record for %s: %w", entry, err)
	}
	if rec.Schema != cacheSchemaVersion || rec.Fingerprint != fp || rec.Listing.Path != entry {
		return nil, false, nil
	}
	return &rec.Listing, true, nil
}

// Put stores listing under its path.
func (c *DiskCache) Put(ctx context.Context, fp fsutil.Fingerprint, listing *Listing) error {
	if c == nil || listing == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msgpack.Marshal(&cacheRecord{
		Schema:      cacheSchemaVersion,
		Fingerprint: fp,
		Listing:     *listing,
	})
	if err != nil {
		return fmt.Errorf("encode cache record for %s: %w", listing.Path, err)
	}
	_, err = fsutil.WriteIfChanged(ctx, c.pathFor(listing.Path), data, fsutil.DefaultFileMode)
	return err
}

// DropAll removes every cached record.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "listings"))
}
