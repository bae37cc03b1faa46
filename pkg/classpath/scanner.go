package classpath

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/yaklabco/sketchdiag/internal/logging"
	"github.com/yaklabco/sketchdiag/pkg/fsutil"
)

// Scanner lists classpath entries, reusing earlier results for entries
// whose size and mtime have not changed.
type Scanner struct {
	cache  *DiskCache
	jobs   int
	logger *log.Logger

	mu   sync.Mutex
	memo map[string]memoEntry
}

type memoEntry struct {
	fp      fsutil.Fingerprint
	listing *Listing
}

// NewScanner creates a scanner. cache may be nil; jobs <= 0 means
// GOMAXPROCS.
func NewScanner(cache *DiskCache, jobs int, logger *log.Logger) *Scanner {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scanner{
		cache:  cache,
		jobs:   jobs,
		logger: logger,
		memo:   make(map[string]memoEntry),
	}
}

// Scan lists entries in parallel. Results keep the order of entries.
func (s *Scanner) Scan(ctx context.Context, entries []string) ([]*Listing, error) {
	results := make([]*Listing, len(entries))
	if len(entries) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.jobs, len(entries)))
	for i, entry := range entries {
		g.Go(func() error {
			listing, err := s.scanOne(gctx, entry)
			if err != nil {
				return err
			}
			results[i] = listing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Scanner) scanOne(ctx context.Context, entry string) (*Listing, error) {
	fp, err := fsutil.FingerprintOf(entry)
	if err != nil {
		return nil, fmt.Errorf("classpath entry: %w", err)
	}

	s.mu.Lock()
	cached, ok := s.memo[entry]
	s.mu.Unlock()
	if ok && cached.fp == fp {
		return cached.listing, nil
	}

	listing, hit, err := s.cache.Get(entry, fp)
	if err != nil {
		s.logger.Debug("classpath cache read failed", logging.FieldPath, entry, logging.FieldError, err)
	}
	if !hit {
		listing, err = ScanEntry(ctx, entry)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Put(ctx, fp, listing); err != nil {
			s.logger.Warn("classpath cache write failed", logging.FieldPath, entry, logging.FieldError, err)
		}
	}

	s.mu.Lock()
	s.memo[entry] = memoEntry{fp: fp, listing: listing}
	s.mu.Unlock()
	return listing, nil
}
