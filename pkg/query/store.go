// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query is the read-side cache between the views and the
// resource accessors.
//
// A Store maps cache keys (resource + parameters, see Key) to the
// most recent fetch result and its freshness. Reads inside a
// resource's freshness window cost no network call; reads past it are
// served the stale value immediately while one refresh runs behind
// them; reads with nothing cached block on the fetch. Concurrent
// reads for the same key share a single upstream call. Mutations
// never patch cached data; they invalidate the resource family and
// let the next read refetch.
//
// The Store is an explicit constructed object, not a package
// singleton, so every test (and every TUI session) gets an isolated
// instance.
package query

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for one key from the backend.
//
// Implementations are usually closures over a resource accessor call.
// The context carries cancellation for blocking fetches; background
// refreshes run detached from the read that triggered them.
type FetchFunc func(ctx context.Context) (any, error)

// Store is the query cache.
//
// Thread Safety:
//
//	Safe for concurrent use. Uses a mutex for the entry map and
//	singleflight for fetch deduplication.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	lru     *list.List
	flight  singleflight.Group
	options Options

	// background tracks stale-refresh goroutines so Wait can drain them.
	background sync.WaitGroup

	// Stats
	hits      int64
	misses    int64
	staleHits int64
	coalesced int64
	fetches   int64
	errors    int64
	evictions int64
}

// NewStore creates a Store with the given options.
func NewStore(opts ...Option) *Store {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Store{
		entries: make(map[string]*entry),
		lru:     list.New(),
		options: options,
	}
}

// =============================================================================
// READS
// =============================================================================

// Get returns the value for key, fetching it if needed.
//
// Description:
//
//	The read follows the freshness policy:
//	  - fresh data cached: returned directly, zero network calls.
//	  - stale data cached: returned immediately, one background
//	    refresh started (unless one is already running).
//	  - nothing cached: blocks on the fetch; concurrent callers for
//	    the same key join the same upstream call.
//
//	A failed fetch never discards earlier data; the error is recorded
//	on the entry and surfaced in the Result.
//
// Inputs:
//   - ctx: Context for a blocking fetch. Background refreshes detach
//     from it.
//   - key: Cache key, from Key.
//   - fetch: Loader invoked on miss or staleness.
//
// Outputs:
//   - Result: Snapshot of the entry after the read.
//   - error: The fetch failure when the read had no data to fall back
//     on; nil whenever data is returned.
func (s *Store) Get(ctx context.Context, key string, fetch FetchFunc) (Result, error) {
	s.mu.Lock()
	e, ok := s.entries[key]

	// Fresh hit: the fast path.
	if ok && e.hasData && !e.invalidated && !s.isStaleLocked(e) {
		atomic.AddInt64(&s.hits, 1)
		s.touchLocked(e)
		res := s.snapshotLocked(e)
		s.mu.Unlock()
		return res, nil
	}

	// Stale hit: serve what we have, refresh behind it.
	if ok && e.hasData {
		atomic.AddInt64(&s.staleHits, 1)
		if !e.loading {
			e.loading = true
			e.seq++
			s.startBackgroundRefresh(ctx, key, e.seq, fetch)
		}
		s.touchLocked(e)
		res := s.snapshotLocked(e)
		res.Stale = true
		s.mu.Unlock()
		return res, nil
	}

	// Miss: block on the fetch.
	atomic.AddInt64(&s.misses, 1)
	if e == nil {
		e = s.insertLocked(key)
	}
	if !e.loading {
		e.loading = true
		e.seq++
	} else {
		atomic.AddInt64(&s.coalesced, 1)
	}
	seq := e.seq
	s.mu.Unlock()

	return s.fetchBlocking(ctx, key, seq, fetch)
}

// Peek returns the entry's current state without fetching.
func (s *Store) Peek(key string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Result{State: StateEmpty}
	}
	res := s.snapshotLocked(e)
	if e.hasData && (e.invalidated || s.isStaleLocked(e)) {
		res.Stale = true
	}
	return res
}

// Refresh forces a blocking refetch for key regardless of freshness.
//
// This is the manual-retry path (error → loading): the dashboard's
// refresh key and the CLI's --no-cache flag land here.
func (s *Store) Refresh(ctx context.Context, key string, fetch FetchFunc) (Result, error) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = s.insertLocked(key)
	}
	atomic.AddInt64(&s.misses, 1)
	if !e.loading {
		e.loading = true
		e.seq++
	} else {
		atomic.AddInt64(&s.coalesced, 1)
	}
	seq := e.seq
	s.mu.Unlock()

	return s.fetchBlocking(ctx, key, seq, fetch)
}

// =============================================================================
// INVALIDATION
// =============================================================================

// Invalidate marks every entry of a resource family stale.
//
// Description:
//
//	prefix is a resource name as passed to Key; "jobs" invalidates
//	the bare "jobs" key and every "jobs:…" variant, but not an
//	unrelated resource that happens to share leading characters.
//	Data is kept and served stale until the next read refreshes it.
//	In-flight fetches for invalidated keys are superseded: their
//	results are discarded when they settle.
//
// Outputs:
//   - int: Number of entries invalidated.
func (s *Store) Invalidate(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if key != prefix && resourceOf(key) != prefix {
			continue
		}
		e.invalidated = true
		// Supersede any flight started before the mutation; its
		// response may predate the write that triggered this.
		e.seq++
		e.loading = false
		n++
	}
	return n
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		e.seq++
		s.removeLocked(key, e)
	}
}

// =============================================================================
// INTROSPECTION
// =============================================================================

// Stats returns current store counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	entryCount := len(s.entries)
	s.mu.Unlock()

	return Stats{
		EntryCount: entryCount,
		Hits:       atomic.LoadInt64(&s.hits),
		Misses:     atomic.LoadInt64(&s.misses),
		StaleHits:  atomic.LoadInt64(&s.staleHits),
		Coalesced:  atomic.LoadInt64(&s.coalesced),
		Fetches:    atomic.LoadInt64(&s.fetches),
		Errors:     atomic.LoadInt64(&s.errors),
		Evictions:  atomic.LoadInt64(&s.evictions),
		MaxEntries: s.options.MaxEntries,
	}
}

// Wait blocks until all background refreshes have settled. Tests and
// shutdown paths call this; normal reads never do.
func (s *Store) Wait() {
	s.background.Wait()
}

// =============================================================================
// FETCH EXECUTION
// =============================================================================

// fetchBlocking runs (or joins) the flight for key and returns the
// settled entry state.
func (s *Store) fetchBlocking(ctx context.Context, key string, seq uint64, fetch FetchFunc) (Result, error) {
	// The flight may have settled between the caller releasing the
	// lock and arriving here; don't fetch twice for the same seq.
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.seq == seq && !e.loading && e.hasData && e.err == nil {
		res := s.snapshotLocked(e)
		s.mu.Unlock()
		return res, nil
	}
	s.mu.Unlock()

	_, err, _ := s.flight.Do(flightKey(key, seq), func() (any, error) {
		data, ferr := s.runFetch(ctx, key, fetch)
		s.applyResult(key, seq, data, ferr)
		return data, ferr
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		// Evicted or cleared while we fetched.
		if err != nil {
			return Result{State: StateError, Err: err}, err
		}
		return Result{State: StateEmpty}, nil
	}
	res := s.snapshotLocked(e)
	if err != nil && !e.hasData {
		return res, err
	}
	return res, nil
}

// startBackgroundRefresh fetches key without blocking the caller.
//
// The goroutine detaches from the read's context: a view being torn
// down must not cancel the refresh the whole cache benefits from.
func (s *Store) startBackgroundRefresh(ctx context.Context, key string, seq uint64, fetch FetchFunc) {
	detached := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		_, err, _ := s.flight.Do(flightKey(key, seq), func() (any, error) {
			data, ferr := s.runFetch(detached, key, fetch)
			s.applyResult(key, seq, data, ferr)
			return data, ferr
		})
		if err != nil {
			slog.Debug("background refresh failed", "key", key, "error", err)
		}
	}()
}

// runFetch invokes fetch with the configured retry budget.
func (s *Store) runFetch(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	retries := s.options.FetchRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		atomic.AddInt64(&s.fetches, 1)
		data, err := fetch(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	atomic.AddInt64(&s.errors, 1)
	return nil, fmt.Errorf("fetch %s: %w", key, lastErr)
}

// applyResult writes a settled flight onto its entry.
//
// Last-write-wins per key: the result lands only when seq is still
// the entry's newest flight. Superseded flights (a later invalidation
// or refresh bumped the sequence) are discarded.
func (s *Store) applyResult(key string, seq uint64, data any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.seq != seq {
		return
	}

	e.loading = false
	if err != nil {
		// Keep prior data; the view renders it with the error beside it.
		e.err = err
		return
	}
	e.data = data
	e.hasData = true
	e.err = nil
	e.invalidated = false
	e.fetchedAt = time.Now()
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// flightKey scopes singleflight to one generation of one key, so an
// invalidation starts a fresh flight instead of joining a doomed one.
func flightKey(key string, seq uint64) string {
	return fmt.Sprintf("%s#%d", key, seq)
}

// isStaleLocked reports whether an entry's data is past its freshness
// window. Caller holds s.mu.
func (s *Store) isStaleLocked(e *entry) bool {
	ttl := DefaultTTL
	if s.options.TTLFor != nil {
		if configured := s.options.TTLFor(e.resource); configured > 0 {
			ttl = configured
		}
	}
	return time.Since(e.fetchedAt) > ttl
}

// insertLocked creates an empty entry for key. Caller holds s.mu.
func (s *Store) insertLocked(key string) *entry {
	s.evictIfNeededLocked()
	e := &entry{key: key, resource: resourceOf(key)}
	e.lruElement = s.lru.PushFront(key)
	s.entries[key] = e
	return e
}

// touchLocked moves an entry to the front of the LRU list.
func (s *Store) touchLocked(e *entry) {
	if e.lruElement != nil {
		s.lru.MoveToFront(e.lruElement)
	}
}

// removeLocked drops an entry. Caller holds s.mu.
func (s *Store) removeLocked(key string, e *entry) {
	if e.lruElement != nil {
		s.lru.Remove(e.lruElement)
	}
	delete(s.entries, key)
}

// evictIfNeededLocked drops least recently used entries until there is
// room for one more. Entries with a flight outstanding are skipped so
// a settling fetch still finds its entry.
func (s *Store) evictIfNeededLocked() {
	for len(s.entries) >= s.options.MaxEntries {
		evicted := false
		for el := s.lru.Back(); el != nil; el = el.Prev() {
			key := el.Value.(string)
			e := s.entries[key]
			if e == nil || e.loading {
				continue
			}
			s.removeLocked(key, e)
			atomic.AddInt64(&s.evictions, 1)
			evicted = true
			break
		}
		if !evicted {
			break
		}
	}
}

// snapshotLocked builds the view-facing Result. Caller holds s.mu.
func (s *Store) snapshotLocked(e *entry) Result {
	res := Result{
		Data:      e.data,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
	}
	switch {
	case e.loading:
		res.State = StateLoading
	case e.err != nil:
		res.State = StateError
	case e.hasData:
		res.State = StateReady
	default:
		res.State = StateEmpty
	}
	return res
}
