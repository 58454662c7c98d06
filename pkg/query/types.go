// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Default configuration values.
const (
	// DefaultMaxEntries is the default maximum number of cached results.
	DefaultMaxEntries = 256

	// DefaultTTL is the freshness window for resources without an
	// explicit one.
	DefaultTTL = 3 * time.Minute

	// DefaultFetchRetries is how many times a failed fetch is retried
	// before the error lands on the entry.
	DefaultFetchRetries = 1

	// maxKeyTail is the longest parameter tail kept verbatim in a key;
	// longer tails are hashed.
	maxKeyTail = 100
)

// State is where a cache entry sits in its lifecycle.
//
// The machine is empty → loading → {ready | error}, with ready →
// loading on invalidation or staleness and error → loading on retry.
// No state is terminal; every entry can always be refreshed.
type State int

const (
	// StateEmpty means no fetch has been attempted for this key.
	StateEmpty State = iota

	// StateLoading means a fetch is in flight and no earlier data exists.
	StateLoading

	// StateReady means the entry holds data from a successful fetch.
	StateReady

	// StateError means the most recent fetch failed. Earlier data, if
	// any, is still present alongside the error.
	StateError
)

// String returns the state name for logs and the dashboard status line.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the view-facing snapshot of one cache entry.
type Result struct {
	// Data is the cached value. Nil unless a fetch has ever succeeded.
	Data any

	// Err is the most recent fetch failure, nil after a success.
	Err error

	// State classifies the entry; see State.
	State State

	// Stale is true when the data being returned is past its freshness
	// window (a background refresh is underway or has failed).
	Stale bool

	// FetchedAt is when Data was produced, zero if never.
	FetchedAt time.Time
}

// entry is the internal record per cache key.
//
// Thread Safety:
//
//	All fields are guarded by the store's mutex. Entries never leave
//	the store; views get Result snapshots.
type entry struct {
	key      string
	resource string

	data      any
	hasData   bool
	err       error
	fetchedAt time.Time

	// invalidated forces a refetch on the next read regardless of age.
	invalidated bool

	// loading is true while a flight for this key is outstanding.
	loading bool

	// seq numbers flights for this key. A settling flight applies its
	// result only when it is still the newest one (last-write-wins).
	seq uint64

	lruElement *list.Element
}

// Stats is a snapshot of store counters.
type Stats struct {
	// EntryCount is the number of live cache entries.
	EntryCount int

	// Hits counts reads served fresh from cache.
	Hits int64

	// Misses counts reads that had to fetch.
	Misses int64

	// StaleHits counts reads served stale while a refresh ran behind them.
	StaleHits int64

	// Coalesced counts reads that joined an already-running fetch.
	Coalesced int64

	// Fetches counts upstream calls actually made.
	Fetches int64

	// Errors counts fetches that failed after retries.
	Errors int64

	// Evictions counts entries dropped for capacity.
	Evictions int64

	// MaxEntries is the configured capacity.
	MaxEntries int
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Options configures a Store.
type Options struct {
	// MaxEntries bounds the cache; least recently used entries are
	// evicted past it.
	MaxEntries int

	// TTLFor maps a resource name to its freshness window. Nil or a
	// non-positive return falls back to DefaultTTL. The config
	// package's TTLConfig.TTLFor satisfies this directly.
	TTLFor func(resource string) time.Duration

	// FetchRetries is how many immediate retries a failed fetch gets.
	// Negative values mean zero.
	FetchRetries int
}

// Option is a functional option for configuring a Store.
type Option func(*Options)

// WithMaxEntries sets the cache capacity.
func WithMaxEntries(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxEntries = n
		}
	}
}

// WithTTLFor sets the per-resource freshness lookup.
func WithTTLFor(fn func(resource string) time.Duration) Option {
	return func(o *Options) {
		if fn != nil {
			o.TTLFor = fn
		}
	}
}

// WithFetchRetries sets the retry budget for failed fetches.
func WithFetchRetries(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.FetchRetries = n
		}
	}
}

// defaultOptions returns the baseline configuration.
func defaultOptions() Options {
	return Options{
		MaxEntries:   DefaultMaxEntries,
		FetchRetries: DefaultFetchRetries,
	}
}

// Key builds a stable cache key from a resource name and parameters.
//
// Description:
//
//	The key is resource + ":" + a canonical serialization of params,
//	so identical calls map to identical keys regardless of field
//	order. Struct and map params are serialized through JSON with
//	their keys sorted; nil params produce just the resource name.
//	Tails longer than maxKeyTail are replaced by a SHA-256 digest to
//	keep keys bounded.
//
// Inputs:
//   - resource: Resource family name, e.g. "jobs". Becomes the
//     invalidation prefix.
//   - params: Anything JSON-serializable, or nil.
//
// Outputs:
//   - string: The cache key, always prefixed "resource:".
func Key(resource string, params any) string {
	if params == nil {
		return resource
	}
	tail := canonicalize(params)
	if tail == "" || tail == "null" || tail == "{}" {
		return resource
	}
	if len(tail) > maxKeyTail {
		sum := sha256.Sum256([]byte(tail))
		tail = hex.EncodeToString(sum[:])
	}
	return resource + ":" + tail
}

// canonicalize renders params deterministically. encoding/json already
// sorts map keys; structs marshal in declaration order, which is stable
// for a given type.
func canonicalize(params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Unserializable params still need a stable-ish key.
		return fmt.Sprintf("%+v", params)
	}

	// Re-marshal through a map so two param types with the same fields
	// in different order produce the same key.
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return string(data)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.Write(m[k])
	}
	b.WriteByte('}')
	return b.String()
}

// resourceOf returns the resource prefix of a key.
func resourceOf(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
