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

import "context"

// GetAs is Get with the data asserted back to its concrete type.
//
// The fetch closure returns its natural type; the zero T is returned
// whenever the read has no data (empty cache plus fetch failure).
func GetAs[T any](ctx context.Context, s *Store, key string, fetch func(ctx context.Context) (T, error)) (T, Result, error) {
	res, err := s.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	return DataAs[T](res), res, err
}

// RefreshAs is Refresh with the data asserted back to its concrete type.
func RefreshAs[T any](ctx context.Context, s *Store, key string, fetch func(ctx context.Context) (T, error)) (T, Result, error) {
	res, err := s.Refresh(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	return DataAs[T](res), res, err
}

// DataAs extracts a Result's data as T, or the zero T when the entry
// holds nothing (or something else, which indicates a key collision
// between two resources and should not happen with Key-built keys).
func DataAs[T any](res Result) T {
	var zero T
	if res.Data == nil {
		return zero
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero
	}
	return v
}
