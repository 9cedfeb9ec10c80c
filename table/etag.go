// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

package table

import "sync"

// etagEntry holds a cached response for a URL.
type etagEntry struct {
	etag string
	body []byte
}

// etagCache stores the last ETag and body per state URL. The server
// answers an If-None-Match that still matches with 304 and an empty
// body, and the cached body stands in for it.
//
// Only the most recent entry per URL is kept; the number of distinct
// URLs is one per (table, player, token) triple.
type etagCache struct {
	mu      sync.Mutex
	entries map[string]etagEntry
}

func newETagCache() *etagCache {
	return &etagCache{entries: make(map[string]etagEntry)}
}

// get returns the cached ETag for a URL, or empty string if not cached.
func (cache *etagCache) get(url string) string {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.entries[url].etag
}

// body returns the cached response body for a URL, or nil if not cached.
func (cache *etagCache) body(url string) []byte {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return cache.entries[url].body
}

// put stores an ETag and response body for a URL.
func (cache *etagCache) put(url string, etag string, body []byte) {
	if etag == "" {
		return
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries[url] = etagEntry{etag: etag, body: body}
}

// forget drops every cached entry. Used when the token changes so a
// rotated URL does not keep the old body alive.
func (cache *etagCache) forget() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	clear(cache.entries)
}
