// SPDX-License-Identifier: EPL-2.0

package soundscape

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ik5/soundscape/engine"
)

// bufferCache is a reference-counted LRU over decoded buffers, keyed by
// file path. Entries with live references are never evicted; if every
// entry is referenced the cache temporarily exceeds its capacity rather
// than invalidating a handle a sound still plays from.
type bufferCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = least recently used
	entries  map[string]*list.Element
	logger   *log.Logger
}

type cacheEntry struct {
	path string
	buf  engine.Buffer
	refs int
}

func newBufferCache(capacity int, logger *log.Logger) *bufferCache {
	return &bufferCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
		logger:   logger,
	}
}

// acquire returns the buffer for path, loading it through the session
// on a miss, and takes a reference the caller must give back with
// release. A hit marks the entry most recently used.
func (c *bufferCache) acquire(sess engine.Session, path string) (engine.Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[path]; ok {
		c.order.MoveToBack(el)
		entry := el.Value.(*cacheEntry)
		entry.refs++
		return entry.buf, nil
	}

	buf, err := sess.LoadBuffer(path)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w: %v", path, ErrResourceLoad, err)
	}
	c.logger.Debug("buffer loaded", "path", path)

	entry := &cacheEntry{path: path, buf: buf, refs: 1}
	c.entries[path] = c.order.PushBack(entry)
	c.evictOver()
	return buf, nil
}

// release gives back one reference taken by acquire.
func (c *bufferCache) release(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[path]
	if !ok {
		return
	}
	entry := el.Value.(*cacheEntry)
	if entry.refs > 0 {
		entry.refs--
	}
}

// evictOver drops least-recently-used unreferenced entries until the
// cache fits its capacity. Callers must hold c.mu.
func (c *bufferCache) evictOver() {
	for el := c.order.Front(); el != nil && c.order.Len() > c.capacity; {
		next := el.Next()
		entry := el.Value.(*cacheEntry)
		if entry.refs == 0 {
			c.order.Remove(el)
			delete(c.entries, entry.path)
			if err := entry.buf.Release(); err != nil {
				c.logger.Warn("buffer release failed", "path", entry.path, "err", err)
			} else {
				c.logger.Debug("buffer evicted", "path", entry.path)
			}
		}
		el = next
	}
}

// contains reports whether path currently has a cached buffer.
func (c *bufferCache) contains(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[path]
	return ok
}

func (c *bufferCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// close releases every cached buffer regardless of reference counts.
// Only the owning scene calls it, after closing all sounds.
func (c *bufferCache) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*cacheEntry)
		if err := entry.buf.Release(); err != nil {
			c.logger.Warn("buffer release failed", "path", entry.path, "err", err)
		}
	}
	c.order.Init()
	clear(c.entries)
}
