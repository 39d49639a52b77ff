package imaging

import (
	"container/list"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of decoded versions kept when no size is
// given.
const DefaultCacheSize = 16

// ImageCache keeps recently rendered versions decoded in memory.
//
// Version files are immutable, so entries never go stale. The cache holds
// at most its capacity of images and drops the least recently used one
// when full. Concurrent loads of the same path share one decode.
type ImageCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front is most recent

	flight singleflight.Group
	hits   int64
	misses int64
}

type cacheEntry struct {
	path string
	img  image.Image
}

// CacheStats reports cache effectiveness.
type CacheStats struct {
	Hits   int64
	Misses int64
	Size   int
}

// NewImageCache creates an empty cache holding up to capacity images. A
// non-positive capacity uses DefaultCacheSize.
func NewImageCache(capacity int) *ImageCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &ImageCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Load returns the decoded image at path, reading it from disk on a miss.
//
// JPEG, PNG and GIF are supported. EXIF orientation is applied on decode so
// pixel coordinates match what the user sees.
func (c *ImageCache) Load(path string) (image.Image, error) {
	if img, ok := c.get(path); ok {
		return img, nil
	}

	v, err, _ := c.flight.Do(path, func() (interface{}, error) {
		img, err := imaging.Open(path, imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("failed to open image: %w", err)
		}
		c.put(path, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (c *ImageCache) get(path string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[path]; ok {
		c.order.MoveToFront(el)
		c.hits++
		return el.Value.(*cacheEntry).img, true
	}
	c.misses++
	return nil, false
}

func (c *ImageCache) put(path string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[path]; ok {
		el.Value.(*cacheEntry).img = img
		c.order.MoveToFront(el)
		return
	}
	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).path)
		}
	}
	c.entries[path] = c.order.PushFront(&cacheEntry{path: path, img: img})
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[path]; ok {
		c.order.Remove(el)
		delete(c.entries, path)
	}
}

// Clear drops every entry and resets the counters.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	c.hits, c.misses = 0, 0
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit and miss counts and the current size.
func (c *ImageCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Size: c.order.Len()}
}
