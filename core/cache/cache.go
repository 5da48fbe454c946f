package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Cache is a simple thread-safe key-value store using sync.Map.
// Used as the in-process fallback when Redis is not configured.
type Cache struct {
	m sync.Map
	// tagIndex maps tag string to a set of keys
	tagIndex sync.Map // map[string]*sync.Map
}

var (
	once     sync.Once
	instance *Cache
)

func GetInstance() *Cache {
	once.Do(func() {
		instance = NewCache()
	})
	return instance
}

// NewCache creates a new Cache instance.
func NewCache() *Cache {
	return &Cache{}
}

// cacheItem holds a value and its expiration time.
type cacheItem struct {
	Value     interface{}
	ExpiresAt int64 // Unix nanoseconds; 0 means no expiration
}

// Set stores a value for a key with an optional TTL (in seconds) and
// optional tags. If ttl is 0, the value does not expire.
func (c *Cache) Set(key, value interface{}, ttl int64, tags []string) {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).UnixNano()
	}
	c.m.Store(key, cacheItem{Value: value, ExpiresAt: expiresAt})
	if len(tags) > 0 {
		c.TagKey(key, tags)
	}
}

// Get retrieves a value for a key. Returns (value, true) if found and not
// expired, (nil, false) otherwise.
func (c *Cache) Get(key interface{}) (interface{}, bool) {
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	item, isItem := v.(cacheItem)
	if !isItem {
		return v, true
	}
	if item.ExpiresAt > 0 && time.Now().UnixNano() > item.ExpiresAt {
		c.m.Delete(key)
		return nil, false
	}
	return item.Value, true
}

// GetOrDefault retrieves a value for a key, or the default when absent.
func (c *Cache) GetOrDefault(key, defaultValue interface{}) interface{} {
	if v, ok := c.Get(key); ok {
		return v
	}
	return defaultValue
}

// Delete removes a key from the cache.
func (c *Cache) Delete(key interface{}) {
	c.m.Delete(key)
}

// DeleteMany removes multiple keys.
func (c *Cache) DeleteMany(keys ...interface{}) {
	for _, k := range keys {
		c.m.Delete(k)
	}
}

// GetMany returns values for keys in order; missing or expired keys yield nil.
func (c *Cache) GetMany(keys ...interface{}) []interface{} {
	out := make([]interface{}, len(keys))
	for i, k := range keys {
		if v, ok := c.Get(k); ok {
			out[i] = v
		}
	}
	return out
}

// composeKey flattens a multi-part key into one string key.
func composeKey(parts []interface{}) string {
	ss := make([]string, len(parts))
	for i, p := range parts {
		ss[i] = fmt.Sprintf("%v", p)
	}
	return strings.Join(ss, "|")
}

// SetN stores a value under a composite key.
func (c *Cache) SetN(parts []interface{}, value interface{}, ttl int64, tags []string) {
	c.Set(composeKey(parts), value, ttl, tags)
}

// GetN retrieves a value stored under a composite key.
func (c *Cache) GetN(parts ...interface{}) (interface{}, bool) {
	return c.Get(composeKey(parts))
}

// DeleteN removes a composite key.
func (c *Cache) DeleteN(parts ...interface{}) {
	c.Delete(composeKey(parts))
}

// TagKey associates a key with tags for group invalidation.
func (c *Cache) TagKey(key interface{}, tags []string) {
	for _, tag := range tags {
		set, _ := c.tagIndex.LoadOrStore(tag, &sync.Map{})
		set.(*sync.Map).Store(key, struct{}{})
	}
}

// FlushTag deletes every key associated with the tag.
func (c *Cache) FlushTag(tag string) {
	v, ok := c.tagIndex.Load(tag)
	if !ok {
		return
	}
	v.(*sync.Map).Range(func(key, _ interface{}) bool {
		c.m.Delete(key)
		return true
	})
	c.tagIndex.Delete(tag)
}
