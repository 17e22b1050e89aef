package resolver

import "sync"

type cache[T any] struct {
	mu sync.Mutex
	m  map[string]T
}

func newCache[T any]() *cache[T] {
	return &cache[T]{
		m: map[string]T{},
	}
}

func (c *cache[T]) get(k string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[k]
	return v, ok
}

func (c *cache[T]) set(k string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[k] = v
}

func key(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	bs := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			bs = append(bs, 0)
		}
		bs = append(bs, p...)
	}
	return string(bs)
}
