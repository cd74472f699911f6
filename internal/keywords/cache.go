// Package keywords resolves the keyword set for each topic area,
// generating it once via the completion provider and caching it in a
// JSON file.
package keywords

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Cache is the on-disk area -> keyword list mapping. Reads hit the
// file every time; updates rewrite it wholesale via a temp file and
// rename so a crashed run never leaves a half-written cache.
type Cache struct {
	mu   sync.Mutex
	path string
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

func (c *Cache) load() (map[string][]string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("reading keyword cache: %w", err)
	}
	m := map[string][]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing keyword cache %s: %w", c.path, err)
	}
	return m, nil
}

func (c *Cache) save(m map[string][]string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating keyword cache dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing keyword cache: %w", err)
	}
	return os.Rename(tmp, c.path)
}

// Get returns the cached keywords for an area, if present.
func (c *Cache) Get(area string) ([]string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.load()
	if err != nil {
		return nil, false, err
	}
	kws, ok := m[area]
	return kws, ok, nil
}

// Put stores an area's keywords.
func (c *Cache) Put(area string, kws []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.load()
	if err != nil {
		return err
	}
	m[area] = kws
	return c.save(m)
}

// Delete evicts one area so its keywords regenerate on next lookup.
func (c *Cache) Delete(area string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, err := c.load()
	if err != nil {
		return err
	}
	if _, ok := m[area]; !ok {
		return nil
	}
	delete(m, area)
	return c.save(m)
}

// Clear evicts every cached area.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing keyword cache: %w", err)
	}
	return nil
}

// All returns the full cached mapping.
func (c *Cache) All() (map[string][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}
