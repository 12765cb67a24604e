package objscan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchemaVersion is bumped whenever cachePayload changes shape.
const cacheSchemaVersion uint16 = 1

// Cache stores scan results on disk by file digest.
// Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema   uint16
	Format   string
	Bytes    int
	Sections []Section
}

// OpenCache uses dir, creating it if needed.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// OpenUserCache uses $XDG_CACHE_HOME/<app>, or ~/.cache/<app>.
func OpenUserCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCache(filepath.Join(base, app))
}

// Dir is the cache root.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "objs", hexKey[:2], hexKey+".mp")
}

// Put stores res under its content digest.
func (c *Cache) Put(res *Result) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(res.Digest)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	payload := cachePayload{
		Schema:   cacheSchemaVersion,
		Format:   res.Format,
		Bytes:    res.Bytes,
		Sections: res.Sections,
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// atomic replace
	return os.Rename(tmp, p)
}

// Get fills res from the entry for key. A missing entry or one written by
// another schema version is a miss.
func (c *Cache) Get(key Digest, path string) (*Result, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key.Short(), err)
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &Result{
		Path:     path,
		Format:   payload.Format,
		Bytes:    payload.Bytes,
		Digest:   key,
		Sections: payload.Sections,
		Cached:   true,
	}, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
