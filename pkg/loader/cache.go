package loader

import (
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/mpapenbr/race-strategy-engine/log"
	"github.com/mpapenbr/race-strategy-engine/pkg/table"
)

type (
	cacheItem struct {
		modTime time.Time
		size    int64
		data    *table.Table
	}
	// TableCache keeps parsed tables between loads of the same race.
	// An entry is reloaded as soon as size or modification time of its file change.
	TableCache struct {
		mutex sync.Mutex
		items map[string]cacheItem
		l     *log.Logger
	}
	CacheOption func(*TableCache)
)

func WithCacheLogger(l *log.Logger) CacheOption {
	return func(c *TableCache) {
		c.l = l
	}
}

func NewTableCache(opts ...CacheOption) *TableCache {
	ret := &TableCache{
		items: make(map[string]cacheItem),
		l:     log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Get returns the table of path. The file is parsed only if there is no
// entry for the current state of the file.
func (c *TableCache) Get(fs afero.Fs, path string) (*table.Table, error) {
	fi, err := fs.Stat(path)
	if err != nil {
		return nil, err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if it, ok := c.items[path]; ok {
		if it.size == fi.Size() && it.modTime.Equal(fi.ModTime()) {
			c.l.Debug("cache hit", log.String("file", path))
			return it.data, nil
		}
		delete(c.items, path)
	}
	tbl, err := table.ReadCSVFile(fs, path)
	if err != nil {
		return nil, err
	}
	c.l.Debug("cache load", log.String("file", path))
	c.items[path] = cacheItem{modTime: fi.ModTime(), size: fi.Size(), data: tbl}
	return tbl, nil
}

func (c *TableCache) Invalidate(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, path)
	c.l.Debug("Invalidate", log.String("file", path), log.Int("remain items", len(c.items)))
}

func (c *TableCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}
