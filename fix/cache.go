package fix

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type cacheEntry struct {
	Hash      string
	CreatedAt time.Time
}

// fileCache remembers the content hash of every file processed by a
// Watcher, so that events which leave a file unchanged are skipped.
type fileCache struct {
	mutex   sync.Mutex
	entries map[string]cacheEntry
}

func newFileCache() *fileCache {
	return &fileCache{entries: make(map[string]cacheEntry)}
}

// unchanged reports whether filename was last processed with content hash.
func (c *fileCache) unchanged(filename, hash string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	return exists && entry.Hash == hash
}

func (c *fileCache) set(filename, hash string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[filename] = cacheEntry{Hash: hash, CreatedAt: time.Now()}
}

func (c *fileCache) invalidate(filename string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.entries, filename)
}

func getFileHash(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
