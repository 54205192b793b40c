// # internal/resolver/statcache.go
package resolver

import "os"

// statCache memoizes file-existence checks for one resolution run. Module
// path resolution is the only place the core touches the filesystem, and the
// same candidate paths recur across many imports.
type statCache struct {
	entries map[string]statResult
}

type statResult struct {
	exists bool
	isDir  bool
}

func newStatCache() *statCache {
	return &statCache{entries: make(map[string]statResult)}
}

func (c *statCache) stat(path string) statResult {
	if r, ok := c.entries[path]; ok {
		return r
	}
	var r statResult
	if info, err := os.Stat(path); err == nil {
		r = statResult{exists: true, isDir: info.IsDir()}
	}
	c.entries[path] = r
	return r
}

// FileExists reports whether path is an existing regular file.
func (c *statCache) FileExists(path string) bool {
	r := c.stat(path)
	return r.exists && !r.isDir
}

// DirExists reports whether path is an existing directory.
func (c *statCache) DirExists(path string) bool {
	r := c.stat(path)
	return r.exists && r.isDir
}
