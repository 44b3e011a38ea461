// Package scanner lazily walks an ordered list of Python import-path roots
// and yields every regular .py file found under them.
package scanner

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// PyFile is one discovered source file, carrying the root it was found
// under and its path relative to that root.
type PyFile struct {
	Root    string
	RelPath string
}

// AbsPath joins Root and RelPath into an absolute filesystem path.
func (f *PyFile) AbsPath() string {
	return filepath.Join(f.Root, filepath.FromSlash(f.RelPath))
}

// Iterator is a stateful, single-consumer iterator over an ordered list of
// root directories. Call Next repeatedly until ok is false.
type Iterator struct {
	out     chan *PyFile
	done    chan struct{}
	closeMu sync.Once
}

// New starts a background walk of roots (in order) and returns an Iterator
// that yields matching files lazily as Next is called. Non-existent roots
// are skipped silently — sys.path commonly contains stale entries. A root
// that exists but cannot be opened for traversal is logged and skipped.
func New(roots []string) *Iterator {
	it := &Iterator{
		out:  make(chan *PyFile),
		done: make(chan struct{}),
	}
	go it.run(roots)
	return it
}

func (it *Iterator) run(roots []string) {
	defer close(it.out)
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		if err := it.walkRoot(root); err != nil {
			log.Printf("[scanner] open %s: %v", root, err)
			continue
		}
	}
}

func (it *Iterator) walkRoot(root string) error {
	fsys := os.DirFS(root)
	return doublestar.GlobWalk(fsys, "**/*.py", func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil // unreadable entry: skip it, keep walking
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		select {
		case it.out <- &PyFile{Root: root, RelPath: path}:
			return nil
		case <-it.done:
			return fs.SkipAll
		}
	})
}

// Next blocks until the next file is available, the walk is exhausted, or
// Close is called. ok is false once there is nothing left to yield.
func (it *Iterator) Next() (file *PyFile, ok bool) {
	select {
	case f, open := <-it.out:
		if !open {
			return nil, false
		}
		return f, true
	case <-it.done:
		return nil, false
	}
}

// Close stops the background walk early. Safe to call more than once, and
// safe to call even after the walk has already finished on its own.
func (it *Iterator) Close() {
	it.closeMu.Do(func() { close(it.done) })
}
