package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/google/btree"
)

// Memory is a FileSystem kept in memory. Entries are ordered by path so
// directories are contiguous ranges of the tree. Faults can be injected per
// path and every operation is counted.
type Memory struct {
	mutex   sync.Mutex
	entries *btree.BTreeG[*memEntry]
	faults  map[string]*fault
	stats   map[string]*Stats
}

type memEntry struct {
	path string
	dir  bool
	data []byte
}

type fault struct {
	open       error
	writeAfter int
	write      error
	readAfter  int
	read       error
}

// Stats counts operations issued against one path.
type Stats struct {
	Opens  int
	Reads  int
	Writes int
	Closes int
}

func NewMemory() *Memory {
	m := &Memory{
		entries: btree.NewG(32, func(a, b *memEntry) bool {
			return a.path < b.path
		}),
		faults: map[string]*fault{},
		stats:  map[string]*Stats{},
	}
	m.entries.ReplaceOrInsert(&memEntry{path: "", dir: true})
	return m
}

func (m *Memory) File(parent, name, file string) FileHandle {
	return &memFile{
		memory: m,
		path:   memPath(parent, name, file),
	}
}

func memPath(parts ...string) string {
	p := path.Join(parts...)
	if p == "." {
		return ""
	}
	return strings.TrimPrefix(p, "/")
}

func memParent(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}

// FailOpen makes every Open of p fail with err.
func (m *Memory) FailOpen(p string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.fault(p).open = err
}

// FailWrite lets the first `after` writes to p succeed and fails the rest.
func (m *Memory) FailWrite(p string, after int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	f := m.fault(p)
	f.writeAfter = after
	f.write = err
}

// FailRead lets the first `after` reads of p succeed and fails the rest.
func (m *Memory) FailRead(p string, after int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	f := m.fault(p)
	f.readAfter = after
	f.read = err
}

func (m *Memory) fault(p string) *fault {
	f, ok := m.faults[p]
	if !ok {
		f = &fault{}
		m.faults[p] = f
	}
	return f
}

// Stats returns a copy of the counters for p.
func (m *Memory) Stats(p string) Stats {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if s, ok := m.stats[p]; ok {
		return *s
	}
	return Stats{}
}

func (m *Memory) stat(p string) *Stats {
	s, ok := m.stats[p]
	if !ok {
		s = &Stats{}
		m.stats[p] = s
	}
	return s
}

// WriteFile stores data at p, creating the parent directories.
func (m *Memory) WriteFile(p string, data []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.mkdirAll(memParent(p))
	m.entries.ReplaceOrInsert(&memEntry{path: p, data: append([]byte{}, data...)})
}

// ReadFile returns a copy of the content at p.
func (m *Memory) ReadFile(p string) ([]byte, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	e, ok := m.entries.Get(&memEntry{path: p})
	if !ok || e.dir {
		return nil, false
	}
	return append([]byte{}, e.data...), true
}

// Paths returns every entry path in order, directories included.
func (m *Memory) Paths() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	paths := []string{}
	m.entries.Ascend(func(e *memEntry) bool {
		if e.path != "" {
			paths = append(paths, e.path)
		}
		return true
	})
	return paths
}

func (m *Memory) mkdirAll(p string) {
	for p != "" {
		if _, ok := m.entries.Get(&memEntry{path: p}); !ok {
			m.entries.ReplaceOrInsert(&memEntry{path: p, dir: true})
		}
		p = memParent(p)
	}
}

func (m *Memory) isDir(p string) bool {
	e, ok := m.entries.Get(&memEntry{path: p})
	return ok && e.dir
}

// children visits every entry below p in order.
func (m *Memory) children(p string, f func(e *memEntry) bool) {
	prefix := ""
	if p != "" {
		prefix = p + "/"
	}
	m.entries.AscendGreaterOrEqual(&memEntry{path: prefix}, func(e *memEntry) bool {
		if !strings.HasPrefix(e.path, prefix) {
			return false
		}
		if e.path == p {
			return true
		}
		return f(e)
	})
}

type memFile struct {
	memory *Memory
	path   string
}

func (f *memFile) Path() string {
	return f.path
}

func (f *memFile) Open(ctx context.Context, mode Mode) (Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := f.memory
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.stat(f.path).Opens++
	if fault, ok := m.faults[f.path]; ok && fault.open != nil {
		return nil, fmt.Errorf("open %s for %s: %w", f.path, mode, fault.open)
	}

	e, exists := m.entries.Get(&memEntry{path: f.path})
	if exists && e.dir {
		return nil, fmt.Errorf("open %s for %s: is a directory", f.path, mode)
	}

	switch mode {
	case ModeRead:
		if !exists {
			return nil, fmt.Errorf("open %s for %s: %w", f.path, mode, os.ErrNotExist)
		}
		return &memDescriptor{file: f, data: e.data}, nil
	case ModeWrite:
		if !m.isDir(memParent(f.path)) {
			return nil, fmt.Errorf("open %s for %s: %w", f.path, mode, os.ErrNotExist)
		}
		m.entries.ReplaceOrInsert(&memEntry{path: f.path})
		return &memDescriptor{file: f, write: true}, nil
	}

	return nil, fmt.Errorf("open %s: unknown mode %d", f.path, mode)
}

func (f *memFile) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.memory.mutex.Lock()
	defer f.memory.mutex.Unlock()
	return f.memory.entries.Has(&memEntry{path: f.path}), nil
}

func (f *memFile) CreateDirectory(ctx context.Context, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := f.memory
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if e, ok := m.entries.Get(&memEntry{path: f.path}); ok {
		if !e.dir {
			return fmt.Errorf("create directory %s: file exists", f.path)
		}
		if !recursive {
			return fmt.Errorf("create directory %s: %w", f.path, os.ErrExist)
		}
		return nil
	}
	if !recursive && !m.isDir(memParent(f.path)) {
		return fmt.Errorf("create directory %s: %w", f.path, os.ErrNotExist)
	}
	m.mkdirAll(f.path)
	return nil
}

func (f *memFile) DeleteDirectory(ctx context.Context, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := f.memory
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.entries.Has(&memEntry{path: f.path}) {
		return nil
	}

	victims := []*memEntry{}
	m.children(f.path, func(e *memEntry) bool {
		victims = append(victims, e)
		return true
	})
	if len(victims) > 0 && !recursive {
		return fmt.Errorf("delete directory %s: not empty", f.path)
	}
	for _, e := range victims {
		m.entries.Delete(e)
	}
	if f.path != "" {
		m.entries.Delete(&memEntry{path: f.path})
	}
	return nil
}

func (f *memFile) Remove(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := f.memory
	m.mutex.Lock()
	defer m.mutex.Unlock()

	e, ok := m.entries.Get(&memEntry{path: f.path})
	if !ok {
		return nil
	}
	if e.dir {
		return fmt.Errorf("remove %s: is a directory", f.path)
	}
	m.entries.Delete(e)
	return nil
}

func (f *memFile) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := f.memory
	m.mutex.Lock()
	defer m.mutex.Unlock()

	names := []string{}
	prefix := ""
	if f.path != "" {
		prefix = f.path + "/"
	}
	m.children(f.path, func(e *memEntry) bool {
		name := strings.TrimPrefix(e.path, prefix)
		if !strings.Contains(name, "/") {
			names = append(names, name)
		}
		return true
	})
	return names, nil
}

type memDescriptor struct {
	file   *memFile
	write  bool
	data   []byte
	offset int
	closed bool
}

func (d *memDescriptor) Read(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if d.closed {
		return 0, os.ErrClosed
	}

	m := d.file.memory
	m.mutex.Lock()
	s := m.stat(d.file.path)
	s.Reads++
	fault, hasFault := m.faults[d.file.path]
	if hasFault && fault.read != nil && s.Reads > fault.readAfter {
		m.mutex.Unlock()
		return 0, fault.read
	}
	m.mutex.Unlock()

	if d.offset >= len(d.data) {
		return 0, io.EOF
	}
	n := copy(buf, d.data[d.offset:])
	d.offset += n
	return n, nil
}

func (d *memDescriptor) Write(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.closed {
		return os.ErrClosed
	}

	m := d.file.memory
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s := m.stat(d.file.path)
	s.Writes++
	if fault, ok := m.faults[d.file.path]; ok && fault.write != nil && s.Writes > fault.writeAfter {
		return fault.write
	}

	e, ok := m.entries.Get(&memEntry{path: d.file.path})
	if !ok {
		return fmt.Errorf("write %s: %w", d.file.path, os.ErrNotExist)
	}
	e.data = append(e.data, buf...)
	return nil
}

func (d *memDescriptor) Close() error {
	if d.closed {
		return os.ErrClosed
	}
	d.closed = true

	m := d.file.memory
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.stat(d.file.path).Closes++
	return nil
}
