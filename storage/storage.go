// Package storage is the filesystem seen by the persistence layer. Paths are
// always <root>/<parent>/<name>/<file>; the root is bound when the FileSystem
// is built.
package storage

import (
	"context"
	"io/fs"
)

type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	}
	return "unknown"
}

// ErrNotExist is returned (wrapped) when opening a missing file for read.
var ErrNotExist = fs.ErrNotExist

type FileSystem interface {
	// File locates a file. An empty file name locates the <name> directory
	// and an empty name as well locates the <parent> directory.
	File(parent, name, file string) FileHandle
}

type FileHandle interface {
	Path() string
	// Open in ModeWrite creates or truncates the file.
	Open(ctx context.Context, mode Mode) (Descriptor, error)
	Exists(ctx context.Context) (bool, error)
	CreateDirectory(ctx context.Context, recursive bool) error
	// DeleteDirectory succeeds when the directory does not exist.
	DeleteDirectory(ctx context.Context, recursive bool) error
	// Remove deletes a single file, succeeds when it does not exist.
	Remove(ctx context.Context) error
	// List returns the sorted entry names of a directory.
	List(ctx context.Context) ([]string, error)
}

// Descriptor is exclusively owned by the operation that opened it.
type Descriptor interface {
	// Read fills buf unless the end of the file is reached first. It returns
	// 0, io.EOF once nothing is left.
	Read(ctx context.Context, buf []byte) (int, error)
	// Write appends buf at the current position.
	Write(ctx context.Context, buf []byte) error
	Close() error
}
