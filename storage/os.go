package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"syscall"
)

// OS stores files on the local disk below Root.
type OS struct {
	Root string
}

func NewOS(root string) *OS {
	return &OS{Root: root}
}

func (o *OS) File(parent, name, file string) FileHandle {
	return &osFile{
		path: filepath.Join(o.Root, parent, name, file),
	}
}

// notExist reports paths that cannot exist, including those crossing a
// regular file (ENOTDIR).
func notExist(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

type osFile struct {
	path string
}

func (f *osFile) Path() string {
	return f.path
}

func (f *osFile) Open(ctx context.Context, mode Mode) (Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	flag := os.O_RDONLY
	if mode == ModeWrite {
		flag = os.O_CREATE | os.O_TRUNC | os.O_WRONLY
	}

	file, err := os.OpenFile(f.path, flag, 0o644)
	if notExist(err) && !errors.Is(err, ErrNotExist) {
		return nil, fmt.Errorf("%s: %w: %w", mode, ErrNotExist, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", mode, err)
	}

	return &osDescriptor{file: file}, nil
}

func (f *osFile) Exists(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(f.path)
	if notExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (f *osFile) CreateDirectory(ctx context.Context, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	if recursive {
		err = os.MkdirAll(f.path, 0o755)
	} else {
		err = os.Mkdir(f.path, 0o755)
	}
	if err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

func (f *osFile) DeleteDirectory(ctx context.Context, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	if recursive {
		err = os.RemoveAll(f.path)
	} else {
		err = os.Remove(f.path)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete directory: %w", err)
	}
	return nil
}

func (f *osFile) Remove(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func (f *osFile) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(f.path)
	if notExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

type osDescriptor struct {
	file *os.File
}

func (d *osDescriptor) Read(ctx context.Context, buf []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(d.file, buf)
	if err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}

func (d *osDescriptor) Write(ctx context.Context, buf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.file.Write(buf)
	return err
}

func (d *osDescriptor) Close() error {
	return d.file.Close()
}
