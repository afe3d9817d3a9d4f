// Package persistence stores database snapshots as one metadata file plus one
// JSONL file per collection:
//
//	<root>/<parent>/<database>/_      metadata, structure only
//	<root>/<parent>/<database>/<idx>  one document per line
//
// Calls for the same database name must not overlap; the caller serializes
// them. Files of one call are processed concurrently and a failing collection
// never stops its siblings. The error returned is the first one by position:
// metadata first, then collections by index.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fulldump/inceptionpersist/snapshot"
	"github.com/fulldump/inceptionpersist/storage"
)

var (
	ErrInvalidName        = errors.New("invalid database name")
	ErrCollectionNotFound = errors.New("collection not found")
)

type Persister struct {
	config Config
	fs     storage.FileSystem
	logger *zap.Logger
	writer *Writer
	reader *Reader
}

func New(config Config, fs storage.FileSystem, logger *zap.Logger) (*Persister, error) {

	err := config.Validate()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Persister{
		config: config,
		fs:     fs,
		logger: logger.Named("persister"),
		writer: NewWriter(fs, config.Parent, config.Writer.Batch, logger.Named("writer")),
		reader: NewReader(fs, config.Parent, config.Reader.Buffer, logger.Named("reader")),
	}, nil
}

func (p *Persister) Config() Config {
	return p.config
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}
	return nil
}

func (p *Persister) group() *errgroup.Group {
	g := &errgroup.Group{}
	if p.config.Concurrency > 0 {
		g.SetLimit(p.config.Concurrency)
	}
	return g
}

// Export persists the metadata of s and every dirty collection. It returns
// once all files have settled. s is not modified.
func (p *Persister) Export(ctx context.Context, name string, s *snapshot.Snapshot) error {

	err := validateName(name)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("export '%s': nil snapshot", name)
	}

	t0 := time.Now()
	logger := p.logger.With(zap.String("database", name))

	metadata, err := snapshot.EncodeMetadata(s)
	if err != nil {
		return &CollectionError{Index: -1, Op: OpEncode, Err: err}
	}

	err = p.fs.File(p.config.Parent, name, "").CreateDirectory(ctx, true)
	if err != nil {
		return fmt.Errorf("export '%s': %w", name, err)
	}

	errs := make([]error, len(s.Collections)+1)
	g := p.group()

	g.Go(func() error {
		errs[0] = p.writer.WriteMetadata(ctx, name, metadata)
		return nil
	})

	for i, col := range s.Collections {
		g.Go(func() error {
			stats, err := p.writer.Write(ctx, name, i, col)
			errs[i+1] = err
			if err != nil {
				logger.Error("write collection", zap.Int("collection", i), zap.Error(err))
				return nil
			}
			if !stats.Skipped {
				logger.Debug("collection written",
					zap.Int("collection", i),
					zap.Int("documents", stats.Documents),
					zap.Int("batches", stats.Batches),
					zap.Int64("bytes", stats.Bytes),
					zap.Duration("elapsed", stats.Elapsed),
				)
			}
			return nil
		})
	}

	g.Wait()

	err = firstError(errs...)
	if err != nil {
		return err
	}

	if p.config.Prune {
		err = p.prune(ctx, name, len(s.Collections))
		if err != nil {
			return err
		}
	}

	logger.Info("exported",
		zap.Int("collections", len(s.Collections)),
		zap.Duration("elapsed", time.Since(t0)),
	)

	return nil
}

// prune removes collection files with an index beyond the exported ones.
func (p *Persister) prune(ctx context.Context, name string, collections int) error {

	names, err := p.fs.File(p.config.Parent, name, "").List(ctx)
	if err != nil {
		return fmt.Errorf("prune '%s': %w", name, err)
	}

	for _, filename := range names {
		i, err := strconv.Atoi(filename)
		if err != nil || strconv.Itoa(i) != filename || i < collections {
			continue
		}
		err = p.fs.File(p.config.Parent, name, filename).Remove(ctx)
		if err != nil {
			return fmt.Errorf("prune '%s': %w", name, err)
		}
		p.logger.Info("pruned stale collection file", zap.String("database", name), zap.Int("collection", i))
	}

	return nil
}

// Load rebuilds a snapshot from storage. It returns ErrNotFound, without
// touching storage, when the database was never exported.
//
// When some collection fails the snapshot is still returned, together with
// the first error; failed collections come back without documents.
// Loaded collections are clean.
func (p *Persister) Load(ctx context.Context, name string) (*snapshot.Snapshot, error) {

	err := validateName(name)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	logger := p.logger.With(zap.String("database", name))

	s, err := p.metadata(ctx, name)
	if err != nil {
		return nil, err
	}

	collections := make([]*snapshot.Collection, len(s.Collections))
	errs := make([]error, len(s.Collections))
	g := p.group()

	for i, col := range s.Collections {
		g.Go(func() error {
			docs, err := p.reader.Read(ctx, name, i)
			if err != nil {
				logger.Error("read collection", zap.Int("collection", i), zap.Error(err))
				errs[i] = err
				docs = []snapshot.Document{}
			}
			loaded := col.WithData(docs)
			loaded.Dirty = false
			collections[i] = loaded
			return nil
		})
	}

	g.Wait()

	s.Collections = collections

	err = firstError(errs...)
	if err != nil {
		return s, err
	}

	logger.Info("loaded",
		zap.Int("collections", len(collections)),
		zap.Duration("elapsed", time.Since(t0)),
	)

	return s, nil
}

// metadata reads and decodes the metadata file of the database. It returns
// ErrNotFound when the database was never exported.
func (p *Persister) metadata(ctx context.Context, name string) (*snapshot.Snapshot, error) {

	exists, err := p.fs.File(p.config.Parent, name, MetadataFile).Exists(ctx)
	if err != nil {
		return nil, &CollectionError{Index: -1, Op: OpOpen, Err: err}
	}
	if !exists {
		return nil, ErrNotFound
	}

	blob, err := p.reader.ReadMetadata(ctx, name)
	if isMissing(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s, err := snapshot.DecodeMetadata(blob)
	if err != nil {
		return nil, &CollectionError{Index: -1, Op: OpParse, Err: err}
	}

	return s, nil
}

// LoadCollection reads one collection only. Failures of the other
// collections of the database do not affect it.
func (p *Persister) LoadCollection(ctx context.Context, name string, index int) (*snapshot.Collection, error) {

	err := validateName(name)
	if err != nil {
		return nil, err
	}

	s, err := p.metadata(ctx, name)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(s.Collections) {
		return nil, fmt.Errorf("%w: index %d of database '%s'", ErrCollectionNotFound, index, name)
	}

	docs, err := p.reader.Read(ctx, name, index)
	if err != nil {
		return nil, err
	}

	loaded := s.Collections[index].WithData(docs)
	loaded.Dirty = false

	return loaded, nil
}

// Delete removes everything stored for the database. Deleting a database
// that does not exist succeeds.
func (p *Persister) Delete(ctx context.Context, name string) error {

	err := validateName(name)
	if err != nil {
		return err
	}

	err = p.fs.File(p.config.Parent, name, "").DeleteDirectory(ctx, true)
	if err != nil {
		return fmt.Errorf("delete '%s': %w", name, err)
	}

	p.logger.Info("deleted", zap.String("database", name))

	return nil
}

// Databases lists the names of the persisted databases.
func (p *Persister) Databases(ctx context.Context) ([]string, error) {

	names, err := p.fs.File(p.config.Parent, "", "").List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}

	result := []string{}
	for _, name := range names {
		exists, err := p.fs.File(p.config.Parent, name, MetadataFile).Exists(ctx)
		if err != nil {
			return nil, fmt.Errorf("list databases: %w", err)
		}
		if exists {
			result = append(result, name)
		}
	}

	return result, nil
}
