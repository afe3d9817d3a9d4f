package persistence

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	json2 "github.com/go-json-experiment/json"
	"go.uber.org/zap"

	"github.com/fulldump/inceptionpersist/snapshot"
	"github.com/fulldump/inceptionpersist/storage"
)

const OpEncode = "encode"

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// WriteStats describes what one collection write did.
type WriteStats struct {
	Skipped   bool
	Documents int
	Batches   int
	Bytes     int64
	Elapsed   time.Duration
}

// Writer serializes collections to their JSONL files in fixed size batches.
type Writer struct {
	fs     storage.FileSystem
	parent string
	batch  int
	logger *zap.Logger
}

func NewWriter(fs storage.FileSystem, parent string, batch int, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{
		fs:     fs,
		parent: parent,
		batch:  batch,
		logger: logger,
	}
}

// Write replaces the file of the collection at index with one line per
// document. Clean collections are skipped and their file is left untouched.
//
// Lines are flushed every time the number of encoded documents reaches a
// multiple of the batch size, and once more for the remainder: 101 documents
// in batches of 25 take exactly 5 writes.
func (w *Writer) Write(ctx context.Context, name string, index int, c *snapshot.Collection) (stats WriteStats, err error) {

	if c == nil || !c.Dirty {
		stats.Skipped = true
		return stats, nil
	}

	t0 := time.Now()
	defer func() {
		stats.Elapsed = time.Since(t0)
	}()

	file := w.fs.File(w.parent, name, strconv.Itoa(index))
	d, err := file.Open(ctx, storage.ModeWrite)
	if err != nil {
		return stats, &CollectionError{Index: index, Op: OpOpen, Err: err}
	}
	defer func() {
		closeErr := d.Close()
		if err == nil && closeErr != nil {
			err = &CollectionError{Index: index, Op: OpClose, Err: closeErr}
		}
	}()

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	flush := func() error {
		if buf.Len() == 0 {
			return nil
		}
		err := d.Write(ctx, buf.Bytes())
		if err != nil {
			w.logger.Warn("partial write",
				zap.String("path", file.Path()),
				zap.Int("batch", stats.Batches),
				zap.Int("documents", stats.Documents),
				zap.Error(err),
			)
			return &CollectionError{Index: index, Op: OpWrite, Err: err}
		}
		stats.Batches++
		stats.Bytes += int64(buf.Len())
		buf.Reset()
		return nil
	}

	for i, doc := range c.Data {
		line, err := json2.Marshal(doc, json2.Deterministic(true))
		if err != nil {
			return stats, &CollectionError{Index: index, Op: OpEncode, Err: fmt.Errorf("document %d: %w", i, err)}
		}
		buf.Write(line)
		buf.WriteByte('\n')
		stats.Documents++

		if stats.Documents%w.batch == 0 {
			err := flush()
			if err != nil {
				return stats, err
			}
		}
	}

	err = flush()
	if err != nil {
		return stats, err
	}

	return stats, nil
}

// WriteMetadata replaces the metadata file of the database.
func (w *Writer) WriteMetadata(ctx context.Context, name string, blob []byte) (err error) {

	file := w.fs.File(w.parent, name, MetadataFile)
	d, err := file.Open(ctx, storage.ModeWrite)
	if err != nil {
		return &CollectionError{Index: -1, Op: OpOpen, Err: err}
	}
	defer func() {
		closeErr := d.Close()
		if err == nil && closeErr != nil {
			err = &CollectionError{Index: -1, Op: OpClose, Err: closeErr}
		}
	}()

	err = d.Write(ctx, blob)
	if err != nil {
		return &CollectionError{Index: -1, Op: OpWrite, Err: err}
	}

	return nil
}
