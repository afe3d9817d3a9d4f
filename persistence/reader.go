package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/fulldump/inceptionpersist/linecodec"
	"github.com/fulldump/inceptionpersist/snapshot"
	"github.com/fulldump/inceptionpersist/storage"
)

// Reader rebuilds collections from their JSONL files reading fixed size chunks.
type Reader struct {
	fs     storage.FileSystem
	parent string
	buffer int
	logger *zap.Logger
}

func NewReader(fs storage.FileSystem, parent string, buffer int, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		fs:     fs,
		parent: parent,
		buffer: buffer,
		logger: logger,
	}
}

// Read returns the documents stored for the collection at index, in file
// order. A missing file is an empty collection. On failure the documents
// parsed so far are discarded.
//
// Every line must hold one json object. Lines holding an array, as written by
// the one-array-per-file dump format, are rejected as malformed records; that
// format is not read back.
func (r *Reader) Read(ctx context.Context, name string, index int) ([]snapshot.Document, error) {

	file := r.fs.File(r.parent, name, strconv.Itoa(index))

	docs := []snapshot.Document{}
	emit := func(value any) error {
		doc, ok := value.(map[string]any)
		if !ok {
			return &linecodec.MalformedRecordError{
				Err: fmt.Errorf("record %d is %T, not an object", len(docs), value),
			}
		}
		docs = append(docs, doc)
		return nil
	}

	var pending []byte
	err := r.stream(ctx, file, index, func(chunk []byte) error {
		var err error
		pending, err = linecodec.Chunk(pending, chunk, emit)
		if err != nil {
			return &CollectionError{Index: index, Op: OpParse, Err: fmt.Errorf("after %d records: %w", len(docs), err)}
		}
		return nil
	})
	if isMissing(err) {
		r.logger.Debug("collection file not found", zap.String("path", file.Path()))
		return []snapshot.Document{}, nil
	}
	if err != nil {
		return nil, err
	}

	err = linecodec.Flush(pending, emit)
	if err != nil {
		return nil, &CollectionError{Index: index, Op: OpParse, Err: fmt.Errorf("after %d records: %w", len(docs), err)}
	}

	return docs, nil
}

// ReadMetadata returns the raw metadata blob of the database.
func (r *Reader) ReadMetadata(ctx context.Context, name string) ([]byte, error) {

	file := r.fs.File(r.parent, name, MetadataFile)

	blob := &bytes.Buffer{}
	err := r.stream(ctx, file, -1, func(chunk []byte) error {
		blob.Write(chunk)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return blob.Bytes(), nil
}

func isMissing(err error) bool {
	collectionErr := &CollectionError{}
	if !errors.As(err, &collectionErr) {
		return false
	}
	return collectionErr.Op == OpOpen && errors.Is(err, storage.ErrNotExist)
}

// stream feeds consume with consecutive chunks of the file. It keeps reading
// while reads fill the whole buffer and stops at the first short read.
func (r *Reader) stream(ctx context.Context, file storage.FileHandle, index int, consume func(chunk []byte) error) (err error) {

	d, err := file.Open(ctx, storage.ModeRead)
	if err != nil {
		return &CollectionError{Index: index, Op: OpOpen, Err: err}
	}
	defer func() {
		closeErr := d.Close()
		if err == nil && closeErr != nil {
			err = &CollectionError{Index: index, Op: OpClose, Err: closeErr}
		}
	}()

	buf := make([]byte, r.buffer)
	for {
		n, err := d.Read(ctx, buf)
		if n > 0 {
			consumeErr := consume(buf[:n])
			if consumeErr != nil {
				return consumeErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &CollectionError{Index: index, Op: OpRead, Err: err}
		}
		if n < len(buf) {
			return nil
		}
	}
}
