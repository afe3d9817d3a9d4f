package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/fulldump/biff"
	"go.uber.org/zap/zaptest"

	"github.com/fulldump/inceptionpersist/storage"
)

func TestReader(t *testing.T) {

	biff.Alternative("Reader", func(a *biff.A) {

		ctx := context.Background()
		fs := storage.NewMemory()
		path := fs.File("data", "db", "3").Path()
		r := NewReader(fs, "data", 8, zaptest.NewLogger(t))

		a.Alternative("Documents in file order", func(a *biff.A) {
			fs.WriteFile(path, []byte(`{"name":"Pablo"}`+"\n"+`{"name":"Sara","tags":["a","b"]}`+"\n"))
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(err)
			biff.AssertEqualJson(docs, []any{
				map[string]any{"name": "Pablo"},
				map[string]any{"name": "Sara", "tags": []any{"a", "b"}},
			})
			biff.AssertEqual(fs.Stats(path).Closes, 1)
		})

		a.Alternative("Blank line between two documents", func(a *biff.A) {
			fs.WriteFile(path, []byte(`{"a":1}`+"\n\n"+`{"a":2}`+"\n"))
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(err)
			biff.AssertEqual(len(docs), 2)
		})

		a.Alternative("Last line without newline", func(a *biff.A) {
			fs.WriteFile(path, []byte(`{"a":1}`+"\n"+`{"a":2}`))
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(err)
			biff.AssertEqualJson(docs, []any{map[string]any{"a": 1}, map[string]any{"a": 2}})
		})

		a.Alternative("Missing file is an empty collection", func(a *biff.A) {
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(err)
			biff.AssertNotNil(docs)
			biff.AssertEqual(len(docs), 0)
		})

		a.Alternative("Empty file", func(a *biff.A) {
			fs.WriteFile(path, nil)
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(err)
			biff.AssertEqual(len(docs), 0)
		})

		a.Alternative("Stops at the first short read", func(a *biff.A) {
			fs.WriteFile(path, []byte("{\"a\":1}\n{}\n")) // 11 bytes: 8 + 3
			_, err := r.Read(ctx, "db", 3)
			biff.AssertNil(err)
			biff.AssertEqual(fs.Stats(path).Reads, 2)
		})

		a.Alternative("Exact multiple reads until end of stream", func(a *biff.A) {
			fs.WriteFile(path, []byte("{\"a\":1}\n{\"b\":2}\n")) // 16 bytes: 8 + 8 + EOF
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(err)
			biff.AssertEqual(len(docs), 2)
			biff.AssertEqual(fs.Stats(path).Reads, 3)
		})

		a.Alternative("Malformed record discards the collection", func(a *biff.A) {
			fs.WriteFile(path, []byte(`{"a":1}`+"\n"+`{"a":`+"\n"+`{"a":3}`+"\n"))
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(docs)
			biff.AssertTrue(errors.Is(err, ErrMalformedRecord))

			collectionErr := &CollectionError{}
			biff.AssertTrue(errors.As(err, &collectionErr))
			biff.AssertEqual(collectionErr.Index, 3)
			biff.AssertEqual(collectionErr.Op, OpParse)
			biff.AssertEqual(fs.Stats(path).Closes, 1)
		})

		a.Alternative("Malformed unterminated last line", func(a *biff.A) {
			fs.WriteFile(path, []byte(`{"a":1}`+"\n"+`{"a":`))
			_, err := r.Read(ctx, "db", 3)
			biff.AssertTrue(errors.Is(err, ErrMalformedRecord))
		})

		a.Alternative("Records must be objects", func(a *biff.A) {
			fs.WriteFile(path, []byte(`{"a":1}`+"\n"+`[1,2]`+"\n"))
			_, err := r.Read(ctx, "db", 3)
			biff.AssertTrue(errors.Is(err, ErrMalformedRecord))
		})

		a.Alternative("Array dump is not read back", func(a *biff.A) {
			fs.WriteFile(path, []byte(`[{"a":1},{"a":2}]`+"\n"))
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(docs)
			biff.AssertTrue(errors.Is(err, ErrMalformedRecord))
		})

		a.Alternative("Read failure", func(a *biff.A) {
			boom := errors.New("io error")
			fs.WriteFile(path, []byte("{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n"))
			fs.FailRead(path, 1, boom)
			docs, err := r.Read(ctx, "db", 3)
			biff.AssertNil(docs)
			biff.AssertTrue(errors.Is(err, boom))

			collectionErr := &CollectionError{}
			biff.AssertTrue(errors.As(err, &collectionErr))
			biff.AssertEqual(collectionErr.Op, OpRead)
			biff.AssertEqual(fs.Stats(path).Closes, 1)
		})

		a.Alternative("Metadata", func(a *biff.A) {
			fs.WriteFile(fs.File("data", "db", MetadataFile).Path(), []byte(`{"name":"db","collections":[]}`))
			blob, err := r.ReadMetadata(ctx, "db")
			biff.AssertNil(err)
			biff.AssertEqual(string(blob), `{"name":"db","collections":[]}`)
		})
	})
}

func TestReader_AnyBufferSize(t *testing.T) {

	ctx := context.Background()
	fs := storage.NewMemory()
	content := "{\"name\":\"ñandú\",\"n\":1}\n\n{\"name\":\"b\",\"list\":[1,2,3]}\n{\"name\":\"c\"}\n"
	fs.WriteFile(fs.File("data", "db", "0").Path(), []byte(content))

	expected, err := NewReader(fs, "data", len(content)+1, nil).Read(ctx, "db", 0)
	biff.AssertNil(err)
	biff.AssertEqual(len(expected), 3)

	for size := 1; size <= len(content)+1; size++ {
		docs, err := NewReader(fs, "data", size, nil).Read(ctx, "db", 0)
		if err != nil {
			t.Fatalf("buffer %d: %v", size, err)
		}
		if !biff.AssertEqualJson(docs, expected) {
			t.Fatalf("buffer %d", size)
		}
	}
}
