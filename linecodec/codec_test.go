package linecodec

import (
	"errors"
	"testing"

	"github.com/fulldump/biff"
)

func collect(values *[]any) EmitFunc {
	return func(value any) error {
		*values = append(*values, value)
		return nil
	}
}

func parseAll(t *testing.T, chunks ...string) []any {
	values := []any{}
	var pending []byte
	var err error
	for _, chunk := range chunks {
		pending, err = Chunk(pending, []byte(chunk), collect(&values))
		if err != nil {
			t.Fatalf("chunk %q: %v", chunk, err)
		}
	}
	if err := Flush(pending, collect(&values)); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return values
}

func TestChunk(t *testing.T) {

	biff.Alternative("Chunk", func(a *biff.A) {

		a.Alternative("Single complete line", func(a *biff.A) {
			values := []any{}
			pending, err := Chunk(nil, []byte(`{"a":1}`+"\n"), collect(&values))
			biff.AssertNil(err)
			biff.AssertEqual(len(pending), 0)
			biff.AssertEqualJson(values, []any{map[string]any{"a": 1}})
		})

		a.Alternative("Unterminated tail is returned", func(a *biff.A) {
			values := []any{}
			pending, err := Chunk(nil, []byte(`{"a":1}`+"\n"+`{"b":`), collect(&values))
			biff.AssertNil(err)
			biff.AssertEqual(string(pending), `{"b":`)
			biff.AssertEqual(len(values), 1)

			a.Alternative("Next chunk completes it", func(a *biff.A) {
				pending, err = Chunk(pending, []byte(`2}`+"\n"), collect(&values))
				biff.AssertNil(err)
				biff.AssertEqual(len(pending), 0)
				biff.AssertEqualJson(values, []any{
					map[string]any{"a": 1},
					map[string]any{"b": 2},
				})
			})
		})

		a.Alternative("Blank lines emit nothing", func(a *biff.A) {
			values := parseAll(t, "\n\n{\"a\":1}\n\n{\"a\":2}\n\n")
			biff.AssertEqual(len(values), 2)
		})

		a.Alternative("Final line without newline is flushed", func(a *biff.A) {
			values := parseAll(t, "{\"a\":1}\n{\"a\":2}")
			biff.AssertEqualJson(values, []any{
				map[string]any{"a": 1},
				map[string]any{"a": 2},
			})
		})

		a.Alternative("Malformed line", func(a *biff.A) {
			values := []any{}
			_, err := Chunk(nil, []byte("{\"a\":1}\n{oops}\n{\"a\":3}\n"), collect(&values))
			biff.AssertTrue(errors.Is(err, ErrMalformedRecord))
			biff.AssertEqual(len(values), 1)

			malformed := &MalformedRecordError{}
			biff.AssertTrue(errors.As(err, &malformed))
			biff.AssertEqual(string(malformed.Record), "{oops}")
		})

		a.Alternative("Malformed residual on flush", func(a *biff.A) {
			err := Flush([]byte(`{"a":`), collect(&[]any{}))
			biff.AssertTrue(errors.Is(err, ErrMalformedRecord))
		})

		a.Alternative("Emit error stops the scan", func(a *biff.A) {
			stop := errors.New("stop")
			calls := 0
			_, err := Chunk(nil, []byte("{}\n{}\n{}\n"), func(value any) error {
				calls++
				return stop
			})
			biff.AssertEqual(err, stop)
			biff.AssertEqual(calls, 1)
		})

		a.Alternative("Pending does not alias input", func(a *biff.A) {
			input := []byte(`{"x":"abc`)
			pending, err := Chunk(nil, input, collect(&[]any{}))
			biff.AssertNil(err)
			copy(input, "XXXXXXXXX")
			biff.AssertEqual(string(pending), `{"x":"abc`)
		})
	})
}

func TestChunk_BoundaryIndependence(t *testing.T) {

	stream := "{\"name\":\"Fulanez\",\"tags\":[\"a\",\"b\"]}\n" +
		"\n" +
		"{\"name\":\"Menganez\",\"nested\":{\"n\":3.5}}\n" +
		"{\"name\":\"ñandú é\"}\n" +
		"[1,2,3]\n" +
		"{\"last\":true}"

	expected := parseAll(t, stream)
	biff.AssertEqual(len(expected), 5)

	for i := 0; i <= len(stream); i++ {
		for j := i; j <= len(stream); j++ {
			obtained := parseAll(t, stream[:i], stream[i:j], stream[j:])
			if !biff.AssertEqualJson(obtained, expected) {
				t.Fatalf("split at %d,%d", i, j)
			}
		}
	}
}

func TestChunk_ByteAtATime(t *testing.T) {

	stream := "{\"a\":1}\n{\"a\":2}\n\n{\"a\":3}\n"

	chunks := []string{}
	for i := 0; i < len(stream); i++ {
		chunks = append(chunks, stream[i:i+1])
	}

	biff.AssertEqualJson(parseAll(t, chunks...), parseAll(t, stream))
}
