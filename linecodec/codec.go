// Package linecodec splits a byte stream into newline-delimited JSON records.
//
// The functions are stateless: the caller carries the returned pending bytes
// from one call to the next and flushes them at end of stream. Feeding a
// stream in any number of chunks emits exactly the same records as feeding it
// in one piece.
package linecodec

import (
	"bytes"
	"errors"
	"fmt"

	json2 "github.com/go-json-experiment/json"
)

// EmitFunc receives every parsed record in stream order.
type EmitFunc func(value any) error

var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError is returned when a completed line is not valid JSON.
type MalformedRecordError struct {
	Record []byte
	Err    error
}

func (e *MalformedRecordError) Error() string {
	record := e.Record
	if len(record) > 64 {
		record = record[:64]
	}
	return fmt.Sprintf("%s %q: %s", ErrMalformedRecord.Error(), record, e.Err.Error())
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Chunk consumes input, emitting one value per completed line. Blank lines
// are skipped. The returned slice holds the unterminated tail and never
// aliases input, so callers may reuse their read buffer.
func Chunk(pending, input []byte, emit EmitFunc) ([]byte, error) {
	for {
		i := bytes.IndexByte(input, '\n')
		if i < 0 {
			break
		}
		line := input[:i]
		input = input[i+1:]

		if len(pending) > 0 {
			pending = append(pending, line...)
			line = pending
			pending = pending[:0]
		}

		if len(line) == 0 {
			continue
		}

		err := parse(line, emit)
		if err != nil {
			return nil, err
		}
	}

	return append(pending, input...), nil
}

// Flush parses what is left once the stream is over, a final line written
// without its trailing newline.
func Flush(pending []byte, emit EmitFunc) error {
	if len(pending) == 0 {
		return nil
	}
	return parse(pending, emit)
}

func parse(line []byte, emit EmitFunc) error {
	var value any
	err := json2.Unmarshal(line, &value)
	if err != nil {
		return &MalformedRecordError{
			Record: bytes.Clone(line),
			Err:    err,
		}
	}
	return emit(value)
}
