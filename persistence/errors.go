package persistence

import (
	"errors"
	"fmt"

	"github.com/fulldump/inceptionpersist/linecodec"
)

var (
	// ErrNotFound means the database has never been persisted.
	ErrNotFound = errors.New("database not found")

	ErrMalformedRecord = linecodec.ErrMalformedRecord
)

const (
	OpOpen  = "open"
	OpRead  = "read"
	OpParse = "parse"
	OpWrite = "write"
	OpClose = "close"
)

// CollectionError scopes a failure to one collection file. The metadata
// file reports Index -1.
type CollectionError struct {
	Index int
	Op    string
	Err   error
}

func (e *CollectionError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("metadata: %s: %s", e.Op, e.Err.Error())
	}
	return fmt.Sprintf("collection %d: %s: %s", e.Index, e.Op, e.Err.Error())
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// firstError returns the first non nil error in position order.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
