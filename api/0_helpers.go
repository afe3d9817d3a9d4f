package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptionpersist/api/apidatabasev1"
	"github.com/fulldump/inceptionpersist/persistence"
	"github.com/fulldump/inceptionpersist/service"
)

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

// describeError maps an error to its http status code and a human description.
func describeError(ctx context.Context, err error) (int, string) {

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "user is not authenticated"

	case errors.Is(err, persistence.ErrNotFound):
		return http.StatusNotFound, fmt.Sprintf("database '%s' not found", box.GetUrlParameter(ctx, "databaseName"))

	case errors.Is(err, service.ErrCollectionNotFound):
		return http.StatusNotFound, "collection not found"

	case errors.Is(err, persistence.ErrInvalidName):
		return http.StatusBadRequest, "invalid database name"

	case errors.Is(err, apidatabasev1.ErrBadRequest):
		return http.StatusBadRequest, "Malformed request"
	}

	if _, ok := err.(*json.SyntaxError); ok {
		return http.StatusBadRequest, "Malformed JSON"
	}

	collectionErr := &persistence.CollectionError{}
	if errors.As(err, &collectionErr) {
		return http.StatusInternalServerError, "Storage failure"
	}

	return http.StatusInternalServerError, "Unexpected error"
}

// committedWriter remembers whether the response has already started.
type committedWriter struct {
	http.ResponseWriter
	committed bool
}

func (w *committedWriter) WriteHeader(status int) {
	w.committed = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *committedWriter) Write(b []byte) (int, error) {
	w.committed = true
	return w.ResponseWriter.Write(b)
}

// PrettyErrorInterceptor renders errors as json. Errors raised once the
// response has started (a stream cut in the middle) are left in the context
// for the access log and the client only sees the truncated body.
func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		c := box.GetBoxContext(ctx)
		w := &committedWriter{ResponseWriter: c.Response}
		c.Response = w

		next(ctx)

		err := box.GetError(ctx)
		if err == nil || w.committed {
			return
		}

		status, description := describeError(ctx, err)
		w.WriteHeader(status)
		PrettyError{
			Message:     err.Error(),
			Description: description,
		}.MarshalTo(w)
	}
}
