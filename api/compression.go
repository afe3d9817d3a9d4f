package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/fulldump/box"
	"github.com/klauspost/compress/gzip"
)

// Compression gzips responses for clients that accept it. The encoder starts
// with the first body byte, so responses without a body keep their plain
// headers.
func Compression(next box.H) box.H {
	return func(ctx context.Context) {
		r := box.GetRequest(ctx)
		if !acceptsGzip(r.Header.Get("Accept-Encoding")) {
			next(ctx)
			return
		}

		c := box.GetBoxContext(ctx)
		w := &lazyGzipWriter{ResponseWriter: c.Response}
		c.Response = w
		defer w.Close()

		next(ctx)
	}
}

func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), "gzip") {
			continue
		}
		return strings.ReplaceAll(params, " ", "") != "q=0"
	}
	return false
}

type lazyGzipWriter struct {
	http.ResponseWriter
	gz      *gzip.Writer
	started bool
}

func (w *lazyGzipWriter) start() {
	if w.started {
		return
	}
	w.started = true
	h := w.ResponseWriter.Header()
	h.Add("Vary", "Accept-Encoding")
	if h.Get("Content-Encoding") != "" {
		return
	}
	h.Set("Content-Encoding", "gzip")
	h.Del("Content-Length")
	gz, _ := gzip.NewWriterLevel(w.ResponseWriter, gzip.BestSpeed)
	w.gz = gz
}

func (w *lazyGzipWriter) WriteHeader(status int) {
	if status != http.StatusNoContent && status != http.StatusNotModified {
		w.start()
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *lazyGzipWriter) Write(b []byte) (int, error) {
	w.start()
	if w.gz == nil {
		return w.ResponseWriter.Write(b)
	}
	return w.gz.Write(b)
}

// Flush pushes the compressed bytes so far, ndjson consumers read documents
// as they are found.
func (w *lazyGzipWriter) Flush() {
	if w.gz != nil {
		w.gz.Flush()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *lazyGzipWriter) Close() error {
	if w.gz == nil {
		return nil
	}
	return w.gz.Close()
}

func (w *lazyGzipWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
