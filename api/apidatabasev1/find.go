package apidatabasev1

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/fulldump/box"
	json2 "github.com/go-json-experiment/json"

	"github.com/fulldump/inceptionpersist/service"
	"github.com/fulldump/inceptionpersist/snapshot"
)

type findInput struct {
	service.FindOptions `json:",inline"`
	Fields              []string `json:"fields"`
}

func find(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	requestBody, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}

	input := findInput{
		FindOptions: service.DefaultFindOptions(),
	}
	if len(bytes.TrimSpace(requestBody)) > 0 {
		err = json2.Unmarshal(requestBody, &input)
		if err != nil {
			return fmt.Errorf("%w: find options: %w", ErrBadRequest, err)
		}
	}

	collectionIndex, err := strconv.Atoi(box.GetUrlParameter(ctx, "collectionIndex"))
	if err != nil {
		return fmt.Errorf("%w: collection index: %w", ErrBadRequest, err)
	}

	s := GetServicer(ctx)
	databaseName := box.GetUrlParameter(ctx, "databaseName")

	return s.Find(ctx, databaseName, collectionIndex, input.FindOptions, writeDocument(w, input.Fields))
}

// writeDocument streams one json per line. Headers are set on the first
// document so a failure before it still gets a regular error response.
func writeDocument(w http.ResponseWriter, fields []string) func(doc snapshot.Document) error {
	started := false
	return func(doc snapshot.Document) error {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			started = true
		}
		data, err := json2.Marshal(doc, json2.Deterministic(true))
		if err != nil {
			return err
		}
		if len(fields) > 0 {
			data, err = project(data, fields)
			if err != nil {
				return err
			}
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
}
