package apidatabasev1

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"
	json2 "github.com/go-json-experiment/json"

	"github.com/fulldump/inceptionpersist/snapshot"
)

type ExportResponse struct {
	Name        string `json:"name"`
	Collections int    `json:"collections"`
	Dirty       int    `json:"dirty"`
}

// export reads the snapshot from the body by hand: unknown engine fields must
// survive, and box decodes bodies with encoding/json.
func export(ctx context.Context, r *http.Request) (*ExportResponse, error) {

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	snap := &snapshot.Snapshot{}
	err = json2.Unmarshal(body, snap)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot: %w", ErrBadRequest, err)
	}

	s := GetServicer(ctx)
	databaseName := box.GetUrlParameter(ctx, "databaseName")

	err = s.Export(ctx, databaseName, snap)
	if err != nil {
		return nil, err
	}

	dirty := 0
	for _, col := range snap.Collections {
		if col != nil && col.Dirty {
			dirty++
		}
	}

	return &ExportResponse{
		Name:        databaseName,
		Collections: len(snap.Collections),
		Dirty:       dirty,
	}, nil
}
