package service

import (
	"context"
	"fmt"

	"github.com/SierraSoftworks/connor"

	"github.com/fulldump/inceptionpersist/snapshot"
)

type FindOptions struct {
	Filter map[string]any `json:"filter"`
	Skip   int64          `json:"skip"`
	Limit  int64          `json:"limit"`
}

func DefaultFindOptions() FindOptions {
	return FindOptions{
		Filter: map[string]any{},
		Skip:   0,
		Limit:  1,
	}
}

// Find traverses the documents of one persisted collection calling f for
// every document matching the filter. A negative limit means no limit.
// Only the requested collection is read.
func (s *Service) Find(ctx context.Context, name string, index int, options FindOptions, f func(doc snapshot.Document) error) error {

	col, err := s.LoadCollection(ctx, name, index)
	if err != nil {
		return err
	}

	hasFilter := len(options.Filter) > 0

	skip := options.Skip
	limit := options.Limit
	for _, doc := range col.Data {

		if limit == 0 {
			break
		}

		if hasFilter {
			match, err := connor.Match(options.Filter, doc)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}
			if !match {
				continue
			}
		}

		if skip > 0 {
			skip--
			continue
		}

		limit--
		err := f(doc)
		if err != nil {
			return err
		}
	}

	return nil
}
