package apidatabasev1

import (
	"context"
	"errors"

	"github.com/fulldump/inceptionpersist/service"
	"github.com/fulldump/inceptionpersist/snapshot"
)

var ErrBadRequest = errors.New("bad request")

type Servicer interface {
	List(ctx context.Context) ([]string, error)
	Summary(ctx context.Context, name string) (*service.Summary, error)
	Export(ctx context.Context, name string, s *snapshot.Snapshot) error
	Delete(ctx context.Context, name string) error
	Find(ctx context.Context, name string, index int, options service.FindOptions, f func(doc snapshot.Document) error) error
}

const ContextServicerKey = "8c1bd5c2-7c44-4f3e-9f43-2b6a0c9e51d7"

func SetServicer(ctx context.Context, s Servicer) context.Context {
	return context.WithValue(ctx, ContextServicerKey, s)
}

func GetServicer(ctx context.Context) Servicer {
	return ctx.Value(ContextServicerKey).(Servicer)
}
