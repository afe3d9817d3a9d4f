package api

import (
	"context"

	"github.com/fulldump/box"
	"github.com/fulldump/box/boxopenapi"

	"github.com/fulldump/inceptionpersist/api/apidatabasev1"
)

func Build(s apidatabasev1.Servicer, version, apiKey, apiSecret string) *box.B {

	b := box.NewBox()

	v1 := b.Resource("/v1")
	v1.WithInterceptors(
		box.SetResponseHeader("Content-Type", "application/json"),
		Authenticate(apiKey, apiSecret),
	)

	apidatabasev1.BuildV1Database(v1).
		WithInterceptors(
			injectServicer(s),
		)

	b.Resource("/release").
		WithActions(box.Get(func() string {
			return version
		}).WithName("release"))

	spec := boxopenapi.Spec(b)
	spec.Info.Title = "InceptionPersist"
	spec.Info.Description = "Admin API over the persisted snapshots of an in-memory document database."
	spec.Info.Version = version

	b.Resource("/openapi.json").
		WithActions(box.Get(func() boxopenapi.OpenAPI {
			return spec
		}).WithName("openapi"))

	return b
}

func injectServicer(s apidatabasev1.Servicer) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			next(apidatabasev1.SetServicer(ctx, s))
		}
	}
}
