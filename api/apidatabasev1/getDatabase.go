package apidatabasev1

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/inceptionpersist/service"
)

func getDatabase(ctx context.Context) (*service.Summary, error) {

	s := GetServicer(ctx)

	databaseName := box.GetUrlParameter(ctx, "databaseName")

	return s.Summary(ctx, databaseName)
}
