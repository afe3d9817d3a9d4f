package apidatabasev1

import (
	"context"

	"github.com/fulldump/box"
)

func drop(ctx context.Context) error {

	s := GetServicer(ctx)

	databaseName := box.GetUrlParameter(ctx, "databaseName")

	return s.Delete(ctx, databaseName)
}
