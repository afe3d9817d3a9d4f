package apidatabasev1

import (
	"context"
)

func listDatabases(ctx context.Context) ([]string, error) {
	return GetServicer(ctx).List(ctx)
}
