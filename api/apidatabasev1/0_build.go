package apidatabasev1

import (
	"github.com/fulldump/box"
)

func BuildV1Database(v1 *box.R) *box.R {

	databases := v1.Resource("/databases").
		WithActions(
			box.Get(listDatabases).WithName("listDatabases"),
		)

	v1.Resource("/databases/{databaseName}").
		WithActions(
			box.Get(getDatabase).WithName("getDatabase"),
			box.ActionPost(export).WithName("export"),
			box.ActionPost(drop).WithName("drop"),
		)

	v1.Resource("/databases/{databaseName}/collections/{collectionIndex}").
		WithActions(
			box.ActionPost(find).WithName("find"),
		)

	return databases
}
