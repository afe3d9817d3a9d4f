package apidatabasev1

import (
	"testing"

	"github.com/fulldump/biff"
)

func TestProject(t *testing.T) {

	doc := []byte(`{"name":"Pablo","address":{"city":"Madrid","zip":"28001"},"tags":["a","b"]}`)

	biff.Alternative("Project", func(a *biff.A) {

		a.Alternative("Top level and nested paths", func(a *biff.A) {
			result, err := project(doc, []string{"name", "address.city"})
			biff.AssertNil(err)
			biff.AssertEqual(string(result), `{"name":"Pablo","address":{"city":"Madrid"}}`)
		})

		a.Alternative("Missing paths are omitted", func(a *biff.A) {
			result, err := project(doc, []string{"age", "tags"})
			biff.AssertNil(err)
			biff.AssertEqual(string(result), `{"tags":["a","b"]}`)
		})

		a.Alternative("Nothing selected", func(a *biff.A) {
			result, err := project(doc, []string{"nope"})
			biff.AssertNil(err)
			biff.AssertEqual(string(result), `{}`)
		})
	})
}
