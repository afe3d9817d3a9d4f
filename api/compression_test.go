package api

import (
	"io"
	"net/http"
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
	"github.com/klauspost/compress/gzip"
)

func TestCompression(t *testing.T) {

	biff.Alternative("Setup", func(a *biff.A) {

		b := Build(newTestService(t), "test", "", "")
		b.WithInterceptors(
			Compression,
			PrettyErrorInterceptor,
		)

		api := apitest.NewWithHandler(b)

		a.Alternative("Transparent gzip", func(a *biff.A) {
			resp := api.Request("GET", "/v1/databases").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertTrue(resp.Uncompressed)
			biff.AssertEqualJson(resp.BodyJson(), []any{})
		})

		a.Alternative("Streamed documents", func(a *biff.A) {
			resp := api.Request("POST", "/v1/databases/shop:export").
				WithBodyJson(JSON{
					"name":          "shop",
					"schemaVersion": 1,
					"collections": []JSON{
						{"name": "users", "dirty": true, "data": []JSON{{"name": "Pablo"}, {"name": "Sara"}}},
					},
				}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)

			resp = api.Request("POST", "/v1/databases/shop/collections/0:find").
				WithHeader("Accept-Encoding", "gzip").
				WithBodyJson(JSON{"limit": -1}).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.Header.Get("Content-Encoding"), "gzip")

			gz, err := gzip.NewReader(resp.Body)
			biff.AssertNil(err)
			body, err := io.ReadAll(gz)
			biff.AssertNil(err)
			biff.AssertEqual(string(body), `{"name":"Pablo"}`+"\n"+`{"name":"Sara"}`+"\n")
		})

		a.Alternative("Refused gzip", func(a *biff.A) {
			resp := api.Request("GET", "/v1/databases").
				WithHeader("Accept-Encoding", "gzip;q=0").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.Header.Get("Content-Encoding"), "")
			biff.AssertEqualJson(resp.BodyJson(), []any{})
		})
	})
}

func TestAcceptsGzip(t *testing.T) {
	biff.AssertTrue(acceptsGzip("gzip"))
	biff.AssertTrue(acceptsGzip("deflate, GZIP;q=0.5"))
	biff.AssertFalse(acceptsGzip(""))
	biff.AssertFalse(acceptsGzip("br, deflate"))
	biff.AssertFalse(acceptsGzip("gzip; q=0"))
}
