package bootstrap

import (
	"testing"

	"github.com/fulldump/biff"
	"go.uber.org/zap/zaptest"

	"github.com/fulldump/inceptionpersist/configuration"
)

func TestBootstrap(t *testing.T) {

	biff.Alternative("Bootstrap", func(a *biff.A) {

		c := configuration.Default()
		c.HttpAddr = "127.0.0.1:0"
		c.Root = t.TempDir()

		a.Alternative("Start and stop", func(a *biff.A) {
			start, stop, err := Bootstrap(&c, zaptest.NewLogger(t))
			biff.AssertNil(err)

			done := make(chan error)
			go func() {
				done <- start()
			}()

			stop()
			biff.AssertNil(<-done)
		})

		a.Alternative("Memory storage", func(a *biff.A) {
			c.Storage = configuration.StorageMemory
			_, stop, err := Bootstrap(&c, zaptest.NewLogger(t))
			biff.AssertNil(err)
			stop()
		})

		a.Alternative("Unknown storage", func(a *biff.A) {
			c.Storage = "tape"
			_, _, err := Bootstrap(&c, zaptest.NewLogger(t))
			biff.AssertNotNil(err)
		})

		a.Alternative("Invalid persistence config", func(a *biff.A) {
			c.Persistence.Writer.Batch = 0
			_, _, err := Bootstrap(&c, zaptest.NewLogger(t))
			biff.AssertNotNil(err)
		})
	})
}
