package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulldump/box"
	"go.uber.org/zap"

	"github.com/fulldump/inceptionpersist/api"
	"github.com/fulldump/inceptionpersist/configuration"
	"github.com/fulldump/inceptionpersist/persistence"
	"github.com/fulldump/inceptionpersist/service"
	"github.com/fulldump/inceptionpersist/storage"
)

var VERSION = "dev"

func newFileSystem(c *configuration.Configuration) (storage.FileSystem, error) {
	switch c.Storage {
	case configuration.StorageDisk:
		return storage.NewOS(c.Root), nil
	case configuration.StorageMemory:
		return storage.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage '%s', must be %s or %s", c.Storage, configuration.StorageDisk, configuration.StorageMemory)
}

// Bootstrap wires the whole server. start blocks serving http until stop is
// called or a SIGTERM/SIGINT is received.
func Bootstrap(c *configuration.Configuration, logger *zap.Logger) (start func() error, stop func(), err error) {

	fs, err := newFileSystem(c)
	if err != nil {
		return nil, nil, err
	}

	p, err := persistence.New(c.Persistence, fs, logger)
	if err != nil {
		return nil, nil, err
	}

	b := api.Build(service.NewService(p, logger), VERSION, c.ApiKey, c.ApiSecret)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.AccessLog(logger.Named("access")),
		api.RecoverFromPanic(logger),
		api.PrettyErrorInterceptor,
	)

	s := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen: %w", err)
	}
	logger.Info("listening", zap.String("addr", ln.Addr().String()))

	stop = func() {
		err := s.Shutdown(context.Background())
		if err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for {
			sig := <-signalChan
			logger.Info("signal received", zap.String("signal", sig.String()))
			stop()
		}
	}()

	start = func() error {
		err := s.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	return
}
