package main

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulldump/inceptionpersist/bootstrap"
	"github.com/fulldump/inceptionpersist/configuration"
	"github.com/fulldump/inceptionpersist/persistence"
	"github.com/fulldump/inceptionpersist/snapshot"
	"github.com/fulldump/inceptionpersist/storage"
)

type JSON = map[string]any

func Parallel(workers int, f func()) {
	wg := &sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	wg.Wait()
}

func TempDir() (string, func()) {
	dir, err := os.MkdirTemp("", "inceptionpersist_bench_*")
	if err != nil {
		panic("Could not create temp directory: " + err.Error())
	}

	cleanup := func() {
		os.RemoveAll(dir)
	}

	return dir, cleanup
}

func persistenceConfig(c Config) persistence.Config {
	pc := persistence.DefaultConfig()
	pc.Writer.Batch = c.Batch
	pc.Reader.Buffer = c.Buffer
	pc.Concurrency = c.Concurrency
	return pc
}

func NewPersister(c Config) *persistence.Persister {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	p, err := persistence.New(persistenceConfig(c), storage.NewOS(dir), zap.NewNop())
	if err != nil {
		panic(err)
	}
	return p
}

// GenerateSnapshot builds a dirty snapshot with uuid identified documents.
func GenerateSnapshot(c Config) *snapshot.Snapshot {

	s := &snapshot.Snapshot{
		Name:          "bench",
		SchemaVersion: 1,
		Collections:   make([]*snapshot.Collection, c.Collections),
	}

	next := int64(-1)
	Parallel(c.Workers, func() {
		for {
			i := int(atomic.AddInt64(&next, 1))
			if i >= c.Collections {
				return
			}
			data := make([]snapshot.Document, c.Documents)
			for j := range data {
				data[j] = JSON{
					"id":      uuid.NewString(),
					"n":       float64(j),
					"created": time.Now().UTC().Format(time.RFC3339Nano),
					"tags":    []any{"bench", "persist"},
				}
			}
			s.Collections[i] = &snapshot.Collection{
				Name:  "collection-" + uuid.NewString()[:8],
				Dirty: true,
				Data:  data,
			}
		}
	})

	return s
}

func CreateServer(c *Config) (start func() error, stop func()) {
	dir, cleanup := TempDir()
	cleanups = append(cleanups, cleanup)

	conf := configuration.Default()
	conf.Root = dir
	conf.Persistence = persistenceConfig(*c)
	c.Base = "http://" + conf.HttpAddr

	start, stop, err := bootstrap.Bootstrap(&conf, zap.NewNop())
	if err != nil {
		panic(err)
	}
	return start, stop
}
