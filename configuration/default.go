package configuration

import (
	"github.com/fulldump/inceptionpersist/persistence"
)

const (
	StorageDisk   = "disk"
	StorageMemory = "memory"
)

func Default() Configuration {
	return Configuration{
		HttpAddr:    "127.0.0.1:8080",
		Root:        "./",
		Storage:     StorageDisk,
		Persistence: persistence.DefaultConfig(),
		LogLevel:    "info",
		LogFormat:   "json",
		ShowBanner:  true,
	}
}
