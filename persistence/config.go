package persistence

import (
	"errors"
	"fmt"
)

const (
	DefaultParent       = "data"
	DefaultReaderBuffer = 1024 * 1024
	DefaultWriterBatch  = 25

	MetadataFile = "_"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Parent string       `json:"parent" yaml:"parent" usage:"storage subdirectory below the root"`
	Reader ReaderConfig `json:"reader" yaml:"reader"`
	Writer WriterConfig `json:"writer" yaml:"writer"`

	// Concurrency bounds the number of files written or read at the same
	// time by one call. Zero means one task per file.
	Concurrency int  `json:"concurrency" yaml:"concurrency" usage:"max files processed at once, 0 is unbounded"`
	Prune       bool `json:"prune" yaml:"prune" usage:"remove collection files left over by a smaller export"`
}

type ReaderConfig struct {
	Buffer int `json:"buffer" yaml:"buffer" usage:"max bytes per read chunk"`
}

type WriterConfig struct {
	Batch int `json:"batch" yaml:"batch" usage:"documents per write batch"`
}

func DefaultConfig() Config {
	return Config{
		Parent: DefaultParent,
		Reader: ReaderConfig{
			Buffer: DefaultReaderBuffer,
		},
		Writer: WriterConfig{
			Batch: DefaultWriterBatch,
		},
	}
}

func (c Config) Validate() error {
	if c.Reader.Buffer <= 0 {
		return fmt.Errorf("%w: reader.buffer must be positive, got %d", ErrInvalidConfig, c.Reader.Buffer)
	}
	if c.Writer.Batch <= 0 {
		return fmt.Errorf("%w: writer.batch must be positive, got %d", ErrInvalidConfig, c.Writer.Batch)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative, got %d", ErrInvalidConfig, c.Concurrency)
	}
	return nil
}
