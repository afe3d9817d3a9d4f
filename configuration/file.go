package configuration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ReadFile overrides c with the values present in a YAML file. Keys missing
// from the file keep their current value.
func ReadFile(filename string, c *Configuration) error {

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	err = yaml.Unmarshal(data, c)
	if err != nil {
		return fmt.Errorf("parse config file '%s': %w", filename, err)
	}

	return nil
}
