package apidatabasev1

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// project keeps only the given paths of a json document. Missing paths are
// omitted.
func project(data []byte, fields []string) ([]byte, error) {

	result := []byte("{}")
	for _, field := range fields {
		value := gjson.GetBytes(data, field)
		if !value.Exists() {
			continue
		}
		var err error
		result, err = sjson.SetRawBytes(result, field, []byte(value.Raw))
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}
