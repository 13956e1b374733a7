package storage

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec is one serialization format a Store can read and write.
type Codec interface {
	Ext() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var (
	JSON Codec = jsonCodec{}
	YAML Codec = yamlCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Ext() string { return ".json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) Ext() string { return ".yaml" }

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// alternate returns the other supported format, tried when the primary
// file is absent.
func alternate(c Codec) Codec {
	if c.Ext() == JSON.Ext() {
		return YAML
	}
	return JSON
}
