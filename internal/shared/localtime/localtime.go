// Package localtime holds a timezone-naive timestamp type shared by the
// config and track documents, which record wall-clock times without an
// offset.
package localtime

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	yamlLayout = "2006-01-02 15:04:05"
	jsonLayout = "2006-01-02T15:04:05"
)

// layouts accepted on input, most common first.
var layouts = []string{
	yamlLayout,
	jsonLayout,
	time.RFC3339,
	"2006-01-02",
}

// LocalTime is a time.Time that marshals without a timezone offset.
type LocalTime struct {
	time.Time
}

func At(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

func Parse(value string) (LocalTime, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return LocalTime{Time: t}, nil
		}
	}
	return LocalTime{}, fmt.Errorf("unrecognized timestamp '%s'", value)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(jsonLayout))
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t LocalTime) MarshalYAML() (interface{}, error) {
	return t.Format(yamlLayout), nil
}

func (t *LocalTime) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := Parse(node.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
