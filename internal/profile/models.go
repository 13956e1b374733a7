// Package profile holds the per-deployment header set and the per-user
// configuration consumed by the upload pipeline.
package profile

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/leostudiooo/GOOSE/internal/shared/localtime"
)

// SystemHeaders is the static header set the remote service expects from
// its own mini-app client. Loaded once per run, never mutated.
type SystemHeaders struct {
	UserAgent      string `json:"user_agent" yaml:"user_agent" validate:"required"`
	MiniappVersion string `json:"miniapp_version" yaml:"miniapp_version" validate:"required"`
	Referer        string `json:"referer" yaml:"referer" validate:"required"`
	Tenant         string `json:"tenant" yaml:"tenant" validate:"required"`
}

// CustomTrack selects a user-supplied track file instead of the default
// per-route one.
type CustomTrack struct {
	Enable   bool   `json:"enable" yaml:"enable"`
	FilePath string `json:"file_path" yaml:"file_path"`
}

// UserProfile is the configuration of the one user a run acts for.
type UserProfile struct {
	Token       string              `json:"token" yaml:"token" validate:"required"`
	DateTime    localtime.LocalTime `json:"date_time" yaml:"date_time" validate:"required"`
	StartImage  string              `json:"start_image" yaml:"start_image" validate:"required"`
	FinishImage string              `json:"finish_image" yaml:"finish_image" validate:"required"`
	Route       string              `json:"route" yaml:"route" validate:"required"`
	CustomTrack CustomTrack         `json:"custom_track" yaml:"custom_track"`
}

// Older profiles stored custom_track as a bare path, empty meaning
// disabled. The upgrade happens only here, at the decode boundary.
func (c *CustomTrack) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var path string
		if err := node.Decode(&path); err != nil {
			return err
		}
		*c = fromLegacyPath(path)
		return nil
	}

	type plain CustomTrack
	var parsed plain
	if err := node.Decode(&parsed); err != nil {
		return err
	}
	*c = CustomTrack(parsed)
	return nil
}

func (c *CustomTrack) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var path string
		if err := json.Unmarshal(data, &path); err != nil {
			return err
		}
		*c = fromLegacyPath(path)
		return nil
	}

	type plain CustomTrack
	var parsed plain
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*c = CustomTrack(parsed)
	return nil
}

func fromLegacyPath(path string) CustomTrack {
	return CustomTrack{Enable: path != "", FilePath: path}
}
