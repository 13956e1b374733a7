// Package track models the recorded geographic path of one exercise
// session, as exported by the mini-app: an ordered point list plus a
// summary metadata block.
package track

import (
	"encoding/json"

	"github.com/leostudiooo/GOOSE/internal/shared/geo"
	"github.com/leostudiooo/GOOSE/internal/shared/localtime"
)

type Point struct {
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	SortNum int     `json:"sortNum" yaml:"sortNum"`
}

type Metadata struct {
	TotalDistance      float64             `json:"totalDistance" yaml:"totalDistance"`
	FormattedDistance  string              `json:"formattedDistance" yaml:"formattedDistance"`
	TotalTime          int                 `json:"totalTime" yaml:"totalTime"`
	FormattedTime      string              `json:"formattedTime" yaml:"formattedTime"`
	SampleTimeInterval int                 `json:"sampleTimeInterval" yaml:"sampleTimeInterval"`
	PointCount         int                 `json:"pointCount" yaml:"pointCount"`
	CreatedAt          localtime.LocalTime `json:"createdAt" yaml:"createdAt"`
}

type Track struct {
	Points   []Point  `json:"track" yaml:"track"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// DistanceKm sums the great-circle distance over consecutive point
// pairs. The metadata's own totalDistance is never trusted.
func (t Track) DistanceKm() float64 {
	var distance float64
	for i := 1; i < len(t.Points); i++ {
		a, b := t.Points[i-1], t.Points[i]
		distance += geo.HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
	}
	return distance
}

// DurationSec is taken from the metadata; points carry no timestamps.
func (t Track) DurationSec() int {
	return t.Metadata.TotalTime
}

// PointsJSON serializes the point list the way the finish record expects
// it, an empty track yielding "[]".
func (t Track) PointsJSON() (string, error) {
	points := t.Points
	if points == nil {
		points = []Point{}
	}
	data, err := json.Marshal(points)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
