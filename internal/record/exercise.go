// Package record derives exercise metrics and builds the two request
// payloads of the start/finish submission protocol.
package record

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// caloriePerKm is the flat burn rate the mini-app reports, no weight or
// altitude correction.
const caloriePerKm = 62

// Exercise carries the presentation-ready metrics of one session.
type Exercise struct {
	RecordDate  string
	StartTime   string
	EndTime     string
	DurationSec int
	DistanceKm  string
	Calorie     string
	Pace        string
	TimeText    string
}

// zeroPace is the sentinel pace reported for a zero-distance session,
// whatever its duration.
const zeroPace = "0'00''"

// DeriveExercise turns a start time, distance and duration into the
// formatted values the record payloads carry.
func DeriveExercise(start time.Time, distanceKm float64, durationSec int) Exercise {
	end := start.Add(time.Duration(durationSec) * time.Second)

	paceSec := 0
	if distanceKm != 0 {
		paceSec = int(math.Round(float64(durationSec) / distanceKm))
	}
	pace := zeroPace
	if paceSec != 0 {
		// minutes and seconds deliberately unpadded: 600s over 1km is 10'0''
		pace = fmt.Sprintf("%d'%d''", paceSec/60, paceSec%60)
	}

	return Exercise{
		RecordDate:  start.Format("2006-01-02"),
		StartTime:   start.Format("15:04:05"),
		EndTime:     end.Format("15:04:05"),
		DurationSec: durationSec,
		DistanceKm:  fmt.Sprintf("%.2f", distanceKm),
		Calorie:     strconv.FormatFloat(caloriePerKm*distanceKm, 'f', 0, 64),
		Pace:        pace,
		TimeText:    fmt.Sprintf("%02d:%02d:%02d", durationSec/3600, durationSec/60%60, durationSec%60),
	}
}
