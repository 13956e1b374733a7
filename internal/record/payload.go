package record

import (
	"github.com/leostudiooo/GOOSE/internal/route"
)

// statusFinished is the nowStatus value of a completed record.
const statusFinished = 2

// StartPayload is the body of the saveStartRecord call. Fields the
// client cannot know yet are sent blank; the phase-varying ones change
// Go type between phases (the wire sends "" then a number, [] then a
// string), hence the any-typed fields.
type StartPayload struct {
	RouteName            string  `json:"routeName"`
	RuleID               string  `json:"ruleId"`
	PlanID               string  `json:"planId"`
	RecordTime           string  `json:"recordTime"`
	StartTime            string  `json:"startTime"`
	StartImage           string  `json:"startImage"`
	EndTime              string  `json:"endTime"`
	ExerciseTimes        any     `json:"exerciseTimes"`
	RouteKilometre       string  `json:"routeKilometre"`
	EndImage             string  `json:"endImage"`
	StrLatitudeLongitude any     `json:"strLatitudeLongitude"`
	RouteRule            string  `json:"routeRule"`
	MaxTime              int     `json:"maxTime"`
	MinTime              int     `json:"minTime"`
	ORouteKilometre      float64 `json:"orouteKilometre"`
	RuleEndTime          string  `json:"ruleEndTime"`
	RuleStartTime        string  `json:"ruleStartTime"`
	Calorie              any     `json:"calorie"`
	Speed                string  `json:"speed"`
	DispTimeText         any     `json:"dispTimeText"`
	StudentID            string  `json:"studentId"`
}

// FinishPayload is the start payload with the computed metrics filled
// in, plus the record id returned by the start call and the finished
// status.
type FinishPayload struct {
	StartPayload
	ID        string `json:"id"`
	NowStatus int    `json:"nowStatus"`
}

// NewStartPayload combines the route definition, the student identity
// and the start half of the derived metrics.
func NewStartPayload(r route.Route, studentID string, ex Exercise, startImageURL string) StartPayload {
	return StartPayload{
		RouteName:            r.RouteName,
		RuleID:               r.RuleID,
		PlanID:               r.PlanID,
		RecordTime:           ex.RecordDate,
		StartTime:            ex.StartTime,
		StartImage:           startImageURL,
		EndTime:              "",
		ExerciseTimes:        "",
		RouteKilometre:       "",
		EndImage:             "",
		StrLatitudeLongitude: []any{},
		RouteRule:            r.RouteRule,
		MaxTime:              r.MaxTime,
		MinTime:              r.MinTime,
		ORouteKilometre:      r.RouteDistanceKm,
		RuleEndTime:          r.RuleEndTime,
		RuleStartTime:        r.RuleStartTime,
		Calorie:              0,
		Speed:                zeroPace,
		DispTimeText:         0,
		StudentID:            studentID,
	}
}

// Finish overrides the dynamic fields of a start payload one by one; no
// generic map merging, so a field forgotten here fails to compile rather
// than silently carrying a stale value.
func (p StartPayload) Finish(ex Exercise, trackJSON, finishImageURL, recordID string) FinishPayload {
	p.EndTime = ex.EndTime
	p.ExerciseTimes = ex.DurationSec
	p.RouteKilometre = ex.DistanceKm
	p.EndImage = finishImageURL
	p.StrLatitudeLongitude = trackJSON
	p.Calorie = ex.Calorie
	p.Speed = ex.Pace
	p.DispTimeText = ex.TimeText

	return FinishPayload{
		StartPayload: p,
		ID:           recordID,
		NowStatus:    statusFinished,
	}
}
