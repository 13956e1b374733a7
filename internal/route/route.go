// Package route holds the predefined course definitions a submitted
// record must reference.
package route

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Route is one predefined course and its rules. Values mirror what the
// service's listRule endpoint reports.
type Route struct {
	RouteName       string  `json:"route_name" yaml:"route_name" validate:"required"`
	RuleID          string  `json:"rule_id" yaml:"rule_id" validate:"required"`
	PlanID          string  `json:"plan_id" yaml:"plan_id" validate:"required"`
	RouteRule       string  `json:"route_rule" yaml:"route_rule"`
	MaxTime         int     `json:"max_time" yaml:"max_time"`
	MinTime         int     `json:"min_time" yaml:"min_time"`
	RouteDistanceKm float64 `json:"route_distance_km" yaml:"route_distance_km"`
	RuleEndTime     string  `json:"rule_end_time" yaml:"rule_end_time"`
	RuleStartTime   string  `json:"rule_start_time" yaml:"rule_start_time"`
}

// Catalog is an ordered list of routes. Names are expected to be unique;
// on duplicates the first match wins.
type Catalog struct {
	Routes []Route `json:"routes" yaml:"routes" validate:"dive"`
}

// NotFoundError carries the full list of valid names for user-facing
// suggestions.
type NotFoundError struct {
	Name       string
	ValidNames []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route named '%s'", e.Name)
}

func (e *NotFoundError) Hint() string {
	quoted := lo.Map(e.ValidNames, func(name string, _ int) string {
		return "'" + name + "'"
	})
	return "valid routes are " + strings.Join(quoted, ", ")
}

// Get returns the first route with the given name.
func (c Catalog) Get(name string) (Route, error) {
	for _, r := range c.Routes {
		if r.RouteName == name {
			return r, nil
		}
	}
	return Route{}, &NotFoundError{Name: name, ValidNames: c.Names()}
}

// Names preserves catalog order.
func (c Catalog) Names() []string {
	return lo.Map(c.Routes, func(r Route, _ int) string { return r.RouteName })
}
