package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/leostudiooo/GOOSE/internal/route"
)

// wire shapes of the listRule endpoint: rules each carrying their plans.
// Numeric ids arrive as numbers or strings depending on server version,
// hence json.Number.
type wireRule struct {
	RuleID        json.Number `json:"ruleId"`
	RouteRule     string      `json:"routeRule"`
	RuleStartTime string      `json:"ruleStartTime"`
	RuleEndTime   string      `json:"ruleEndTime"`
	Plans         []wirePlan  `json:"plans"`
}

type wirePlan struct {
	RouteName      string      `json:"routeName"`
	PlanID         json.Number `json:"planId"`
	MaxTime        int         `json:"maxTime"`
	MinTime        int         `json:"minTime"`
	RouteKilometre float64     `json:"routeKilometre"`
}

// ListRoutes fetches the rules the service currently enforces and
// flattens each rule/plan pair into a route definition, in server order.
func (c *Client) ListRoutes(ctx context.Context) ([]route.Route, error) {
	routes, err := c.listRoutes(ctx)
	if err != nil {
		return nil, &ClientError{Desc: "listing routes", Err: err}
	}
	return routes, nil
}

func (c *Client) listRoutes(ctx context.Context) ([]route.Route, error) {
	headers := c.headerSet()
	headers["Content-Type"] = contentTypeJSONSimple

	body, err := c.call(ctx, http.MethodGet, listRulePath, func(req *resty.Request) {
		req.SetHeaders(headers)
	})
	if err != nil {
		return nil, err
	}

	var rules []wireRule
	if len(body.Data) > 0 {
		if err := json.Unmarshal(body.Data, &rules); err != nil {
			return nil, err
		}
	}

	var routes []route.Route
	for _, rule := range rules {
		for _, plan := range rule.Plans {
			routes = append(routes, route.Route{
				RouteName:       plan.RouteName,
				RuleID:          rule.RuleID.String(),
				PlanID:          plan.PlanID.String(),
				RouteRule:       rule.RouteRule,
				MaxTime:         plan.MaxTime,
				MinTime:         plan.MinTime,
				RouteDistanceKm: plan.RouteKilometre,
				RuleEndTime:     rule.RuleEndTime,
				RuleStartTime:   rule.RuleStartTime,
			})
		}
	}
	if len(routes) == 0 {
		return nil, errors.New("the service reported no available routes")
	}
	return routes, nil
}
