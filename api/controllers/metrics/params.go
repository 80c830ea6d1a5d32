package metrics

import (
	"net/http"

	"github.com/angelmondragon/packfinderz-metrics/api/middleware"
	"github.com/angelmondragon/packfinderz-metrics/api/validators"
	"github.com/angelmondragon/packfinderz-metrics/internal/metric"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

const maxTableLimit = 500

type metricQuery struct {
	Range         string `json:"range" validate:"omitempty,max=16"`
	Timezone      string `json:"timezone" validate:"omitempty,max=64"`
	SortBy        string `json:"sort_by" validate:"omitempty,max=64"`
	SortDirection string `json:"sort_direction" validate:"omitempty,oneof=asc desc"`
	Limit         int    `json:"limit" validate:"omitempty,min=1,max=500"`
	Unit          string `json:"unit" validate:"omitempty,oneof=minute hour day week month year"`
	Cached        bool   `json:"cached"`
}

func parseMetricQuery(r *http.Request) (metricQuery, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, maxTableLimit)
	if err != nil {
		return metricQuery{}, err
	}
	cached, err := validators.ParseQueryBool(r, "cached")
	if err != nil {
		return metricQuery{}, err
	}
	q := metricQuery{
		Range:         validators.QueryString(r, "range"),
		Timezone:      validators.QueryString(r, "timezone"),
		SortBy:        validators.QueryString(r, "sort_by"),
		SortDirection: validators.QueryString(r, "sort_direction"),
		Limit:         limit,
		Unit:          validators.QueryString(r, "unit"),
		Cached:        cached,
	}
	if err := validators.ValidateStruct(&q); err != nil {
		return metricQuery{}, err
	}
	return q, nil
}

func (q metricQuery) request(r *http.Request) metric.Request {
	return metric.Request{
		Range:         q.Range,
		Timezone:      q.Timezone,
		UserID:        middleware.UserIDFromContext(r.Context()),
		SortBy:        q.SortBy,
		SortDirection: enums.SortDirection(q.SortDirection),
		Limit:         q.Limit,
	}
}

func (q metricQuery) unit() enums.BucketUnit {
	return enums.BucketUnit(q.Unit)
}
