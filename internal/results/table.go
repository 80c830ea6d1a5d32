package results

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Row is one table record keyed by column.
type Row map[string]any

// CellFormatter turns a raw cell into its display value.
type CellFormatter func(value any, row Row) any

// Column describes a table column.
type Column struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Sortable  bool            `json:"sortable"`
	Align     enums.Alignment `json:"align"`
	Formatter CellFormatter   `json:"-"`
}

// RowAction is a per-row link. URL may reference row fields as {field}.
type RowAction struct {
	Name    string         `json:"name"`
	Label   string         `json:"label"`
	Icon    string         `json:"icon,omitempty"`
	Color   string         `json:"color,omitempty"`
	URL     string         `json:"url"`
	Visible func(Row) bool `json:"-"`
}

// URLFor fills the action URL from row values, path-escaped.
func (a RowAction) URLFor(row Row) string {
	return placeholderPattern.ReplaceAllStringFunc(a.URL, func(match string) string {
		field := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := row[field]
		if !ok || value == nil {
			return ""
		}
		return url.PathEscape(fmt.Sprint(value))
	})
}

// TableResult holds rows plus column and action descriptors.
type TableResult struct {
	Rows                 []Row
	Columns              []Column
	Actions              []RowAction
	EmptyText            string
	Sortable             bool
	DefaultSort          string
	DefaultSortDirection enums.SortDirection
	RowIDField           string
}

// NewTable builds a table result.
func NewTable(rows []Row, columns []Column) *TableResult {
	return &TableResult{
		Rows:                 rows,
		Columns:              columns,
		EmptyText:            "No data available",
		DefaultSortDirection: enums.SortDesc,
		RowIDField:           "id",
	}
}

func (r *TableResult) Kind() enums.MetricKind {
	return enums.MetricKindTable
}

func (r *TableResult) HasNoData() bool {
	return len(r.Rows) == 0
}

type actionLink struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
	URL   string `json:"url"`
}

// Data renders rows with formatted cells, _row_id and visible _actions.
func (r *TableResult) Data() []map[string]any {
	out := make([]map[string]any, 0, len(r.Rows))
	for i, row := range r.Rows {
		rendered := make(map[string]any, len(row)+2)
		for key, value := range row {
			rendered[key] = value
		}
		for _, col := range r.Columns {
			if col.Formatter != nil {
				rendered[col.Key] = col.Formatter(row[col.Key], row)
			}
		}
		rowID, ok := row[r.RowIDField]
		if !ok || rowID == nil {
			rowID = i
		}
		rendered["_row_id"] = rowID

		links := make([]actionLink, 0, len(r.Actions))
		for _, action := range r.Actions {
			if action.Visible != nil && !action.Visible(row) {
				continue
			}
			links = append(links, actionLink{
				Name:  action.Name,
				Label: action.Label,
				Icon:  action.Icon,
				Color: action.Color,
				URL:   action.URLFor(row),
			})
		}
		rendered["_actions"] = links
		out = append(out, rendered)
	}
	return out
}

type tablePayload struct {
	Data                 []map[string]any    `json:"data"`
	Columns              []Column            `json:"columns"`
	Actions              []RowAction         `json:"actions"`
	EmptyText            string              `json:"empty_text"`
	Sortable             bool                `json:"sortable"`
	DefaultSort          string              `json:"default_sort,omitempty"`
	DefaultSortDirection enums.SortDirection `json:"default_sort_direction"`
	HasNoData            bool                `json:"has_no_data"`
	TotalRows            int                 `json:"total_rows"`
}

func (r *TableResult) MarshalJSON() ([]byte, error) {
	columns := r.Columns
	if columns == nil {
		columns = []Column{}
	}
	actions := r.Actions
	if actions == nil {
		actions = []RowAction{}
	}
	return json.Marshal(tablePayload{
		Data:                 r.Data(),
		Columns:              columns,
		Actions:              actions,
		EmptyText:            r.EmptyText,
		Sortable:             r.Sortable,
		DefaultSort:          r.DefaultSort,
		DefaultSortDirection: r.DefaultSortDirection,
		HasNoData:            r.HasNoData(),
		TotalRows:            len(r.Rows),
	})
}
