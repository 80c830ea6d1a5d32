// Package catalog defines the bundled orders dashboard.
package catalog

import (
	"fmt"
	"time"

	"github.com/angelmondragon/packfinderz-metrics/internal/aggregation"
	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/metric"
	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

const (
	OrdersTable     = "orders"
	OrdersTimeField = "created_at"
)

// Params configures the orders dashboard.
type Params struct {
	Source           query.Source
	Currency         string
	RevenueGoalCents int64
	TTL              cache.TTL
}

var (
	valueRanges = []metric.Range{
		{Value: "30", Label: "30 Days"},
		{Value: "60", Label: "60 Days"},
		{Value: "365", Label: "365 Days"},
		{Value: "TODAY", Label: "Today"},
		{Value: "MTD", Label: "Month To Date"},
		{Value: "QTD", Label: "Quarter To Date"},
		{Value: "YTD", Label: "Year To Date"},
	}
	trendRanges = []metric.Range{
		{Value: "7", Label: "7 Days"},
		{Value: "30", Label: "30 Days"},
		{Value: "90", Label: "90 Days"},
	}
	partitionRanges = []metric.Range{
		{Value: "ALL", Label: "All Time"},
		{Value: "30", Label: "30 Days"},
		{Value: "MTD", Label: "Month To Date"},
	}
	statusLabels        = enumLabels(enums.OrderStatuses())
	paymentMethodLabels = enumLabels(enums.PaymentMethods())
)

type labeled interface {
	~string
	Label() string
}

func enumLabels[T labeled](values []T) map[string]string {
	out := make(map[string]string, len(values))
	for _, v := range values {
		out[string(v)] = v.Label()
	}
	return out
}

func cents(v float64) float64 {
	return v / 100
}

// OrdersDashboard returns the order metrics in display order.
func OrdersDashboard(p Params) []*metric.Metric {
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}
	money := results.Formatting{
		Currency:  currency,
		Number:    &results.NumberFormat{Decimals: 2, Grouping: true},
		Transform: cents,
	}
	whole := results.Formatting{Number: &results.NumberFormat{Grouping: true}}
	src := p.Source
	ttl := p.TTL

	return []*metric.Metric{
		metric.New("New Orders", aggregation.Value{Aggregate: query.Count()}, src,
			metric.WithIcon("shopping-cart"),
			metric.WithHelp("Orders placed in the selected range, compared with the previous one."),
			metric.WithRanges(valueRanges...),
			metric.WithFormatting(whole),
			metric.WithCacheTTL(ttl)),
		metric.New("Revenue", aggregation.Value{Aggregate: query.Sum("total_cents")}, src,
			metric.WithIcon("currency-dollar"),
			metric.WithColor("#098F56"),
			metric.WithRanges(valueRanges...),
			metric.WithFormatting(money),
			metric.WithCacheTTL(ttl)),
		metric.New("Average Order Value", aggregation.Value{Aggregate: query.Average("total_cents")}, src,
			metric.WithURIKey("average-order-value"),
			metric.WithRanges(valueRanges...),
			metric.WithFormatting(money),
			metric.WithCacheTTL(ttl)),
		metric.New("Canceled Orders", aggregation.Value{Aggregate: query.CountOf("canceled_at")}, src,
			metric.WithColor("#F5573B"),
			metric.WithRanges(valueRanges...),
			metric.WithFormatting(whole),
			metric.WithCacheTTL(ttl)),
		metric.New("Orders Per Day", aggregation.Trend{Aggregate: query.Count(), Unit: enums.BucketUnitDay, ShowCurrentValue: true, ShowSum: true}, src,
			metric.WithIcon("chart-bar"),
			metric.WithRanges(trendRanges...),
			metric.WithFormatting(whole),
			metric.WithCacheTTL(ttl)),
		metric.New("Revenue Trend", aggregation.Trend{Aggregate: query.Sum("total_cents"), ShowSum: true}, src,
			metric.WithRanges(trendRanges...),
			metric.WithFormatting(money),
			metric.WithCacheTTL(ttl)),
		metric.New("Orders By Status", aggregation.Partition{Aggregate: query.Count(), Column: "status", Labels: statusLabels}, src,
			metric.WithRanges(partitionRanges...),
			metric.WithCacheTTL(ttl)),
		metric.New("Orders By Payment Method", aggregation.Partition{Aggregate: query.Count(), Column: "payment_method", Labels: paymentMethodLabels, Limit: 5}, src,
			metric.WithURIKey("orders-by-payment-method"),
			metric.WithRanges(partitionRanges...),
			metric.WithCacheTTL(ttl)),
		metric.New("Order Size", aggregation.Partition{
			Aggregate: query.Count(),
			Field:     "total_cents",
			NumberRanges: []aggregation.NumberRange{
				aggregation.Below("Under $50", 5000),
				aggregation.Between("$50 to $250", 5000, 25000),
				aggregation.Between("$250 to $1,000", 25000, 100000),
				aggregation.AtLeast("$1,000 and up", 100000),
			},
		}, src,
			metric.WithHelp("Orders grouped by total."),
			metric.WithRanges(partitionRanges...),
			metric.WithCacheTTL(ttl)),
		metric.New("Revenue Goal", aggregation.Progress{Aggregate: query.Sum("total_cents"), Target: float64(p.RevenueGoalCents)}, src,
			metric.WithRanges(metric.Range{Value: "MTD", Label: "Month To Date"}, metric.Range{Value: "QTD", Label: "Quarter To Date"}),
			metric.WithFormatting(money),
			metric.WithCacheTTL(ttl)),
		metric.New("Revenue vs Last Period", aggregation.Progress{Aggregate: query.Sum("total_cents"), TargetPrevious: true}, src,
			metric.WithURIKey("revenue-vs-last-period"),
			metric.WithRanges(valueRanges...),
			metric.WithFormatting(money),
			metric.WithCacheTTL(ttl)),
		metric.New("Recent Orders", recentOrders(currency), src,
			metric.WithIcon("clock"),
			metric.WithCacheTTL(ttl)),
	}
}

func recentOrders(currency string) aggregation.Table {
	money := results.Formatting{Currency: currency, Number: &results.NumberFormat{Decimals: 2, Grouping: true}, Transform: cents}
	table := aggregation.MostRecent(OrdersTimeField, 10,
		results.Column{Key: "order_number", Label: "Order", Sortable: true},
		results.Column{Key: "status", Label: "Status", Formatter: func(value any, _ results.Row) any {
			if label, ok := statusLabels[fmt.Sprint(value)]; ok {
				return label
			}
			return value
		}},
		results.Column{Key: "total_cents", Label: "Total", Sortable: true, Align: enums.AlignRight, Formatter: func(value any, _ results.Row) any {
			v, ok := query.ToFloat(value)
			if !ok {
				return nil
			}
			return money.Format(v)
		}},
		results.Column{Key: OrdersTimeField, Label: "Placed", Sortable: true, Formatter: func(value any, _ results.Row) any {
			if t, ok := value.(time.Time); ok {
				return t.UTC().Format(time.RFC3339)
			}
			return value
		}},
	)
	table.Select = []string{"id", "order_number", "status", "total_cents", OrdersTimeField}
	table.Actions = []results.RowAction{{Name: "view", Label: "View", Icon: "eye", URL: "/orders/{id}"}}
	table.EmptyText = "No orders yet"
	table.IgnoreRange = true
	return table
}
