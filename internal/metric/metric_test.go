package metric

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/packfinderz-metrics/internal/aggregation"
	"github.com/angelmondragon/packfinderz-metrics/internal/cache"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/internal/query"
	"github.com/angelmondragon/packfinderz-metrics/internal/results"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
	pkgerrors "github.com/angelmondragon/packfinderz-metrics/pkg/errors"
)

var now = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

type countingSource struct {
	query.Source
	calls atomic.Int32
}

func (c *countingSource) Aggregate(ctx context.Context, agg query.Aggregate, w *daterange.Window) (float64, error) {
	c.calls.Add(1)
	return c.Source.Aggregate(ctx, agg, w)
}

func ordersSource() *countingSource {
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	rec := func(id, status string, total float64, at time.Time) query.Record {
		return query.Record{"id": id, "status": status, "total": total, "created_at": at}
	}
	return &countingSource{Source: query.NewMemorySource("created_at", []query.Record{
		rec("o1", "paid", 1200, today.Add(1*time.Hour)),
		rec("o2", "paid", 800, today.Add(2*time.Hour)),
		rec("o3", "pending", 50, today.Add(3*time.Hour)),
		rec("o4", "canceled", 0, today.Add(4*time.Hour)),
		rec("o5", "paid", 300, today.Add(5*time.Hour)),
		rec("o6", "paid", 100, today.AddDate(0, 0, -1).Add(9*time.Hour)),
		rec("o7", "pending", 20, today.AddDate(0, 0, -1).Add(10*time.Hour)),
		rec("o8", "paid", 5000, today.AddDate(0, 0, -40)),
	})}
}

func testRegistry(t *testing.T, withCache bool) *Registry {
	t.Helper()
	env := Env{Resolver: &daterange.Resolver{Now: func() time.Time { return now }}}
	if withCache {
		mgr, err := cache.NewManager(cache.ManagerParams{Store: cache.NewMemoryStore(), Prefix: "pfm", SingleFlight: true})
		require.NoError(t, err)
		env.Cache = mgr
	}
	return NewRegistry(env)
}

func decode(t *testing.T, snap *results.Snapshot) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(snap.Data, &out))
	return out
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "orders-per-day", Slug("Orders Per Day"))
	assert.Equal(t, "revenue-usd", Slug("  Revenue (USD) "))
	assert.Equal(t, "", Slug("!!"))
}

func TestCalculateServesRepeatCallsFromCache(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(t, true)
	src := ordersSource()
	m := New("New Orders", aggregation.Value{Aggregate: query.Count()}, src, WithCacheTTL(cache.Seconds(300)))
	require.NoError(t, reg.Register(m))

	req := Request{Range: "TODAY", Timezone: "UTC"}
	first, err := m.Calculate(ctx, req)
	require.NoError(t, err)
	second, err := m.Calculate(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, enums.MetricKindValue, first.Kind)
	assert.JSONEq(t, string(first.Data), string(second.Data))
	assert.Equal(t, int32(2), src.calls.Load(), "current and previous window computed once")
	assert.Equal(t, int64(1), reg.Cache().Stats().Hits)

	body := decode(t, first)
	assert.Equal(t, 5.0, body["value"])
	assert.Equal(t, 2.0, body["previous"])
}

func TestCalculateWithoutTTLAlwaysComputes(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(t, true)
	src := ordersSource()
	m := New("Live Orders", aggregation.Value{Aggregate: query.Count(), SkipPrevious: true}, src)
	require.NoError(t, reg.Register(m))

	for i := 0; i < 3; i++ {
		_, err := m.Calculate(ctx, Request{Range: "TODAY"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), src.calls.Load())
	assert.Zero(t, reg.Cache().Stats().Writes)
}

func TestCalculateRejectsBadInput(t *testing.T) {
	m := New("Orders", aggregation.Value{Aggregate: query.Count()}, ordersSource())

	_, err := m.Calculate(context.Background(), Request{Range: "fortnight"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfiguration))

	_, err = m.Calculate(context.Background(), Request{Range: "7", Timezone: "Mars/Olympus"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCalculateUnauthorized(t *testing.T) {
	m := New("Secret", aggregation.Value{Aggregate: query.Count()}, ordersSource(),
		WithAuthorization(func(_ context.Context, req Request) bool { return req.UserID == "admin" }))

	_, err := m.Calculate(context.Background(), Request{UserID: "guest"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = m.Calculate(context.Background(), Request{UserID: "admin"})
	assert.NoError(t, err)
}

func TestTrendOnValueMetric(t *testing.T) {
	reg := testRegistry(t, true)
	m := New("Orders", aggregation.Value{Aggregate: query.Count()}, ordersSource(), WithCacheTTL(cache.Seconds(60)))
	require.NoError(t, reg.Register(m))

	snap, err := m.Trend(context.Background(), Request{Range: "7"}, enums.BucketUnitDay)
	require.NoError(t, err)
	assert.Equal(t, enums.MetricKindTrend, snap.Kind)

	body := decode(t, snap)
	assert.Equal(t, 7.0, body["trend_sum"])
	trend := body["trend"].(map[string]any)
	assert.Len(t, trend, 8)
	assert.Equal(t, 5.0, trend["2024-03-15"])

	valueKey, err := m.KeyFor(Request{Range: "7"})
	require.NoError(t, err)
	has, err := reg.Cache().Has(context.Background(), valueKey)
	require.NoError(t, err)
	assert.False(t, has, "trend results are keyed apart from the value result")
}

func TestTrendRequiresValueMetric(t *testing.T) {
	m := New("By Status", aggregation.Partition{Aggregate: query.Count(), Column: "status"}, ordersSource())
	_, err := m.Trend(context.Background(), Request{}, enums.BucketUnitDay)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConfiguration))

	v := New("Orders", &aggregation.Value{Aggregate: query.Count()}, ordersSource())
	_, err = v.Trend(context.Background(), Request{Range: "7"}, enums.BucketUnit("fortnight"))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestKeyForVariesByScope(t *testing.T) {
	reg := testRegistry(t, true)
	scoped := New("My Orders", aggregation.Value{Aggregate: query.Count()}, ordersSource(), WithUserScope(), WithCacheSuffix("v2"))
	table := New("Recent", aggregation.MostRecent("created_at", 5, results.Column{Key: "id", Label: "ID", Sortable: true}), ordersSource())
	require.NoError(t, reg.Register(scoped, table))

	alice, err := scoped.KeyFor(Request{Range: "30", UserID: "alice"})
	require.NoError(t, err)
	bob, err := scoped.KeyFor(Request{Range: "30d", UserID: "bob"})
	require.NoError(t, err)
	assert.NotEqual(t, alice, bob)
	assert.Contains(t, alice, ":u=alice:s=v2")

	anon, err := scoped.KeyFor(Request{})
	require.NoError(t, err)
	assert.Contains(t, anon, "u=anonymous")

	plain, err := table.KeyFor(Request{})
	require.NoError(t, err)
	sorted, err := table.KeyFor(Request{SortBy: "id", SortDirection: enums.SortAsc, Limit: 3})
	require.NoError(t, err)
	assert.NotEqual(t, plain, sorted)

	utc, err := table.KeyFor(Request{Timezone: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, plain, utc)
}

func TestWarmThenCalculateHitsCache(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(t, true)
	src := ordersSource()
	m := New("Revenue", aggregation.Value{Aggregate: query.Sum("total")}, src, WithCacheTTL(cache.Seconds(300)))
	scoped := New("Mine", aggregation.Value{Aggregate: query.Count()}, src, WithUserScope(), WithCacheTTL(cache.Seconds(300)))
	uncached := New("Live", aggregation.Value{Aggregate: query.Count()}, src)
	require.NoError(t, reg.Register(m, scoped, uncached))

	warmables := reg.Warmables()
	require.Len(t, warmables, 1)

	report := reg.Cache().WarmAll(ctx, warmables, cache.Combinations([]string{"TODAY"}, []string{"UTC"}))
	require.Equal(t, 1, report.Warmed)
	calls := src.calls.Load()

	snap, err := m.Calculate(ctx, Request{Range: "today", Timezone: "UTC"})
	require.NoError(t, err)
	assert.Equal(t, calls, src.calls.Load())
	assert.Equal(t, 2350.0, decode(t, snap)["value"])

	_, err = scoped.CacheKey(cache.WarmParams{Range: "TODAY"})
	assert.Error(t, err)
}

func TestCachedAndForget(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(t, true)
	m := New("Orders", aggregation.Value{Aggregate: query.Count()}, ordersSource(), WithCacheTTL(cache.Seconds(60)))
	require.NoError(t, reg.Register(m))

	_, err := m.Cached(ctx, Request{})
	assert.ErrorIs(t, err, cache.ErrNotCached)

	_, err = m.Calculate(ctx, Request{})
	require.NoError(t, err)
	snap, err := m.Cached(ctx, Request{})
	require.NoError(t, err)
	assert.Equal(t, enums.MetricKindValue, snap.Kind)

	n, err := m.Forget(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	unbound := New("Loose", aggregation.Value{Aggregate: query.Count()}, ordersSource())
	_, err = unbound.Cached(ctx, Request{})
	assert.ErrorIs(t, err, cache.ErrNotCached)
}

func TestMetaDefaults(t *testing.T) {
	ctx := context.Background()
	value := New("Orders", aggregation.Value{Aggregate: query.Count()}, ordersSource())
	part := New("By Status", aggregation.Partition{Aggregate: query.Count(), Column: "status"}, ordersSource())
	ranged := New("Revenue", aggregation.Value{Aggregate: query.Sum("total")}, ordersSource(),
		WithRanges(Range{Value: "7", Label: "7 Days"}, Range{Value: "MTD", Label: "Month To Date"}),
		WithFormatting(results.Formatting{Currency: "USD", Number: &results.NumberFormat{Decimals: 2, Grouping: true}}),
		WithIcon("currency-dollar"), WithHelp("Paid order totals"), WithCacheTTL(cache.Seconds(90)))

	assert.Equal(t, "30", value.Meta(ctx, Request{}).DefaultRange)
	assert.Equal(t, "ALL", part.Meta(ctx, Request{}).DefaultRange)
	assert.Equal(t, []Range{}, value.Meta(ctx, Request{}).Ranges)

	meta := ranged.Meta(ctx, Request{})
	assert.Equal(t, "revenue", meta.URIKey)
	assert.Equal(t, "7", meta.DefaultRange)
	assert.Equal(t, "USD", meta.Format.Currency)
	assert.Equal(t, "1m30s", meta.CacheTTL)
	assert.True(t, meta.Authorized)
	assert.Equal(t, "no-cache", value.Meta(ctx, Request{}).CacheTTL)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := testRegistry(t, false)
	require.NoError(t, reg.Register(New("Orders", aggregation.Value{Aggregate: query.Count()}, ordersSource())))
	assert.Error(t, reg.Register(New("orders", aggregation.Value{Aggregate: query.Count()}, ordersSource())))
	assert.Error(t, reg.Register(New("??", aggregation.Value{Aggregate: query.Count()}, ordersSource())))
	assert.Error(t, reg.Register(New("No Source", aggregation.Value{Aggregate: query.Count()}, nil)))

	_, ok := reg.Get("orders")
	assert.True(t, ok)
	assert.Len(t, reg.Metrics(), 1)
}
