package bucket

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

func TestLookupRegisteredDialects(t *testing.T) {
	assert.Equal(t, []string{"mysql", "postgres", "sqlite", "sqlserver"}, Dialects())

	d, err := Lookup("Postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Lookup("oracle")
	assert.Error(t, err)
}

func TestPostgresExpression(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	d, err := Lookup("postgres")
	require.NoError(t, err)

	expr, err := d.Expression("created_at", enums.BucketUnitWeek, ny, time.Now())
	require.NoError(t, err)
	assert.Equal(t, `to_char(created_at AT TIME ZONE 'America/New_York', 'IYYY-"W"IW')`, expr)

	_, err = d.Expression("created_at", enums.BucketUnit("fortnight"), ny, time.Now())
	assert.Error(t, err)
}

func TestEveryDialectCoversEveryUnit(t *testing.T) {
	units := []enums.BucketUnit{
		enums.BucketUnitMinute, enums.BucketUnitHour, enums.BucketUnitDay,
		enums.BucketUnitWeek, enums.BucketUnitMonth, enums.BucketUnitYear,
	}
	for _, name := range Dialects() {
		d, err := Lookup(name)
		require.NoError(t, err)
		for _, unit := range units {
			expr, err := d.Expression("created_at", unit, time.UTC, time.Now())
			require.NoError(t, err, "%s %s", name, unit)
			assert.Contains(t, expr, "created_at", "%s %s", name, unit)
		}
	}
}

// The SQL expression and Key must agree on every instant.
func TestSQLiteExpressionMatchesKey(t *testing.T) {
	conn := openSQLite(t)
	require.NoError(t, conn.Exec("CREATE TABLE events (id INTEGER PRIMARY KEY, created_at DATETIME NOT NULL)").Error)

	instants := []time.Time{
		time.Date(2020, 12, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2021, 1, 3, 12, 0, 0, 0, time.UTC),
		time.Date(2021, 1, 3, 23, 30, 0, 0, time.UTC),
		time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 18, 45, 0, 0, time.UTC),
		time.Date(2024, 12, 30, 4, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 22, 15, 0, 0, time.UTC),
		time.Date(2027, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	for i, ts := range instants {
		require.NoError(t, conn.Exec("INSERT INTO events (id, created_at) VALUES (?, ?)", i+1, ts).Error)
	}

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	units := []enums.BucketUnit{
		enums.BucketUnitMinute, enums.BucketUnitHour, enums.BucketUnitDay,
		enums.BucketUnitWeek, enums.BucketUnitMonth, enums.BucketUnitYear,
	}
	d, err := Lookup("sqlite")
	require.NoError(t, err)

	for _, loc := range []*time.Location{time.UTC, kolkata, ny} {
		// Every instant sits outside daylight saving time in New York.
		at := instants[0]
		for _, unit := range units {
			expr, err := d.Expression("created_at", unit, loc, at)
			require.NoError(t, err)

			var got []string
			require.NoError(t, conn.Raw(fmt.Sprintf("SELECT %s FROM events ORDER BY id", expr)).Scan(&got).Error)
			require.Len(t, got, len(instants))
			for i, ts := range instants {
				assert.Equal(t, Key(ts, unit, loc), got[i], "%s %s %s", loc, unit, ts)
			}
		}
	}
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
