package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

func TestKeyFormats(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 37, 12, 0, time.UTC)
	cases := map[enums.BucketUnit]string{
		enums.BucketUnitMinute: "2024-03-05 14:37",
		enums.BucketUnitHour:   "2024-03-05 14:00",
		enums.BucketUnitDay:    "2024-03-05",
		enums.BucketUnitWeek:   "2024-W10",
		enums.BucketUnitMonth:  "2024-03",
		enums.BucketUnitYear:   "2024",
	}
	for unit, want := range cases {
		assert.Equal(t, want, Key(ts, unit, time.UTC), unit)
	}
}

func TestKeyUsesISOWeekYear(t *testing.T) {
	// Sunday 2021-01-03 still belongs to 2020-W53.
	assert.Equal(t, "2020-W53", Key(time.Date(2021, 1, 3, 12, 0, 0, 0, time.UTC), enums.BucketUnitWeek, time.UTC))
	assert.Equal(t, "2021-W01", Key(time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), enums.BucketUnitWeek, time.UTC))
	assert.Equal(t, "2025-W01", Key(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), enums.BucketUnitWeek, time.UTC))
}

func TestKeyDependsOnTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	ts := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-31", Key(ts, enums.BucketUnitDay, time.UTC))
	assert.Equal(t, "2024-02-01", Key(ts, enums.BucketUnitDay, tokyo))
	assert.Equal(t, "2024-02", Key(ts, enums.BucketUnitMonth, tokyo))
}

func TestSameBucketSameKey(t *testing.T) {
	units := []enums.BucketUnit{
		enums.BucketUnitMinute, enums.BucketUnitHour, enums.BucketUnitDay,
		enums.BucketUnitWeek, enums.BucketUnitMonth, enums.BucketUnitYear,
	}
	base := time.Date(2024, 7, 17, 9, 41, 30, 0, time.UTC)
	for _, unit := range units {
		floor := Floor(base, unit, time.UTC)
		next := Next(floor, unit)
		assert.Equal(t, Key(base, unit, time.UTC), Key(floor, unit, time.UTC), unit)
		assert.Equal(t, Key(base, unit, time.UTC), Key(next.Add(-time.Nanosecond), unit, time.UTC), unit)
		assert.NotEqual(t, Key(floor, unit, time.UTC), Key(next, unit, time.UTC), unit)
		assert.Less(t, Key(floor, unit, time.UTC), Key(next, unit, time.UTC), unit)
	}
}

func TestFloorWeekStartsMonday(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), Floor(sunday, enums.BucketUnitWeek, time.UTC))
}

func TestKeysCoverWindow(t *testing.T) {
	w := daterange.Window{
		Start: time.Date(2024, 1, 30, 12, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 2, 3, 0, 0, 0, time.UTC),
	}
	keys, err := Keys(w, enums.BucketUnitDay, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02"}, keys)

	months, err := Keys(w, enums.BucketUnitMonth, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02"}, months)

	long := daterange.Window{Start: w.Start, End: w.Start.AddDate(1, 0, 0)}
	_, err = Keys(long, enums.BucketUnitMinute, time.UTC)
	assert.ErrorIs(t, err, ErrTooManyBuckets)
}

func TestKeysSkipRepeatedDSTHour(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 2024-11-03 01:00 local happens twice.
	w := daterange.Window{
		Start: time.Date(2024, 11, 3, 0, 0, 0, 0, ny),
		End:   time.Date(2024, 11, 3, 3, 0, 0, 0, ny),
	}
	keys, err := Keys(w, enums.BucketUnitHour, ny)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-11-03 00:00", "2024-11-03 01:00", "2024-11-03 02:00", "2024-11-03 03:00"}, keys)
}

func TestAutoUnit(t *testing.T) {
	cases := []struct {
		token string
		want  enums.BucketUnit
	}{
		{"TODAY", enums.BucketUnitHour},
		{"MTD", enums.BucketUnitDay},
		{"QTD", enums.BucketUnitWeek},
		{"YTD", enums.BucketUnitMonth},
		{"1", enums.BucketUnitHour},
		{"2", enums.BucketUnitHour},
		{"3", enums.BucketUnitDay},
		{"90", enums.BucketUnitDay},
		{"91", enums.BucketUnitWeek},
		{"365", enums.BucketUnitWeek},
		{"400", enums.BucketUnitMonth},
	}
	for _, tc := range cases {
		token := daterange.MustParse(tc.token)
		assert.Equal(t, tc.want, AutoUnit(token), tc.token)
	}
}
