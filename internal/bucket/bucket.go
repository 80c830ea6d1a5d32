// Package bucket defines the canonical time-bucket key for an instant and the
// SQL expressions each backend uses to reproduce it.
package bucket

import (
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// MaxBuckets bounds Keys so a minute unit over a long range cannot explode.
const MaxBuckets = 5000

var ErrTooManyBuckets = errors.New("window spans too many buckets")

// Key returns the bucket key of t for unit, evaluated in loc.
func Key(t time.Time, unit enums.BucketUnit, loc *time.Location) string {
	local := t.In(orUTC(loc))
	switch unit {
	case enums.BucketUnitMinute:
		return local.Format("2006-01-02 15:04")
	case enums.BucketUnitHour:
		return local.Format("2006-01-02 15:00")
	case enums.BucketUnitWeek:
		year, week := local.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case enums.BucketUnitMonth:
		return local.Format("2006-01")
	case enums.BucketUnitYear:
		return local.Format("2006")
	default:
		return local.Format("2006-01-02")
	}
}

// Floor returns the first instant of the bucket containing t.
func Floor(t time.Time, unit enums.BucketUnit, loc *time.Location) time.Time {
	local := t.In(orUTC(loc))
	y, m, d := local.Date()
	switch unit {
	case enums.BucketUnitMinute:
		return time.Date(y, m, d, local.Hour(), local.Minute(), 0, 0, local.Location())
	case enums.BucketUnitHour:
		return time.Date(y, m, d, local.Hour(), 0, 0, 0, local.Location())
	case enums.BucketUnitWeek:
		back := (int(local.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, local.Location())
	case enums.BucketUnitMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, local.Location())
	case enums.BucketUnitYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, local.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, local.Location())
	}
}

// Next returns the start of the bucket after the one starting at floor.
func Next(floor time.Time, unit enums.BucketUnit) time.Time {
	switch unit {
	case enums.BucketUnitMinute:
		return floor.Add(time.Minute)
	case enums.BucketUnitHour:
		return floor.Add(time.Hour)
	case enums.BucketUnitWeek:
		return floor.AddDate(0, 0, 7)
	case enums.BucketUnitMonth:
		return floor.AddDate(0, 1, 0)
	case enums.BucketUnitYear:
		return floor.AddDate(1, 0, 0)
	default:
		return floor.AddDate(0, 0, 1)
	}
}

// Keys lists every bucket touching w in ascending order.
func Keys(w daterange.Window, unit enums.BucketUnit, loc *time.Location) ([]string, error) {
	var keys []string
	last := ""
	for cur := Floor(w.Start, unit, loc); !cur.After(w.End); cur = Next(cur, unit) {
		key := Key(cur, unit, loc)
		if key == last {
			// DST fall-back repeats a local hour.
			continue
		}
		if len(keys) == MaxBuckets {
			return nil, fmt.Errorf("%w: more than %d %s buckets", ErrTooManyBuckets, MaxBuckets, unit)
		}
		keys = append(keys, key)
		last = key
	}
	return keys, nil
}

// AutoUnit picks a bucket width from the range token alone, so the same
// token always yields the same unit whatever the clock or timezone says.
// Day counts use their nominal N*24h span.
func AutoUnit(token daterange.Token) enums.BucketUnit {
	switch token.Symbol() {
	case daterange.SymbolToday:
		return enums.BucketUnitHour
	case daterange.SymbolMTD:
		return enums.BucketUnitDay
	case daterange.SymbolQTD:
		return enums.BucketUnitWeek
	case daterange.SymbolYTD, daterange.SymbolAll:
		return enums.BucketUnitMonth
	}
	days, ok := token.DayCount()
	if !ok {
		return enums.BucketUnitDay
	}
	switch {
	case days <= 2:
		return enums.BucketUnitHour
	case days <= 90:
		return enums.BucketUnitDay
	case days <= 365:
		return enums.BucketUnitWeek
	default:
		return enums.BucketUnitMonth
	}
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
