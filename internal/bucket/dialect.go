package bucket

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// Dialect renders a SQL expression that yields Key(column, unit, loc) for a backend.
// at is the instant used when the backend only understands fixed offsets.
type Dialect interface {
	Name() string
	Expression(column string, unit enums.BucketUnit, loc *time.Location, at time.Time) (string, error)
}

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

func init() {
	Register(postgresDialect{})
	Register(sqliteDialect{})
	Register(mysqlDialect{})
	Register(sqlServerDialect{})
}

// Register adds or replaces a dialect keyed by its name.
func Register(d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(d.Name())] = d
}

// Lookup returns the dialect for a backend name such as gorm's Dialector.Name().
func Lookup(name string) (Dialect, error) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("no bucket dialect registered for %q", name)
	}
	return d, nil
}

// Dialects lists registered names, sorted.
func Dialects() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// Expression assumes a timestamptz column.
func (postgresDialect) Expression(column string, unit enums.BucketUnit, loc *time.Location, _ time.Time) (string, error) {
	var layout string
	switch unit {
	case enums.BucketUnitMinute:
		layout = "YYYY-MM-DD HH24:MI"
	case enums.BucketUnitHour:
		layout = "YYYY-MM-DD HH24:00"
	case enums.BucketUnitDay:
		layout = "YYYY-MM-DD"
	case enums.BucketUnitWeek:
		layout = `IYYY-"W"IW`
	case enums.BucketUnitMonth:
		layout = "YYYY-MM"
	case enums.BucketUnitYear:
		layout = "YYYY"
	default:
		return "", unsupported(unit)
	}
	return fmt.Sprintf("to_char(%s AT TIME ZONE %s, '%s')", column, quote(orUTC(loc).String()), layout), nil
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

// Expression shifts by the offset loc has at the given instant; a window crossing a DST
// change is bucketed with the offset in effect at its start.
func (sqliteDialect) Expression(column string, unit enums.BucketUnit, loc *time.Location, at time.Time) (string, error) {
	_, offset := at.In(orUTC(loc)).Zone()
	shift := fmt.Sprintf("'%+d seconds'", offset)
	switch unit {
	case enums.BucketUnitMinute:
		return fmt.Sprintf("strftime('%%Y-%%m-%%d %%H:%%M', %s, %s)", column, shift), nil
	case enums.BucketUnitHour:
		return fmt.Sprintf("strftime('%%Y-%%m-%%d %%H:00', %s, %s)", column, shift), nil
	case enums.BucketUnitDay:
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s, %s)", column, shift), nil
	case enums.BucketUnitWeek:
		// ISO week: the Thursday of the week carries the ISO year and ordinal.
		thursday := fmt.Sprintf("date(%s, %s, '-3 days', 'weekday 4')", column, shift)
		return fmt.Sprintf("printf('%%s-W%%02d', strftime('%%Y', %s), (CAST(strftime('%%j', %s) AS INTEGER) - 1) / 7 + 1)", thursday, thursday), nil
	case enums.BucketUnitMonth:
		return fmt.Sprintf("strftime('%%Y-%%m', %s, %s)", column, shift), nil
	case enums.BucketUnitYear:
		return fmt.Sprintf("strftime('%%Y', %s, %s)", column, shift), nil
	}
	return "", unsupported(unit)
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

// Expression assumes UTC-stored DATETIME columns and loaded timezone tables.
func (mysqlDialect) Expression(column string, unit enums.BucketUnit, loc *time.Location, _ time.Time) (string, error) {
	local := fmt.Sprintf("CONVERT_TZ(%s, '+00:00', %s)", column, quote(orUTC(loc).String()))
	switch unit {
	case enums.BucketUnitMinute:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d %%H:%%i')", local), nil
	case enums.BucketUnitHour:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d %%H:00')", local), nil
	case enums.BucketUnitDay:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", local), nil
	case enums.BucketUnitWeek:
		return fmt.Sprintf("CONCAT(LEFT(YEARWEEK(%s, 3), 4), '-W', RIGHT(YEARWEEK(%s, 3), 2))", local, local), nil
	case enums.BucketUnitMonth:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m')", local), nil
	case enums.BucketUnitYear:
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y')", local), nil
	}
	return "", unsupported(unit)
}

type sqlServerDialect struct{}

func (sqlServerDialect) Name() string { return "sqlserver" }

// Expression uses a fixed offset like sqlite since SQL Server expects Windows zone names.
func (sqlServerDialect) Expression(column string, unit enums.BucketUnit, loc *time.Location, at time.Time) (string, error) {
	_, offset := at.In(orUTC(loc)).Zone()
	local := fmt.Sprintf("DATEADD(second, %d, %s)", offset, column)
	switch unit {
	case enums.BucketUnitMinute:
		return fmt.Sprintf("FORMAT(%s, 'yyyy-MM-dd HH:mm')", local), nil
	case enums.BucketUnitHour:
		return fmt.Sprintf("FORMAT(%s, 'yyyy-MM-dd HH:00')", local), nil
	case enums.BucketUnitDay:
		return fmt.Sprintf("FORMAT(%s, 'yyyy-MM-dd')", local), nil
	case enums.BucketUnitWeek:
		return fmt.Sprintf("CONCAT(YEAR(DATEADD(day, 26 - DATEPART(isoww, %s), %s)), '-W', RIGHT('0' + CAST(DATEPART(isoww, %s) AS varchar(2)), 2))", local, local, local), nil
	case enums.BucketUnitMonth:
		return fmt.Sprintf("FORMAT(%s, 'yyyy-MM')", local), nil
	case enums.BucketUnitYear:
		return fmt.Sprintf("FORMAT(%s, 'yyyy')", local), nil
	}
	return "", unsupported(unit)
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func unsupported(unit enums.BucketUnit) error {
	return fmt.Errorf("unsupported bucket unit %q", unit)
}
