package query

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-metrics/internal/bucket"
	"github.com/angelmondragon/packfinderz-metrics/internal/daterange"
	"github.com/angelmondragon/packfinderz-metrics/pkg/db"
	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// SQLSource aggregates a single table through gorm.
type SQLSource struct {
	db         *gorm.DB
	table      string
	timeColumn string
	dialect    bucket.Dialect
	scope      func(*gorm.DB) *gorm.DB
}

// SQLOption customizes a SQLSource.
type SQLOption func(*SQLSource)

// WithScope narrows every query, e.g. to a tenant or a status.
func WithScope(scope func(*gorm.DB) *gorm.DB) SQLOption {
	return func(s *SQLSource) {
		s.scope = scope
	}
}

// WithDialect overrides the dialect inferred from the connection.
func WithDialect(d bucket.Dialect) SQLOption {
	return func(s *SQLSource) {
		s.dialect = d
	}
}

// NewSQLSource binds table and its timestamp column. Timestamps are compared in UTC.
func NewSQLSource(conn *gorm.DB, table, timeColumn string, opts ...SQLOption) (*SQLSource, error) {
	if conn == nil {
		return nil, fmt.Errorf("sql source %q: nil connection", table)
	}
	if err := ValidateIdentifier(table); err != nil {
		return nil, err
	}
	if err := ValidateIdentifier(timeColumn); err != nil {
		return nil, err
	}
	src := &SQLSource{db: conn, table: table, timeColumn: timeColumn}
	for _, opt := range opts {
		opt(src)
	}
	if src.dialect == nil {
		d, err := bucket.Lookup(conn.Dialector.Name())
		if err != nil {
			return nil, err
		}
		src.dialect = d
	}
	return src, nil
}

// Table returns the table name.
func (s *SQLSource) Table() string {
	return s.table
}

func (s *SQLSource) Aggregate(ctx context.Context, agg Aggregate, w *daterange.Window) (float64, error) {
	expr, err := aggregateExpr(agg)
	if err != nil {
		return 0, err
	}
	var value sql.NullFloat64
	err = s.base(ctx, w).Select(expr).Row().Scan(&value)
	if err != nil {
		return 0, s.classify(err)
	}
	return value.Float64, nil
}

type groupRow struct {
	Bucket sql.NullString  `gorm:"column:bucket"`
	Value  sql.NullFloat64 `gorm:"column:value"`
}

func (s *SQLSource) AggregateByBucket(ctx context.Context, agg Aggregate, w daterange.Window, unit enums.BucketUnit, loc *time.Location) ([]Group, error) {
	expr, err := aggregateExpr(agg)
	if err != nil {
		return nil, err
	}
	keyExpr, err := s.dialect.Expression(s.timeColumn, unit, loc, w.Start)
	if err != nil {
		return nil, err
	}
	var rows []groupRow
	err = s.base(ctx, &w).
		Select(fmt.Sprintf("%s AS bucket, %s AS value", keyExpr, expr)).
		Group(keyExpr).
		Order(keyExpr).
		Scan(&rows).Error
	if err != nil {
		return nil, s.classify(err)
	}
	return toGroups(rows), nil
}

func (s *SQLSource) AggregateByColumn(ctx context.Context, agg Aggregate, column string, w *daterange.Window) ([]Group, error) {
	if err := ValidateIdentifier(column); err != nil {
		return nil, err
	}
	expr, err := aggregateExpr(agg)
	if err != nil {
		return nil, err
	}
	var rows []groupRow
	err = s.base(ctx, w).
		Select(fmt.Sprintf("%s AS bucket, %s AS value", column, expr)).
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, s.classify(err)
	}
	return toGroups(rows), nil
}

func (s *SQLSource) Records(ctx context.Context, q RecordQuery) ([]Record, error) {
	tx := s.base(ctx, q.Window)
	if len(q.Columns) > 0 {
		for _, col := range q.Columns {
			if err := ValidateIdentifier(col); err != nil {
				return nil, err
			}
		}
		tx = tx.Select(q.Columns)
	}
	if q.OrderBy != "" {
		if err := ValidateIdentifier(q.OrderBy); err != nil {
			return nil, err
		}
		dir := "ASC"
		if q.Direction == enums.SortDesc {
			dir = "DESC"
		}
		tx = tx.Order(fmt.Sprintf("%s %s", q.OrderBy, dir))
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, s.classify(err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record(row))
	}
	return out, nil
}

func (s *SQLSource) base(ctx context.Context, w *daterange.Window) *gorm.DB {
	tx := s.db.WithContext(ctx).Table(s.table)
	if s.scope != nil {
		tx = tx.Scopes(s.scope)
	}
	if w != nil {
		tx = tx.Where(fmt.Sprintf("%s BETWEEN ? AND ?", s.timeColumn), w.Start.UTC(), w.End.UTC())
	}
	return tx
}

// classify maps a query failure against a missing table to ErrSourceUnavailable.
func (s *SQLSource) classify(err error) error {
	if db.IsUndefinedTable(err) || !s.db.Migrator().HasTable(s.table) {
		return fmt.Errorf("%w: table %q: %v", ErrSourceUnavailable, s.table, err)
	}
	return fmt.Errorf("query %s: %w", s.table, err)
}

func aggregateExpr(agg Aggregate) (string, error) {
	if err := agg.Validate(); err != nil {
		return "", err
	}
	fn := strings.ToUpper(agg.Function.String())
	if agg.Function == enums.AggregateCount {
		if agg.Column == "" {
			return "COUNT(*)", nil
		}
		return fmt.Sprintf("COUNT(%s)", agg.Column), nil
	}
	if agg.Function == enums.AggregateSum {
		return fmt.Sprintf("COALESCE(SUM(%s), 0)", agg.Column), nil
	}
	return fmt.Sprintf("%s(%s)", fn, agg.Column), nil
}

func toGroups(rows []groupRow) []Group {
	out := make([]Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, Group{Key: row.Bucket.String, Value: row.Value.Float64})
	}
	return out
}
