package results

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

// Result is the output of one aggregation.
type Result interface {
	Kind() enums.MetricKind
	HasNoData() bool
}

// Snapshot is the serialized, cacheable form of a Result.
type Snapshot struct {
	Kind      enums.MetricKind `json:"kind"`
	HasNoData bool             `json:"has_no_data"`
	Data      json.RawMessage  `json:"data"`
}

// Snap serializes r for caching and transport.
func Snap(r Result) (*Snapshot, error) {
	if r == nil {
		return nil, fmt.Errorf("nil result")
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", r.Kind(), err)
	}
	return &Snapshot{Kind: r.Kind(), HasNoData: r.HasNoData(), Data: raw}, nil
}

// Empty returns the no-data snapshot for kind.
func Empty(kind enums.MetricKind) *Snapshot {
	var r Result
	switch kind {
	case enums.MetricKindTrend:
		r = NewTrend(nil)
	case enums.MetricKindPartition:
		r = NewPartition(nil)
	case enums.MetricKindProgress:
		r = NewProgress(0, 0)
	case enums.MetricKindTable:
		r = NewTable(nil, nil)
	default:
		r = NewEmptyValue()
	}
	snap, err := Snap(r)
	if err != nil {
		return &Snapshot{Kind: kind, HasNoData: true, Data: json.RawMessage("{}")}
	}
	return snap
}

// Point is one ordered key/value pair.
type Point struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// orderedObject encodes points as a JSON object in slice order.
func orderedObject(points []Point, value func(float64) float64) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range points {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(value(p.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func ptr(v float64) *float64 {
	return &v
}
