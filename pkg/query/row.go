package query

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Row is one record of a table. Values use JSON-native Go types: string,
// float64, bool, nil, []any and map[string]any.
type Row map[string]any

func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the column value when it holds a string.
func (r Row) String(column string) string {
	s, _ := r[column].(string)
	return s
}

// Decode unmarshals the row into dst, a pointer to a struct with json tags.
func (r Row) Decode(dst any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode row: %w", err)
	}
	return nil
}

// ToRow converts a struct (or map) into a Row through its JSON form, so the
// values end up with the same types as rows read back from a table.
func ToRow(v any) (Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("value is not an object: %w", err)
	}
	return row, nil
}

// DecodeRows decodes every row into a T.
func DecodeRows[T any](rows []Row) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		if err := row.Decode(&item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Filter is a single equality predicate.
type Filter struct {
	Column string
	Value  any
}

// Match reports whether the row has the column and its value equals the
// filter value with the same dynamic type. "1" never matches 1.
func (f Filter) Match(r Row) bool {
	v, ok := r[f.Column]
	return ok && strictEqual(v, f.Value)
}

func matchAll(r Row, filters []Filter) bool {
	for _, f := range filters {
		if !f.Match(r) {
			return false
		}
	}
	return true
}

func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

const (
	rankNil = iota
	rankBool
	rankNumber
	rankString
	rankTime
	rankOther
)

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return rankNumber
	case string:
		return rankString
	case time.Time:
		return rankTime
	default:
		return rankOther
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}

// compareValues orders values of mixed types: nil, bools, numbers, strings,
// times, then anything else by its printed form.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case rankNil:
		return 0
	case rankBool:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case rankNumber:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	case rankString:
		return strings.Compare(a.(string), b.(string))
	case rankTime:
		return a.(time.Time).Compare(b.(time.Time))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// project keeps only the requested columns. "*" anywhere in the list keeps
// the whole row. Embedded resources such as "service:services(*)" are not
// resolved and are skipped.
func project(r Row, columns []string) Row {
	if len(columns) == 0 {
		return r.Clone()
	}
	out := make(Row, len(columns))
	for _, c := range columns {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

func parseColumns(columns string) []string {
	var out []string
	for _, c := range strings.Split(columns, ",") {
		c = strings.TrimSpace(c)
		switch {
		case c == "":
			continue
		case c == "*":
			return nil
		case strings.Contains(c, "("):
			continue
		}
		out = append(out, c)
	}
	return out
}
