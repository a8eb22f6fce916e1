package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// ColumnKind is the inferred storage type of a dataset column.
type ColumnKind string

const (
	ColumnNumeric  ColumnKind = "numeric"
	ColumnString   ColumnKind = "string"
	ColumnBoolean  ColumnKind = "boolean"
	ColumnDateTime ColumnKind = "datetime"
)

// Dataset is an in-memory tabular snapshot: ordered named columns of
// equal-length value slices. Values are scalars (numeric, string, bool,
// time.Time) or nil for missing cells. A Dataset is read-only after
// construction, so concurrent validation of the same snapshot is safe.
type Dataset struct {
	columns  []string
	data     map[string][]any
	kinds    map[string]ColumnKind
	integral map[string]bool
	rows     int
}

// NewDataset builds a dataset from ordered column names and their value
// slices, inferring each column's kind from the majority native type of its
// non-null values. Ties and empty columns default to string.
func NewDataset(columns []string, data map[string][]any) *Dataset {
	ds := &Dataset{
		columns:  append([]string(nil), columns...),
		data:     make(map[string][]any, len(columns)),
		kinds:    make(map[string]ColumnKind, len(columns)),
		integral: make(map[string]bool, len(columns)),
	}

	for _, col := range columns {
		values := data[col]
		ds.data[col] = values
		if len(values) > ds.rows {
			ds.rows = len(values)
		}
		ds.kinds[col], ds.integral[col] = inferKind(values)
	}

	return ds
}

func inferKind(values []any) (ColumnKind, bool) {
	var numeric, str, boolean, datetime int
	allIntegral := true

	for _, v := range values {
		if IsNull(v) {
			continue
		}
		switch v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			numeric++
		case float32, float64:
			numeric++
			allIntegral = false
		case string:
			str++
		case bool:
			boolean++
		case time.Time:
			datetime++
		default:
			str++
		}
	}

	switch {
	case numeric > str && numeric > boolean && numeric > datetime:
		return ColumnNumeric, allIntegral
	case datetime > str && datetime > numeric && datetime > boolean:
		return ColumnDateTime, false
	case boolean > str && boolean > numeric && boolean > datetime:
		return ColumnBoolean, false
	default:
		return ColumnString, false
	}
}

// Columns returns the column names in insertion order.
func (d *Dataset) Columns() []string { return d.columns }

// Rows returns the number of rows.
func (d *Dataset) Rows() int { return d.rows }

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.columns) }

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.data[name]
	return ok
}

// Kind returns the inferred kind of the named column.
func (d *Dataset) Kind(name string) ColumnKind { return d.kinds[name] }

// Integral reports whether a numeric column holds only whole-number values.
func (d *Dataset) Integral(name string) bool { return d.integral[name] }

// Values returns the raw value slice of the named column.
func (d *Dataset) Values(name string) []any { return d.data[name] }

// ColumnsOfKind returns the names of all columns of the given kind, in order.
func (d *Dataset) ColumnsOfKind(kind ColumnKind) []string {
	var out []string
	for _, col := range d.columns {
		if d.kinds[col] == kind {
			out = append(out, col)
		}
	}
	return out
}

// MissingCount returns the number of null cells in the column.
func (d *Dataset) MissingCount(name string) int {
	n := 0
	for _, v := range d.data[name] {
		if IsNull(v) {
			n++
		}
	}
	return n
}

// NonNullCount returns the number of populated cells in the column.
func (d *Dataset) NonNullCount(name string) int {
	return len(d.data[name]) - d.MissingCount(name)
}

// DistinctCount returns the number of distinct non-null values in the column.
// Numeric values compare by magnitude, so 1 and 1.0 are one value.
func (d *Dataset) DistinctCount(name string) int {
	seen := make(map[string]struct{})
	for _, v := range d.data[name] {
		if IsNull(v) {
			continue
		}
		seen[ValueKey(v)] = struct{}{}
	}
	return len(seen)
}

// NumericValues returns the coercible non-null values of a column as floats.
// Cells that cannot be coerced are skipped.
func (d *Dataset) NumericValues(name string) []float64 {
	var out []float64
	for _, v := range d.data[name] {
		if IsNull(v) {
			continue
		}
		if f, ok := AsFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// IsNull reports whether a cell value is missing.
func IsNull(v any) bool { return v == nil }

// IsNumeric reports whether the value is natively numeric (bool excluded).
func IsNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// AsFloat attempts numeric coercion of a scalar value.
func AsFloat(v any) (float64, bool) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// AsString renders a scalar value as a string.
func AsString(v any) string { return cast.ToString(v) }

// ValueKey returns a comparison key for a scalar, normalizing numeric widths
// so row and value equality behave like value equality, not type equality.
func ValueKey(v any) string {
	if IsNull(v) {
		return "\x00"
	}
	switch x := v.(type) {
	case bool:
		return "b:" + strconv.FormatBool(x)
	case string:
		return "s:" + x
	case time.Time:
		return "t:" + strconv.FormatInt(x.UnixNano(), 10)
	}
	if f, ok := AsFloat(v); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// RowKey returns a comparison key for an entire row, used for full-row
// duplicate detection. Nulls compare equal to each other.
func (d *Dataset) RowKey(row int) string {
	key := make([]byte, 0, 16*len(d.columns))
	for _, col := range d.columns {
		values := d.data[col]
		var v any
		if row < len(values) {
			v = values[row]
		}
		key = append(key, ValueKey(v)...)
		key = append(key, 0x1f)
	}
	return string(key)
}
