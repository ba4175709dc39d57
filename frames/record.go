// Package frames turns Pinot result tables into Apache Arrow records and JSON row views.
package frames

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/array"
	"github.com/apache/arrow/go/v15/arrow/memory"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
)

const pinotTimestampLayout = "2006-01-02 15:04:05"

// Options controls the conversion of a result table.
type Options struct {
	// TimeColumn, when set, is converted to timestamp[ms] even if Pinot reports it as a LONG.
	TimeColumn string
}

// ArrowType maps a Pinot column data type to the Arrow type used for it.
func ArrowType(pinotType string) arrow.DataType {
	switch strings.ToUpper(pinotType) {
	case "INT":
		return arrow.PrimitiveTypes.Int32
	case "LONG":
		return arrow.PrimitiveTypes.Int64
	case "FLOAT":
		return arrow.PrimitiveTypes.Float32
	case "DOUBLE":
		return arrow.PrimitiveTypes.Float64
	case "BOOLEAN":
		return arrow.FixedWidthTypes.Boolean
	case "TIMESTAMP":
		return arrow.FixedWidthTypes.Timestamp_ms
	default:
		return arrow.BinaryTypes.String
	}
}

// Schema builds the Arrow schema of a result table. Every field is nullable.
func Schema(table *pinot.ResultTable, opts Options) *arrow.Schema {
	fields := make([]arrow.Field, table.ColumnCount())
	for i := range fields {
		name := table.ColumnName(i)
		dataType := ArrowType(table.ColumnDataType(i))
		if opts.TimeColumn != "" && name == opts.TimeColumn {
			dataType = arrow.FixedWidthTypes.Timestamp_ms
		}
		fields[i] = arrow.Field{
			Name:     name,
			Type:     dataType,
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{"pinotType"}, []string{table.ColumnDataType(i)}),
		}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord converts a result table into a single Arrow record. The caller releases it.
func ToRecord(mem memory.Allocator, table *pinot.ResultTable, opts Options) (arrow.Record, error) {
	if table == nil {
		return nil, fmt.Errorf("result table is empty")
	}
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	schema := Schema(table, opts)
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for col, field := range schema.Fields() {
		fieldBuilder := builder.Field(col)
		fieldBuilder.Reserve(table.RowCount())
		for row := 0; row < table.RowCount(); row++ {
			if err := appendValue(fieldBuilder, table.Get(row, col)); err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", field.Name, row, err)
			}
		}
	}
	return builder.NewRecord(), nil
}

func appendValue(b array.Builder, v interface{}) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch b := b.(type) {
	case *array.Int32Builder:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		b.Append(int32(n))
	case *array.Int64Builder:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		b.Append(n)
	case *array.Float32Builder:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		b.Append(float32(f))
	case *array.Float64Builder:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		b.Append(f)
	case *array.BooleanBuilder:
		switch v := v.(type) {
		case bool:
			b.Append(v)
		case string:
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			b.Append(parsed)
		default:
			return fmt.Errorf("cannot convert %T to bool", v)
		}
	case *array.TimestampBuilder:
		ms, err := toEpochMillis(v)
		if err != nil {
			return err
		}
		b.Append(arrow.Timestamp(ms))
	case *array.StringBuilder:
		s, err := toString(v)
		if err != nil {
			return err
		}
		b.Append(s)
	default:
		return fmt.Errorf("unsupported arrow builder %T", b)
	}
	return nil
}

func toInt64(v interface{}) (int64, error) {
	switch v := v.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		return int64(f), err
	case string:
		return toInt64(json.Number(v))
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to an integer", v)
	}
}

func toFloat64(v interface{}) (float64, error) {
	switch v := v.(type) {
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to a float", v)
	}
}

// toEpochMillis accepts epoch milliseconds as a number or numeric string, and the
// "yyyy-MM-dd HH:mm:ss.S" or RFC 3339 text Pinot uses for TIMESTAMP columns.
func toEpochMillis(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return toInt64(v)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	for _, layout := range []string{pinotTimestampLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("cannot parse %q as a timestamp", s)
}

func toString(v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
