package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/visualquery"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Query(ctx context.Context, table string, sql string) (*pinot.BrokerResponse, error) {
	args := m.Called(table, sql)
	resp, _ := args.Get(0).(*pinot.BrokerResponse)
	return resp, args.Error(1)
}

func (m *mockQuerier) Tables(ctx context.Context) ([]string, error) {
	args := m.Called()
	tables, _ := args.Get(0).([]string)
	return tables, args.Error(1)
}

func (m *mockQuerier) TableSchema(ctx context.Context, table string) (*pinot.Schema, error) {
	args := m.Called(table)
	schema, _ := args.Get(0).(*pinot.Schema)
	return schema, args.Error(1)
}

var (
	from = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to   = from.Add(time.Hour)
)

func seriesResponse() *pinot.BrokerResponse {
	return &pinot.BrokerResponse{
		ResultTable: &pinot.ResultTable{
			DataSchema: pinot.RespSchema{
				ColumnNames:     []string{"ts", "count(*)"},
				ColumnDataTypes: []string{"LONG", "LONG"},
			},
			Rows: [][]interface{}{
				{json.Number("1704067200000"), json.Number("4")},
				{json.Number("1704067260000"), json.Number("9")},
			},
		},
		TimeUsedMs: 3,
	}
}

func timeSeriesQuery() Query {
	vq := visualquery.NewVisualQuery().WithTable("events")
	vq.Aggregations = []visualquery.AggregationConfig{{Func: "COUNT", Column: "*"}}
	vq.TimeSeries = &visualquery.TimeSeriesConfig{Enabled: true, TimeColumn: "ts", AutoApplyTimeFilter: true}
	return Query{
		RefID:       "A",
		VisualQuery: vq,
		Format:      FormatTimeSeries,
		TimeRange:   TimeRange{From: from, To: to},
	}
}

func TestRunBuilderQuery(t *testing.T) {
	querier := &mockQuerier{}
	expectedSQL := fmt.Sprintf(
		"SELECT ts, COUNT(*) FROM events WHERE ts >= %d AND ts <= %d GROUP BY ts ORDER BY ts ASC LIMIT 100",
		from.UnixMilli(), to.UnixMilli(),
	)
	querier.On("Query", "events", expectedSQL).Return(seriesResponse(), nil)

	result, err := NewService(querier).Run(context.Background(), timeSeriesQuery())
	require.NoError(t, err)
	querier.AssertExpectations(t)

	assert.Equal(t, "A", result.RefID)
	assert.Equal(t, expectedSQL, result.SQL)
	assert.Equal(t, "events", result.Table)
	assert.Equal(t, "ts", result.TimeColumn)

	rec, err := result.Record(nil)
	require.NoError(t, err)
	defer rec.Release()
	assert.Equal(t, arrow.FixedWidthTypes.Timestamp_ms, rec.Schema().Field(0).Type)
	assert.Equal(t, int64(2), rec.NumRows())

	assert.Len(t, result.Rows().Rows, 2)
}

func TestRunTableFormatKeepsRawTimeColumn(t *testing.T) {
	querier := &mockQuerier{}
	querier.On("Query", "events", mock.Anything).Return(seriesResponse(), nil)

	q := timeSeriesQuery()
	q.Format = FormatTable
	result, err := NewService(querier).Run(context.Background(), q)
	require.NoError(t, err)

	rec, err := result.Record(nil)
	require.NoError(t, err)
	defer rec.Release()
	assert.Equal(t, arrow.PrimitiveTypes.Int64, rec.Schema().Field(0).Type)
}

func TestRunCodeQuery(t *testing.T) {
	querier := &mockQuerier{}
	querier.On("Query", "airlineStats", "SELECT Carrier FROM airlineStats LIMIT 10").Return(seriesResponse(), nil)

	result, err := NewService(querier).Run(context.Background(), Query{
		EditorMode: EditorModeCode,
		RawSQL:     "  SELECT Carrier FROM airlineStats LIMIT 10 ",
	})
	require.NoError(t, err)
	querier.AssertExpectations(t)
	assert.NotEmpty(t, result.RefID)
	assert.Equal(t, "", result.TimeColumn)
}

func TestRunErrors(t *testing.T) {
	querier := &mockQuerier{}
	service := NewService(querier)

	_, err := service.Run(context.Background(), Query{VisualQuery: visualquery.NewVisualQuery()})
	assert.ErrorIs(t, err, ErrNoTable)

	_, err = service.Run(context.Background(), Query{EditorMode: EditorModeCode, RawSQL: "   "})
	assert.ErrorIs(t, err, ErrEmptySQL)

	noRange := timeSeriesQuery()
	noRange.TimeRange = TimeRange{}
	_, err = service.Run(context.Background(), noRange)
	assert.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to expand macros"))

	querier.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestRunSurfacesBrokerFailures(t *testing.T) {
	querier := &mockQuerier{}
	querier.On("Query", "broken", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	querier.On("Query", "failing", mock.Anything).Return(&pinot.BrokerResponse{
		Exceptions: []pinot.Exception{{ErrorCode: 190, Message: "TableDoesNotExistError"}},
	}, nil).Once()
	querier.On("Query", "empty", mock.Anything).Return(&pinot.BrokerResponse{}, nil).Once()
	service := NewService(querier)

	for table, expected := range map[string]string{
		"broken":  "connection refused",
		"failing": "pinot error 190: TableDoesNotExistError",
		"empty":   "broker returned no result table",
	} {
		_, err := service.Run(context.Background(), Query{
			RefID:       table,
			VisualQuery: visualquery.NewVisualQuery().WithTable(table),
		})
		require.Error(t, err, table)
		assert.True(t, strings.Contains(err.Error(), expected), err.Error())
	}
	querier.AssertExpectations(t)
}

func TestPrepareExpandsMacrosInCode(t *testing.T) {
	sql, table, err := NewService(&mockQuerier{}).Prepare(Query{
		EditorMode: EditorModeCode,
		RawSQL:     "SELECT $__timeGroup(ts, '5m') AS t, COUNT(*) FROM \"events\" WHERE $__timeFilter(ts) GROUP BY t",
		TimeRange:  TimeRange{From: from, To: to},
	})
	require.NoError(t, err)
	assert.Equal(t, "events", table)
	assert.Equal(t, fmt.Sprintf(
		"SELECT DATETIMECONVERT(ts, '1:MILLISECONDS:EPOCH', '1:MILLISECONDS:EPOCH', '5:MINUTES') AS t, COUNT(*) FROM \"events\" WHERE ts >= %d AND ts <= %d GROUP BY t",
		from.UnixMilli(), to.UnixMilli(),
	), sql)
}

func TestTableFromSQL(t *testing.T) {
	assert.Equal(t, "airlineStats", TableFromSQL("select * from airlineStats where x = 1"))
	assert.Equal(t, "events_OFFLINE", TableFromSQL("SELECT a FROM `events_OFFLINE`"))
	assert.Equal(t, "", TableFromSQL("SELECT 1"))
}

func TestTablesAndSchema(t *testing.T) {
	querier := &mockQuerier{}
	querier.On("Tables").Return([]string{"a", "b"}, nil)
	querier.On("TableSchema", "a").Return(&pinot.Schema{SchemaName: "a"}, nil)
	querier.On("TableSchema", "missing").Return(nil, errors.New("controller API returned HTTP status code 404"))
	service := NewService(querier)

	tables, err := service.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tables)

	schema, err := service.TableSchema(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", schema.SchemaName)

	_, err = service.TableSchema(context.Background(), "missing")
	assert.True(t, strings.Contains(err.Error(), "404"))
}

func TestCheckHealth(t *testing.T) {
	querier := &mockQuerier{}
	querier.On("Tables").Return([]string{"airlineStats"}, nil)
	querier.On("Query", "airlineStats", "SELECT COUNT(*) FROM airlineStats").Return(seriesResponse(), nil)
	result := NewService(querier).CheckHealth(context.Background())
	assert.Equal(t, HealthResult{Status: HealthOK, Message: "connected, 1 tables found"}, result)

	noController := &mockQuerier{}
	noController.On("Tables").Return(nil, pinot.ErrNoController)
	noController.On("Query", "", "SELECT 1").Return(&pinot.BrokerResponse{
		Exceptions: []pinot.Exception{{ErrorCode: 150, Message: "SQLParsingError"}},
	}, nil)
	result = NewService(noController).CheckHealth(context.Background())
	assert.Equal(t, HealthError, result.Status)
	assert.Equal(t, "broker query failed: pinot error 150: SQLParsingError", result.Message)

	unreachable := &mockQuerier{}
	unreachable.On("Tables").Return(nil, errors.New("dial tcp: connection refused"))
	result = NewService(unreachable).CheckHealth(context.Background())
	assert.Equal(t, HealthError, result.Status)
	unreachable.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}
