package pinot

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Broker bodies as returned by POST /query/sql for the shapes visual queries produce.
const (
	selectionBody = `{"resultTable":{"dataSchema":{"columnDataTypes":["STRING","INT","STRING_ARRAY","BOOLEAN"],"columnNames":["playerName","yearID","positions","active"]},
		"rows":[["David Allan",2004,["P"],false],["Henry Louis",1954,["RF","LF"],true]]},
		"exceptions":[],"numServersQueried":1,"numServersResponded":1,"numSegmentsQueried":1,"numSegmentsProcessed":1,"numSegmentsMatched":1,
		"numConsumingSegmentsQueried":0,"numDocsScanned":2,"numEntriesScannedInFilter":0,"numEntriesScannedPostFilter":8,"numGroupsLimitReached":false,
		"totalDocs":97889,"timeUsedMs":6,"segmentStatistics":[],"traceInfo":{},"minConsumingFreshnessTimeMs":0}`
	timeSeriesBody = `{"resultTable":{"dataSchema":{"columnDataTypes":["LONG","STRING","LONG","DOUBLE"],"columnNames":["ts","service","count(*)","p95"]},
		"rows":[[1700000000000,"checkout",337,1324.5],[1700000060000,"checkout",197,136.0],[1700000060000,"search",48,null]]},
		"exceptions":[],"numServersQueried":2,"numServersResponded":2,"numSegmentsQueried":4,"numSegmentsProcessed":4,"numSegmentsMatched":3,
		"numConsumingSegmentsQueried":1,"numDocsScanned":582,"numEntriesScannedInFilter":1164,"numEntriesScannedPostFilter":1746,"numGroupsLimitReached":true,
		"totalDocs":10240,"timeUsedMs":24,"segmentStatistics":[],"traceInfo":{},"minConsumingFreshnessTimeMs":1700000061000}`
	exceptionBody = `{"resultTable":{"dataSchema":{"columnDataTypes":["DOUBLE"],"columnNames":["max(league)"]},"rows":[]},
		"exceptions":[{"errorCode":200,"message":"QueryExecutionError:\njava.lang.NumberFormatException: For input string: \"UA\"\n\tat java.lang.Double.parseDouble(Double.java:538)"}],
		"numServersQueried":1,"numServersResponded":1,"numSegmentsQueried":1,"numSegmentsProcessed":0,"numSegmentsMatched":0,"numDocsScanned":0,
		"totalDocs":97889,"timeUsedMs":5,"traceInfo":{}}`
)

func decodeBrokerResponse(t *testing.T, body string) *BrokerResponse {
	t.Helper()
	var resp BrokerResponse
	require.NoError(t, decodeJSONWithNumber([]byte(body), &resp))
	return &resp
}

func TestSelectionResponse(t *testing.T) {
	resp := decodeBrokerResponse(t, selectionBody)
	require.NoError(t, resp.Err())
	assert.Equal(t, int64(2), resp.NumDocsScanned)
	assert.Equal(t, int64(8), resp.NumEntriesScannedPostFilter)
	assert.Equal(t, int64(97889), resp.TotalDocs)
	assert.Equal(t, 6, resp.TimeUsedMs)
	assert.Empty(t, resp.TraceInfo)

	table := resp.ResultTable
	require.NotNil(t, table)
	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, 4, table.ColumnCount())
	assert.Equal(t, "positions", table.ColumnName(2))
	assert.Equal(t, "STRING_ARRAY", table.ColumnDataType(2))
	assert.Equal(t, "Henry Louis", table.Get(1, 0))
	assert.Equal(t, []interface{}{"RF", "LF"}, table.Get(1, 2))
	assert.Equal(t, true, table.Get(1, 3))
	assertLong(t, table, 0, 1, 2004)
}

func TestTimeSeriesResponse(t *testing.T) {
	resp := decodeBrokerResponse(t, timeSeriesBody)
	require.NoError(t, resp.Err())
	assert.Equal(t, 2, resp.NumServersResponded)
	assert.Equal(t, 3, resp.NumSegmentsMatched)
	assert.Equal(t, 1, resp.NumConsumingSegmentsQueried)
	assert.True(t, resp.NumGroupsLimitReached)
	assert.Equal(t, int64(1700000061000), resp.MinConsumingFreshnessTimeMs)

	table := resp.ResultTable
	require.NotNil(t, table)
	assert.Equal(t, []string{"ts", "service", "count(*)", "p95"}, table.DataSchema.ColumnNames)
	assert.Equal(t, json.Number("1700000000000"), table.Get(0, 0))
	assertLong(t, table, 0, 0, 1700000000000)
	assertLong(t, table, 1, 2, 197)
	assertDouble(t, table, 0, 3, 1324.5)
	assertDouble(t, table, 0, 2, 337)
	assert.Nil(t, table.Get(2, 3))
}

func TestExceptionResponse(t *testing.T) {
	resp := decodeBrokerResponse(t, exceptionBody)
	require.Len(t, resp.Exceptions, 1)
	assert.Equal(t, 200, resp.Exceptions[0].ErrorCode)
	assert.Equal(t, 0, resp.ResultTable.RowCount())
	assert.Equal(t, "max(league)", resp.ResultTable.ColumnName(0))

	err := resp.Err()
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "pinot error 200: QueryExecutionError:"))
}

func assertLong(t *testing.T, table *ResultTable, row, column int, expected int64) {
	t.Helper()
	v, err := table.Long(row, column)
	assert.Nil(t, err)
	assert.Equal(t, expected, v)
}

func assertDouble(t *testing.T, table *ResultTable, row, column int, expected float64) {
	t.Helper()
	v, err := table.Double(row, column)
	assert.Nil(t, err)
	assert.Equal(t, expected, v)
}

func TestBrokerResponseErr(t *testing.T) {
	assert.Nil(t, (&BrokerResponse{}).Err())

	err := (&BrokerResponse{Exceptions: []Exception{
		{ErrorCode: 150, Message: "SQLParsingError"},
		{ErrorCode: 190, Message: "TableDoesNotExistError"},
	}}).Err()
	assert.EqualError(t, err, "2 pinot errors: pinot error 150: SQLParsingError; pinot error 190: TableDoesNotExistError")
}

func TestResultTableAccessors(t *testing.T) {
	table := ResultTable{
		DataSchema: RespSchema{
			ColumnNames:     []string{"ts", "service", "p99"},
			ColumnDataTypes: []string{"TIMESTAMP", "STRING"},
		},
		Rows: [][]interface{}{
			{json.Number("1700000000000"), "checkout", "-Infinity"},
			{json.Number("1700000060000"), "cart"},
		},
	}

	idx, ok := table.ColumnIndex("service")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = table.ColumnIndex("missing")
	assert.False(t, ok)

	assert.Equal(t, "", table.ColumnDataType(2))
	assert.Nil(t, table.Get(1, 2))

	assertLong(t, &table, 1, 0, 1700000060000)
	v, err := table.Double(0, 2)
	assert.Nil(t, err)
	assert.True(t, math.IsInf(v, -1))

	_, err = table.Long(0, 1)
	assert.NotNil(t, err)
	_, err = table.Double(1, 2)
	assert.EqualError(t, err, "value at row 1 column 2 is <nil>, not a number")
}
