package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/datasource"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/frames"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/visualquery"
)

type compileResponse struct {
	SQL string `json:"sql"`
}

type queryResponse struct {
	*datasource.Result
	frames.RowSet
	Stats queryStats `json:"stats"`
}

type queryStats struct {
	TimeUsedMs     int   `json:"timeUsedMs"`
	NumDocsScanned int64 `json:"numDocsScanned"`
	TotalDocs      int64 `json:"totalDocs"`
}

type tablesResponse struct {
	Tables []string `json:"tables"`
}

type schemaResponse struct {
	Table       string         `json:"table"`
	Columns     []pinot.Column `json:"columns"`
	TimeColumns []string       `json:"timeColumns"`
}

func (api *API) Health(res http.ResponseWriter, req *http.Request) {
	result := api.ds.CheckHealth(req.Context())
	status := http.StatusOK
	if result.Status != datasource.HealthOK {
		status = http.StatusServiceUnavailable
	}
	sendJSONStatus(result, status, res)
}

// Compile returns the SQL preview of a visual query. An empty table yields an empty string.
func (api *API) Compile(res http.ResponseWriter, req *http.Request) {
	var q visualquery.VisualQuery
	if err := decodeBody(req, res, &q); err != nil {
		sendError("failed to parse visual query from request", http.StatusBadRequest, err, res)
		return
	}
	sendJSON(compileResponse{SQL: api.ds.Compile(q)}, res)
}

// Query executes a query envelope. Clients asking for an Arrow stream get the result table as
// a single IPC record batch.
func (api *API) Query(res http.ResponseWriter, req *http.Request) {
	var q datasource.Query
	if err := decodeBody(req, res, &q); err != nil {
		sendError("failed to parse query from request", http.StatusBadRequest, err, res)
		return
	}

	result, err := api.ds.Run(req.Context(), q)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, datasource.ErrNoTable) || errors.Is(err, datasource.ErrEmptySQL) {
			status = http.StatusBadRequest
		}
		sendError("", status, err, res)
		return
	}

	if strings.Contains(req.Header.Get("Accept"), frames.ContentType) {
		api.sendArrow(result, res)
		return
	}
	sendJSON(queryResponse{
		Result: result,
		RowSet: result.Rows(),
		Stats: queryStats{
			TimeUsedMs:     result.Response.TimeUsedMs,
			NumDocsScanned: result.Response.NumDocsScanned,
			TotalDocs:      result.Response.TotalDocs,
		},
	}, res)
}

func (api *API) sendArrow(result *datasource.Result, res http.ResponseWriter) {
	rec, err := result.Record(nil)
	if err != nil {
		sendError("failed to convert result to arrow", http.StatusInternalServerError, err, res)
		return
	}
	defer rec.Release()

	res.Header().Set("Content-Type", frames.ContentType)
	res.Header().Set("X-Query-Ref-Id", result.RefID)
	res.WriteHeader(http.StatusOK)
	if err := frames.WriteIPC(res, rec, api.config.ArrowCompression); err != nil {
		log.Error(wrapMessage("failed to stream arrow result", err))
	}
}

func (api *API) Tables(res http.ResponseWriter, req *http.Request) {
	tables, err := api.ds.Tables(req.Context())
	if err != nil {
		sendMetadataError(err, res)
		return
	}
	sendJSON(tablesResponse{Tables: tables}, res)
}

func (api *API) TableSchema(res http.ResponseWriter, req *http.Request) {
	table := req.PathValue("table")
	schema, err := api.ds.TableSchema(req.Context(), table)
	if err != nil {
		sendMetadataError(err, res)
		return
	}
	sendJSON(schemaResponse{
		Table:       table,
		Columns:     schema.Columns(),
		TimeColumns: schema.TimeColumns(),
	}, res)
}

// DefaultVisualQuery returns the starting value of the editor, optionally for a table.
func (api *API) DefaultVisualQuery(res http.ResponseWriter, req *http.Request) {
	q := visualquery.NewVisualQuery()
	if table := req.URL.Query().Get("table"); table != "" {
		q = q.WithTable(table)
	}
	sendJSON(q, res)
}

func (api *API) Operators(res http.ResponseWriter, req *http.Request) {
	type operator struct {
		Value      visualquery.Operator `json:"value"`
		NeedsValue bool                 `json:"needsValue"`
	}
	operators := []operator{}
	for _, op := range visualquery.Operators() {
		operators = append(operators, operator{Value: op, NeedsValue: op.NeedsValue()})
	}
	sendJSON(operators, res)
}

func (api *API) Functions(res http.ResponseWriter, req *http.Request) {
	sendJSON(visualquery.AggregateFunctions(), res)
}

func decodeBody(req *http.Request, res http.ResponseWriter, v any) error {
	return json.NewDecoder(http.MaxBytesReader(res, req.Body, maxRequestBytes)).Decode(v)
}

func sendMetadataError(err error, res http.ResponseWriter) {
	status := http.StatusBadGateway
	if errors.Is(err, pinot.ErrNoController) {
		status = http.StatusNotImplemented
	}
	sendError("", status, err, res)
}
