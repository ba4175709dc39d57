// Package datasource ties visual query compilation, macro expansion and Pinot execution together.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/apache/arrow/go/v15/arrow"
	"github.com/apache/arrow/go/v15/arrow/memory"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"hermannm.dev/wrap"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/frames"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/macros"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/visualquery"
)

var (
	ErrNoTable  = errors.New("no table selected")
	ErrEmptySQL = errors.New("query is empty")
)

var fromTable = regexp.MustCompile("(?i)\\bFROM\\s+[\"`]?([A-Za-z_][\\w.]*)")

// Querier is the part of the Pinot client the service depends on.
type Querier interface {
	Query(ctx context.Context, table string, sql string) (*pinot.BrokerResponse, error)
	Tables(ctx context.Context) ([]string, error)
	TableSchema(ctx context.Context, table string) (*pinot.Schema, error)
}

// Service compiles and runs queries against one Pinot cluster.
type Service struct {
	client Querier
	close  func()
}

// NewService wraps an existing client.
func NewService(client Querier) *Service {
	return &Service{client: client, close: func() {}}
}

// Connect validates the settings and opens a Pinot client for them.
func Connect(settings Settings) (*Service, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	client, err := pinot.NewWithConfig(settings.ClientConfig())
	if err != nil {
		return nil, wrap.Error(err, "failed to connect to Pinot")
	}
	return &Service{client: client, close: client.Close}, nil
}

// Close releases the underlying client.
func (s *Service) Close() {
	s.close()
}

// Compile renders the SQL preview of a visual query. Macros are left in place.
func (s *Service) Compile(q visualquery.VisualQuery) string {
	return visualquery.Compile(q)
}

// Result is the outcome of one executed query.
type Result struct {
	RefID      string                `json:"refId"`
	SQL        string                `json:"sql"`
	Table      string                `json:"table,omitempty"`
	Format     Format                `json:"format"`
	TimeColumn string                `json:"timeColumn,omitempty"`
	Response   *pinot.BrokerResponse `json:"-"`
}

// Record converts the result table into an Arrow record. The caller releases it.
func (r *Result) Record(mem memory.Allocator) (arrow.Record, error) {
	opts := frames.Options{}
	if r.Format == FormatTimeSeries {
		opts.TimeColumn = r.TimeColumn
	}
	return frames.ToRecord(mem, r.Response.ResultTable, opts)
}

// Rows returns the JSON row view of the result table.
func (r *Result) Rows() frames.RowSet {
	return frames.Rows(r.Response.ResultTable)
}

// Prepare produces the SQL that would be sent to Pinot for q, with macros expanded, and the
// table used to pick a broker.
func (s *Service) Prepare(q Query) (sql string, table string, err error) {
	switch q.EditorMode {
	case EditorModeCode:
		sql = strings.TrimSpace(q.RawSQL)
		if sql == "" {
			return "", "", ErrEmptySQL
		}
		table = TableFromSQL(sql)
	default:
		sql = visualquery.Compile(q.VisualQuery)
		if sql == "" {
			return "", "", ErrNoTable
		}
		table = q.VisualQuery.Table
	}

	sql, err = macros.Expand(sql, q.macroTimeRange())
	if err != nil {
		return "", "", wrap.Error(err, "failed to expand macros")
	}
	return sql, table, nil
}

// Run prepares and executes q. Broker exceptions are returned as errors.
func (s *Service) Run(ctx context.Context, q Query) (*Result, error) {
	if q.RefID == "" {
		q.RefID = uuid.NewString()
	}
	sql, table, err := s.Prepare(q)
	if err != nil {
		return nil, wrap.Errorf(err, "query %s", q.RefID)
	}

	resp, err := s.client.Query(ctx, table, sql)
	if err != nil {
		return nil, wrap.Errorf(err, "query %s failed", q.RefID)
	}
	if err := resp.Err(); err != nil {
		return nil, wrap.Errorf(err, "query %s failed", q.RefID)
	}
	if resp.ResultTable == nil {
		return nil, fmt.Errorf("query %s: broker returned no result table", q.RefID)
	}

	log.WithFields(log.Fields{
		"refId":      q.RefID,
		"table":      table,
		"rows":       resp.ResultTable.RowCount(),
		"timeUsedMs": resp.TimeUsedMs,
	}).Debug("query executed")

	return &Result{
		RefID:      q.RefID,
		SQL:        sql,
		Table:      table,
		Format:     q.Format,
		TimeColumn: q.timeColumn(),
		Response:   resp,
	}, nil
}

// Tables lists the tables offered in the table picker.
func (s *Service) Tables(ctx context.Context) ([]string, error) {
	tables, err := s.client.Tables(ctx)
	if err != nil {
		return nil, wrap.Error(err, "failed to list tables")
	}
	return tables, nil
}

// TableSchema fetches the column metadata of a table.
func (s *Service) TableSchema(ctx context.Context, table string) (*pinot.Schema, error) {
	schema, err := s.client.TableSchema(ctx, table)
	if err != nil {
		return nil, wrap.Errorf(err, "failed to fetch schema of table '%s'", table)
	}
	return schema, nil
}

// TableFromSQL returns the first table named after FROM, or "" when there is none.
func TableFromSQL(sql string) string {
	match := fromTable.FindStringSubmatch(sql)
	if match == nil {
		return ""
	}
	return match[1]
}
