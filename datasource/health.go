package datasource

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
)

type HealthStatus string

const (
	HealthOK    HealthStatus = "OK"
	HealthError HealthStatus = "ERROR"
)

// HealthResult is the outcome of a connection test.
type HealthResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message"`
}

// CheckHealth lists the tables through the controller and probes a broker with the first of
// them. Without a controller the probe runs without a table.
func (s *Service) CheckHealth(ctx context.Context) HealthResult {
	tables, err := s.client.Tables(ctx)
	switch {
	case errors.Is(err, pinot.ErrNoController):
		tables = nil
	case err != nil:
		log.Errorf("Health check failed to list tables, Error: %v", err)
		return HealthResult{Status: HealthError, Message: fmt.Sprintf("controller unreachable: %v", err)}
	}

	table := ""
	probe := "SELECT 1"
	if len(tables) > 0 {
		table = tables[0]
		probe = fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	}
	resp, err := s.client.Query(ctx, table, probe)
	if err == nil {
		err = resp.Err()
	}
	if err != nil {
		log.Errorf("Health check probe failed, Error: %v", err)
		return HealthResult{Status: HealthError, Message: fmt.Sprintf("broker query failed: %v", err)}
	}

	if tables == nil {
		return HealthResult{Status: HealthOK, Message: "broker reachable; table metadata needs a controller URL"}
	}
	return HealthResult{Status: HealthOK, Message: fmt.Sprintf("connected, %d tables found", len(tables))}
}
