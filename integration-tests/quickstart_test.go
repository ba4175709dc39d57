package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/datasource"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/visualquery"
)

// getEnv retrieves the value of the environment variable named by the key.
// It returns the value, which will be the default value if the variable is not present.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

var (
	zookeeperPort  = getEnv("ZOOKEEPER_PORT", "2123")
	controllerPort = getEnv("CONTROLLER_PORT", "9000")
	brokerPort     = getEnv("BROKER_PORT", "8000")
)

const baseballStatsRows = 97889

// requireCluster skips unless PINOT_INTEGRATION is set. The tests expect a local batch
// quickstart cluster with the baseballStats table.
func requireCluster(t *testing.T) {
	t.Helper()
	if os.Getenv("PINOT_INTEGRATION") == "" {
		t.Skip("set PINOT_INTEGRATION=1 to run against a local Pinot quickstart cluster")
	}
}

func getCustomHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
}

type namedClient struct {
	name   string
	client *pinot.Client
}

func getPinotClients(t *testing.T, useMultistageEngine bool) []namedClient {
	t.Helper()
	fromZookeeper, err := pinot.NewFromZookeeper([]string{"localhost:" + zookeeperPort}, "", "QuickStartCluster")
	require.NoError(t, err)
	fromController, err := pinot.NewFromController("localhost:" + controllerPort)
	require.NoError(t, err)
	fromBroker, err := pinot.NewFromBrokerList([]string{"localhost:" + brokerPort})
	require.NoError(t, err)
	fromConfig, err := pinot.NewWithConfigAndClient(&pinot.ClientConfig{
		BrokerList:  []string{"localhost:" + brokerPort},
		HTTPTimeout: 1500 * time.Millisecond,
		ControllerConfig: &pinot.ControllerConfig{
			ControllerAddress:      "localhost:" + controllerPort,
			DisableBrokerDiscovery: true,
		},
	}, getCustomHTTPClient())
	require.NoError(t, err)

	clients := []namedClient{
		{"zookeeper", fromZookeeper},
		{"controller", fromController},
		{"broker", fromBroker},
		{"config", fromConfig},
	}
	for _, c := range clients {
		c.client.UseMultistageEngine(useMultistageEngine)
		t.Cleanup(c.client.Close)
	}
	return clients
}

// TestSendingQueriesToPinot tests sending queries to Pinot using different Pinot clients.
// You can change the ports by setting the environment variables ZOOKEEPER_PORT, CONTROLLER_PORT, and BROKER_PORT.
func TestSendingQueriesToPinot(t *testing.T) {
	requireCluster(t)
	for _, multistage := range []bool{false, true} {
		for _, c := range getPinotClients(t, multistage) {
			t.Run(fmt.Sprintf("%s_multistage_%t", c.name, multistage), func(t *testing.T) {
				resp, err := c.client.Query(context.Background(), "baseballStats", "select count(*) as cnt from baseballStats limit 1")
				require.NoError(t, err)
				require.NoError(t, resp.Err())
				count, err := resp.ResultTable.Long(0, 0)
				require.NoError(t, err)
				assert.Equal(t, int64(baseballStatsRows), count)
			})
		}
	}
}

func TestVisualQueriesAgainstQuickstart(t *testing.T) {
	requireCluster(t)
	for _, c := range getPinotClients(t, false) {
		service := datasource.NewService(c.client)

		t.Run(c.name+"_team_home_runs", func(t *testing.T) {
			q := visualquery.NewVisualQuery().WithTable("baseballStats").WithLimit(5)
			q.Columns = []string{"playerName"}
			q.Filters = []visualquery.FilterCondition{
				{Column: "teamID", Operator: visualquery.OperatorEqual, Value: "NYA"},
				{Column: "yearID", Operator: visualquery.OperatorGreaterOrEqual, Value: "2000"},
			}
			q.Aggregations = []visualquery.AggregationConfig{{Func: "SUM", Column: "homeRuns", Alias: "totalHomeRuns"}}
			q.GroupBy = []string{"playerName"}
			q.OrderBy = []visualquery.OrderByConfig{{Column: "totalHomeRuns", Direction: visualquery.DirectionDescending}}

			result, err := service.Run(context.Background(), datasource.Query{VisualQuery: q})
			require.NoError(t, err)
			rows := result.Rows()
			assert.LessOrEqual(t, len(rows.Rows), 5)
			require.Len(t, rows.Columns, 2)
			assert.Equal(t, "playerName", rows.Columns[0].Name)
			assert.Equal(t, "totalHomeRuns", rows.Columns[1].Name)
			log.Printf("%s: %d rows for NYA since 2000", c.name, len(rows.Rows))
		})

		t.Run(c.name+"_in_filter", func(t *testing.T) {
			q := visualquery.NewVisualQuery().WithTable("baseballStats")
			q.Filters = []visualquery.FilterCondition{
				{Column: "teamID", Operator: visualquery.OperatorIn, Value: "'NYA', 'BOS', 'LAA'"},
			}
			q.Aggregations = []visualquery.AggregationConfig{{Func: "COUNT", Column: "*", Alias: "cnt"}}

			result, err := service.Run(context.Background(), datasource.Query{VisualQuery: q})
			require.NoError(t, err)
			count, err := result.Response.ResultTable.Long(0, 0)
			require.NoError(t, err)
			assert.Positive(t, count)
			assert.Less(t, count, int64(baseballStatsRows))
		})

		t.Run(c.name+"_arrow_record", func(t *testing.T) {
			q := visualquery.NewVisualQuery().WithTable("baseballStats").WithLimit(10)
			q.Columns = []string{"playerName", "yearID", "battingAvg"}

			result, err := service.Run(context.Background(), datasource.Query{VisualQuery: q})
			require.NoError(t, err)
			rec, err := result.Record(nil)
			require.NoError(t, err)
			defer rec.Release()
			assert.Equal(t, int64(3), rec.NumCols())
			assert.Equal(t, int64(10), rec.NumRows())
		})
	}
}

func TestMetadataAgainstQuickstart(t *testing.T) {
	requireCluster(t)
	client, err := pinot.NewFromController("localhost:" + controllerPort)
	require.NoError(t, err)
	defer client.Close()
	service := datasource.NewService(client)

	tables, err := service.Tables(context.Background())
	require.NoError(t, err)
	assert.Contains(t, tables, "baseballStats")

	schema, err := service.TableSchema(context.Background(), "baseballStats_OFFLINE")
	require.NoError(t, err)
	assert.NotEmpty(t, schema.Columns())

	health := service.CheckHealth(context.Background())
	assert.Equal(t, datasource.HealthOK, health.Status, health.Message)
}
