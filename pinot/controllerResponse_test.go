package pinot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Shape of GET /v2/brokers/tables on a cluster with one broker shared by two tables.
const brokersByTableBody = `{
	"events": [
		{"port": 8000, "host": "broker-0", "instanceName": "Broker_broker-0_8000"},
		{"port": 8000, "host": "broker-1", "instanceName": "Broker_broker-1_8000"}
	],
	"requests": [
		{"port": 8000, "host": "broker-1", "instanceName": "Broker_broker-1_8000"},
		{"port": 8123, "host": "broker-2", "instanceName": "Broker_broker-2_8123"}
	],
	"empty": []
}`

func decodeControllerResponse(t *testing.T) *controllerResponse {
	t.Helper()
	var r controllerResponse
	require.NoError(t, json.Unmarshal([]byte(brokersByTableBody), &r))
	return &r
}

func TestExtractBrokerName(t *testing.T) {
	b := &brokerDto{Port: 8000, Host: "broker-0", InstanceName: "Broker_broker-0_8000"}
	assert.Equal(t, "broker-0:8000", b.extractBrokerName())
}

func TestExtractBrokerListIsDistinctAndSorted(t *testing.T) {
	r := decodeControllerResponse(t)
	assert.Equal(t, []string{"broker-0:8000", "broker-1:8000", "broker-2:8123"}, r.extractBrokerList())

	assert.Empty(t, (&controllerResponse{}).extractBrokerList())
}

func TestExtractTableToBrokerMap(t *testing.T) {
	r := decodeControllerResponse(t)
	assert.Equal(t, map[string][]string{
		"events":   {"broker-0:8000", "broker-1:8000"},
		"requests": {"broker-1:8000", "broker-2:8123"},
		"empty":    {},
	}, r.extractTableToBrokerMap())
}

func TestControllerResponseFeedsSelector(t *testing.T) {
	r := decodeControllerResponse(t)
	selector := &tableAwareBrokerSelector{}
	selector.update(r.extractTableToBrokerMap(), r.extractBrokerList())

	broker, err := selector.selectBroker("requests_REALTIME")
	require.NoError(t, err)
	assert.Contains(t, []string{"broker-1:8000", "broker-2:8123"}, broker)

	_, err = selector.selectBroker("empty")
	assert.EqualError(t, err, "no available broker found for table: empty")
}
