package pinot

import "time"

// ClientConfig configures how a Client discovers brokers and talks to them.
// Exactly one of BrokerList, ZkConfig or ControllerConfig selects the broker discovery mode;
// when several are set the controller wins, then the static list, then ZooKeeper.
type ClientConfig struct {
	// Additional HTTP headers sent with every broker and controller request, e.g. Authorization
	ExtraHTTPHeader map[string]string
	// Zookeeper Configs
	ZkConfig *ZookeeperConfig
	// Controller Config. Also required for table metadata lookups.
	ControllerConfig *ControllerConfig
	// BrokerList
	BrokerList []string
	// HTTP request timeout for broker and controller requests
	HTTPTimeout time.Duration
	// UseMultistageEngine enables the multi-stage query engine for every query
	UseMultistageEngine bool
	// QueryTimeoutMs is forwarded to the broker as the timeoutMs query option when positive
	QueryTimeoutMs int
}

// ZookeeperConfig describes how to config Pinot Zookeeper connection
type ZookeeperConfig struct {
	PathPrefix        string
	ZookeeperPath     []string
	SessionTimeoutSec int
}

// ControllerConfig describes the controller used for broker discovery and table metadata.
type ControllerConfig struct {
	// Additional HTTP headers to include in the controller API request
	ExtraControllerAPIHeaders map[string]string
	ControllerAddress         string
	// Frequency of broker data refresh in milliseconds via controller API - defaults to 1000ms
	UpdateFreqMs int
	// DisableBrokerDiscovery keeps the controller for metadata only and leaves broker
	// selection to BrokerList or ZkConfig
	DisableBrokerDiscovery bool
}
