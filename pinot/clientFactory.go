package pinot

import (
	"fmt"
	"net/http"
	"strings"
)

// NewFromBrokerList creates a Pinot client with a pre configured broker list.
func NewFromBrokerList(brokerList []string) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		BrokerList: brokerList,
	})
}

// NewFromZookeeper creates a Pinot client that follows the broker external view in ZooKeeper.
func NewFromZookeeper(zkPath []string, zkPathPrefix string, pinotCluster string) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		ZkConfig: &ZookeeperConfig{
			ZookeeperPath:     zkPath,
			PathPrefix:        strings.Join([]string{zkPathPrefix, pinotCluster}, "/"),
			SessionTimeoutSec: defaultZkSessionTimeoutSec,
		},
	})
}

// NewFromController creates a Pinot client that periodically fetches available brokers via the
// controller API. The controller also serves table metadata.
func NewFromController(controllerAddress string) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		ControllerConfig: &ControllerConfig{
			ControllerAddress: controllerAddress,
		},
	})
}

// NewWithConfig creates a Pinot client backed by its own http.Client.
func NewWithConfig(config *ClientConfig) (*Client, error) {
	return NewWithConfigAndClient(config, &http.Client{Timeout: config.HTTPTimeout})
}

// NewWithConfigAndClient creates a Pinot client that sends every broker and controller
// request through httpClient.
func NewWithConfigAndClient(config *ClientConfig, httpClient HTTPClient) (*Client, error) {
	client := &Client{
		transport: &jsonHTTPTransport{
			client: httpClient,
			header: config.ExtraHTTPHeader,
		},
		timeoutMs: config.QueryTimeoutMs,
	}
	client.useMultistageEngine.Store(config.UseMultistageEngine)

	if config.ControllerConfig != nil {
		baseURL, err := controllerBaseURL(config.ControllerConfig.ControllerAddress)
		if err != nil {
			return nil, fmt.Errorf("an error occurred when parsing controller address: %w", err)
		}
		client.controller = &controllerAPI{
			client:  httpClient,
			baseURL: baseURL,
			header:  mergeHeaders(config.ExtraHTTPHeader, config.ControllerConfig.ExtraControllerAPIHeaders),
		}
	}

	switch {
	case config.ControllerConfig != nil && !config.ControllerConfig.DisableBrokerDiscovery:
		client.brokerSelector = &controllerBasedSelector{
			config: config.ControllerConfig,
			client: httpClient,
			header: config.ExtraHTTPHeader,
		}
	case len(config.BrokerList) > 0:
		client.brokerSelector = &simpleBrokerSelector{
			brokerList: config.BrokerList,
		}
	case config.ZkConfig != nil:
		client.brokerSelector = &dynamicBrokerSelector{
			zkConfig: config.ZkConfig,
		}
	default:
		return nil, fmt.Errorf(
			"please specify at least one of Pinot Zookeeper, Pinot Broker or Pinot Controller to connect",
		)
	}

	if err := client.brokerSelector.init(); err != nil {
		client.brokerSelector.close()
		return nil, err
	}
	return client, nil
}

func mergeHeaders(headers ...map[string]string) map[string]string {
	merged := map[string]string{}
	for _, header := range headers {
		for k, v := range header {
			merged[k] = v
		}
	}
	return merged
}
