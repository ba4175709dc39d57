package datasource

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"hermannm.dev/wrap"

	"github.com/yesoreyeram/grafana-pinot-datasource-sub000/pinot"
)

// Settings describe how to reach a Pinot cluster.
type Settings struct {
	BrokerURLs          []string      `json:"brokerUrls,omitempty"`
	ControllerURL       string        `json:"controllerUrl,omitempty"`
	ZookeeperServers    []string      `json:"zookeeperServers,omitempty"`
	ZookeeperPathPrefix string        `json:"zookeeperPathPrefix,omitempty"`
	AuthHeader          string        `json:"-"`
	Timeout             time.Duration `json:"timeout,omitempty"`
	QueryTimeoutMs      int           `json:"queryTimeoutMs,omitempty"`
	UseMultistageEngine bool          `json:"useMultistageEngine,omitempty"`
}

// Validate reports every problem with the settings at once.
func (s Settings) Validate() error {
	var errs []error

	if len(s.BrokerURLs) == 0 && s.ControllerURL == "" && len(s.ZookeeperServers) == 0 {
		errs = append(errs, fmt.Errorf("one of broker URLs, controller URL or ZooKeeper servers is required"))
	}
	for _, broker := range s.BrokerURLs {
		if err := validateAddress(broker); err != nil {
			errs = append(errs, wrap.Errorf(err, "invalid broker URL '%s'", broker))
		}
	}
	if s.ControllerURL != "" {
		if err := validateAddress(s.ControllerURL); err != nil {
			errs = append(errs, wrap.Errorf(err, "invalid controller URL '%s'", s.ControllerURL))
		}
	}
	if len(s.ZookeeperServers) > 0 && s.ZookeeperPathPrefix == "" {
		errs = append(errs, fmt.Errorf("ZooKeeper path prefix is required with ZooKeeper servers"))
	}
	if s.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative"))
	}
	if s.QueryTimeoutMs < 0 {
		errs = append(errs, fmt.Errorf("query timeout must not be negative"))
	}

	if len(errs) != 0 {
		return wrap.Errors("invalid datasource settings", errs...)
	}
	return nil
}

// validateAddress accepts host:port or an http(s) URL.
func validateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return fmt.Errorf("address is empty")
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// ClientConfig translates the settings into a Pinot client configuration. Explicit brokers or
// ZooKeeper take over broker discovery; the controller then only serves table metadata.
func (s Settings) ClientConfig() *pinot.ClientConfig {
	config := &pinot.ClientConfig{
		BrokerList:          s.BrokerURLs,
		HTTPTimeout:         s.Timeout,
		UseMultistageEngine: s.UseMultistageEngine,
		QueryTimeoutMs:      s.QueryTimeoutMs,
	}
	if s.AuthHeader != "" {
		config.ExtraHTTPHeader = map[string]string{"Authorization": s.AuthHeader}
	}
	if len(s.ZookeeperServers) > 0 {
		config.ZkConfig = &pinot.ZookeeperConfig{
			ZookeeperPath: s.ZookeeperServers,
			PathPrefix:    s.ZookeeperPathPrefix,
		}
	}
	if s.ControllerURL != "" {
		config.ControllerConfig = &pinot.ControllerConfig{
			ControllerAddress:      s.ControllerURL,
			DisableBrokerDiscovery: len(s.BrokerURLs) > 0 || len(s.ZookeeperServers) > 0,
		}
	}
	return config
}
