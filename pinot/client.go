package pinot

import (
	"context"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Client to Pinot, normally created through one of the New* factories.
type Client struct {
	transport           clientTransport
	brokerSelector      brokerSelector
	controller          *controllerAPI
	trace               atomic.Bool
	useMultistageEngine atomic.Bool
	timeoutMs           int
}

// Query runs a SQL statement against a broker serving the given table. An empty table lets
// any broker serve the query.
func (c *Client) Query(ctx context.Context, table string, sql string) (*BrokerResponse, error) {
	brokerAddress, err := c.brokerSelector.selectBroker(table)
	if err != nil {
		log.Errorf("Unable to find an available broker for table %s, Error: %v", table, err)
		return nil, err
	}
	brokerResp, err := c.transport.execute(ctx, brokerAddress, &Request{
		sql:                 sql,
		trace:               c.trace.Load(),
		useMultistageEngine: c.useMultistageEngine.Load(),
		timeoutMs:           c.timeoutMs,
	})
	if err != nil {
		log.Errorf("Caught exception to execute SQL query %s, Error: %v", sql, err)
		return nil, err
	}
	return brokerResp, nil
}

// Tables lists the tables known to the controller, sorted by name.
func (c *Client) Tables(ctx context.Context) ([]string, error) {
	if c.controller == nil {
		return nil, ErrNoController
	}
	return c.controller.tables(ctx)
}

// TableSchema fetches the schema of a table. Type suffixes such as _OFFLINE are ignored.
func (c *Client) TableSchema(ctx context.Context, table string) (*Schema, error) {
	if c.controller == nil {
		return nil, ErrNoController
	}
	return c.controller.schema(ctx, table)
}

func (c *Client) OpenTrace() {
	c.trace.Store(true)
}

func (c *Client) CloseTrace() {
	c.trace.Store(false)
}

// UseMultistageEngine toggles the multi-stage engine for subsequent queries.
func (c *Client) UseMultistageEngine(enabled bool) {
	c.useMultistageEngine.Store(enabled)
}

// Close stops background broker discovery.
func (c *Client) Close() {
	c.brokerSelector.close()
}
