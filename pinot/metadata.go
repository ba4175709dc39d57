package pinot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
)

// ErrNoController is returned by metadata lookups on a client configured without a controller.
var ErrNoController = errors.New("pinot controller address is not configured")

// controllerAPI reads table metadata from the Pinot controller REST API.
type controllerAPI struct {
	client  HTTPClient
	baseURL string
	header  map[string]string
}

type tablesResponse struct {
	Tables []string `json:"tables"`
}

func (c *controllerAPI) get(ctx context.Context, path string, out interface{}) error {
	r, err := newControllerRequest(ctx, c.baseURL+path, c.header)
	if err != nil {
		return err
	}
	bodyBytes, err := doControllerRequest(c.client, r)
	if err != nil {
		return err
	}
	if err = decodeJSONWithNumber(bodyBytes, out); err != nil {
		return fmt.Errorf("an error occurred when decoding controller API response: %w", err)
	}
	return nil
}

func (c *controllerAPI) tables(ctx context.Context) ([]string, error) {
	var resp tablesResponse
	if err := c.get(ctx, "/tables", &resp); err != nil {
		return nil, err
	}
	tables := append([]string{}, resp.Tables...)
	sort.Strings(tables)
	return tables, nil
}

func (c *controllerAPI) schema(ctx context.Context, table string) (*Schema, error) {
	if table == "" {
		return nil, fmt.Errorf("table name cannot be empty")
	}
	var schema Schema
	path := "/tables/" + url.PathEscape(extractTableName(table)) + "/schema"
	if err := c.get(ctx, path, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
