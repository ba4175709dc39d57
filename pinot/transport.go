package pinot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	defaultHTTPHeader = map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}
)

type clientTransport interface {
	execute(ctx context.Context, brokerAddress string, req *Request) (*BrokerResponse, error)
}

// HTTPClient is an interface for http.Client
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// jsonHTTPTransport posts SQL to the broker /query/sql endpoint and decodes the JSON response.
type jsonHTTPTransport struct {
	client HTTPClient
	header map[string]string
}

func (t *jsonHTTPTransport) execute(ctx context.Context, brokerAddress string, req *Request) (*BrokerResponse, error) {
	payload, err := json.Marshal(req.body())
	if err != nil {
		return nil, err
	}
	r, err := createHTTPRequest(ctx, brokerQueryURL(brokerAddress), payload, t.header)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(r)
	if err != nil {
		log.Error("Got exceptions during sending request. ", err)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("caught http exception when querying Pinot: %v", resp.Status)
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Unable to read Pinot response. ", err)
		return nil, err
	}
	var brokerResponse BrokerResponse
	if err = decodeJSONWithNumber(bodyBytes, &brokerResponse); err != nil {
		log.Error("Unable to unmarshal json response to a brokerResponse structure. ", err)
		return nil, err
	}
	return &brokerResponse, nil
}

func brokerQueryURL(brokerAddress string) string {
	if strings.HasPrefix(brokerAddress, "http://") || strings.HasPrefix(brokerAddress, "https://") {
		return strings.TrimSuffix(brokerAddress, "/") + "/query/sql"
	}
	return "http://" + brokerAddress + "/query/sql"
}

func createHTTPRequest(ctx context.Context, url string, payload []byte, extraHeader map[string]string) (*http.Request, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		log.Error("Invalid HTTP Request", err)
		return nil, err
	}
	for k, v := range defaultHTTPHeader {
		r.Header.Add(k, v)
	}
	for k, v := range extraHeader {
		r.Header.Add(k, v)
	}
	return r, nil
}
