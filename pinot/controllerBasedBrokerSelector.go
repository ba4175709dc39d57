package pinot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	controllerAPIEndpoint = "/v2/brokers/tables?state=ONLINE"
	defaultUpdateFreqMs   = 1000
)

var (
	controllerDefaultHTTPHeader = map[string]string{
		"Accept": "application/json",
	}
)

type controllerBasedSelector struct {
	client              HTTPClient
	config              *ControllerConfig
	header              map[string]string
	controllerAPIReqURL string
	done                chan struct{}
	closeOnce           sync.Once
	tableAwareBrokerSelector
}

func (s *controllerBasedSelector) init() error {
	if s.config.UpdateFreqMs == 0 {
		s.config.UpdateFreqMs = defaultUpdateFreqMs
	}
	baseURL, err := controllerBaseURL(s.config.ControllerAddress)
	if err != nil {
		return fmt.Errorf("an error occurred when parsing controller address: %w", err)
	}
	s.controllerAPIReqURL = baseURL + controllerAPIEndpoint

	if err = s.updateBrokerData(context.Background()); err != nil {
		return fmt.Errorf("an error occurred when fetching broker data from controller API: %w", err)
	}
	s.done = make(chan struct{})
	go s.refreshLoop(time.Duration(s.config.UpdateFreqMs) * time.Millisecond)
	return nil
}

func (s *controllerBasedSelector) refreshLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.updateBrokerData(context.Background()); err != nil {
				log.Errorf("Caught exception when updating broker data, Error: %v", err)
			}
		}
	}
}

func (s *controllerBasedSelector) close() {
	s.closeOnce.Do(func() {
		if s.done != nil {
			close(s.done)
		}
	})
}

// controllerBaseURL normalises a controller address to scheme://host:port without a trailing
// slash. Addresses without a scheme default to http.
func controllerBaseURL(controllerAddress string) (string, error) {
	tokenized := strings.Split(controllerAddress, "://")
	addressWithScheme := controllerAddress
	if len(tokenized) > 1 {
		scheme := tokenized[0]
		if scheme != "https" && scheme != "http" {
			return "", fmt.Errorf(
				"unsupported controller URL scheme: %s, only http (default) and https are allowed",
				scheme,
			)
		}
	} else {
		addressWithScheme = "http://" + controllerAddress
	}
	return strings.TrimSuffix(addressWithScheme, "/"), nil
}

func (s *controllerBasedSelector) createControllerRequest(ctx context.Context) (*http.Request, error) {
	return newControllerRequest(ctx, s.controllerAPIReqURL, s.header, s.config.ExtraControllerAPIHeaders)
}

func newControllerRequest(ctx context.Context, url string, headers ...map[string]string) (*http.Request, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return r, fmt.Errorf("caught exception when creating controller API request: %w", err)
	}
	for k, v := range controllerDefaultHTTPHeader {
		r.Header.Add(k, v)
	}
	for _, header := range headers {
		for k, v := range header {
			r.Header.Add(k, v)
		}
	}
	return r, nil
}

func (s *controllerBasedSelector) updateBrokerData(ctx context.Context) error {
	r, err := s.createControllerRequest(ctx)
	if err != nil {
		return err
	}
	bodyBytes, err := doControllerRequest(s.client, r)
	if err != nil {
		return err
	}
	var c controllerResponse
	if err = decodeJSONWithNumber(bodyBytes, &c); err != nil {
		return fmt.Errorf("an error occurred when decoding controller API response: %w", err)
	}
	s.update(c.extractTableToBrokerMap(), c.extractBrokerList())
	return nil
}

func doControllerRequest(client HTTPClient, r *http.Request) ([]byte, error) {
	resp, err := client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("got exceptions while sending controller API request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error("Unable to close response body. ", err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("controller API returned HTTP status code %v", resp.StatusCode)
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("an error occurred when reading controller API response: %w", err)
	}
	return bodyBytes, nil
}
