package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/signalsfoundry/station-tracker/model"
)

// DefaultEndpoint serves the live ISS position as JSON. Numeric fields may
// arrive as numbers or quoted strings; model.DecodeGeoPosition accepts both.
const DefaultEndpoint = "https://api.wheretheiss.at/v1/satellites/25544"

// maxBodySize bounds how much of a telemetry response we will read. Real
// payloads are a few hundred bytes.
const maxBodySize = 1 << 20

// HTTPSource fetches the target position from a JSON telemetry endpoint
// with a single GET per cycle.
type HTTPSource struct {
	endpoint string
	client   *http.Client
}

// NewHTTPSource builds a source for the given endpoint. An empty endpoint
// selects DefaultEndpoint; a nil client selects http.DefaultClient. Pass a
// client with an instrumented transport to get request metrics.
func NewHTTPSource(endpoint string, client *http.Client) *HTTPSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{endpoint: endpoint, client: client}
}

func (s *HTTPSource) Name() string { return "http" }

func (s *HTTPSource) Fetch(ctx context.Context) (model.GeoPosition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return model.GeoPosition{}, fmt.Errorf("build telemetry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return model.GeoPosition{}, fmt.Errorf("fetch telemetry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.GeoPosition{}, fmt.Errorf("fetch telemetry: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return model.GeoPosition{}, fmt.Errorf("read telemetry body: %w", err)
	}
	pos, err := model.DecodeGeoPosition(body)
	if err != nil {
		return model.GeoPosition{}, fmt.Errorf("decode telemetry: %w", err)
	}
	return pos, nil
}
