// Package geocode resolves Hong Kong building names to coordinates and
// geo addresses via the government Address Lookup Service.
package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kaiyuenlam/UniHaven/internal/app/metrics"
	"github.com/kaiyuenlam/UniHaven/pkg/logger"
)

// DefaultEndpoint is the public Address Lookup Service endpoint.
const DefaultEndpoint = "https://www.als.ogcio.gov.hk/lookup"

// Location is a resolved building position.
type Location struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	GeoAddress string  `json:"geo_address"`
}

// Lookup resolves a building name to a Location.
type Lookup interface {
	Locate(ctx context.Context, building string) (Location, error)
}

// HTTPLookup queries the Address Lookup Service over HTTP.
type HTTPLookup struct {
	client   *http.Client
	endpoint *url.URL
	log      *logger.Logger
}

// NewHTTPLookup constructs a lookup against the given endpoint. An empty
// endpoint falls back to DefaultEndpoint.
func NewHTTPLookup(client *http.Client, endpoint string, log *logger.Logger) (*HTTPLookup, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse lookup endpoint: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if log == nil {
		log = logger.NewDefault("geocode")
	}
	return &HTTPLookup{client: client, endpoint: parsed, log: log}, nil
}

func (l *HTTPLookup) Locate(ctx context.Context, building string) (Location, error) {
	building = strings.TrimSpace(building)
	if building == "" {
		return Location{}, fmt.Errorf("building name required")
	}

	start := time.Now()
	loc, err := l.locate(ctx, building)
	metrics.RecordGeocodeLookup(time.Since(start), err == nil)
	return loc, err
}

func (l *HTTPLookup) locate(ctx context.Context, building string) (Location, error) {

	requestURL := *l.endpoint
	q := requestURL.Query()
	q.Set("q", building)
	q.Set("n", "1")
	requestURL.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("build lookup request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return Location{}, fmt.Errorf("lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("lookup status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("read lookup response: %w", err)
	}
	return parseResponse(body, building)
}

func parseResponse(body []byte, building string) (Location, error) {
	premises := gjson.GetBytes(body, "SuggestedAddress.0.Address.PremisesAddress")
	if !premises.Exists() {
		return Location{}, fmt.Errorf("no address found for %q", building)
	}

	geo := premises.Get("GeospatialInformation")
	loc := Location{
		Latitude:   geo.Get("Latitude").Float(),
		Longitude:  geo.Get("Longitude").Float(),
		GeoAddress: premises.Get("GeoAddress").String(),
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return Location{}, fmt.Errorf("no geospatial information for %q", building)
	}
	return loc, nil
}
