package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/chauffio/chauffio/pkg/config"
	"github.com/chauffio/chauffio/pkg/geo"
	"github.com/chauffio/chauffio/pkg/httpclient"
	"github.com/chauffio/chauffio/pkg/resilience"
)

// GoogleProvider calls the Google Routes API computeRoutes endpoint. Calls
// run through a circuit breaker so a degraded provider stops being asked.
type GoogleProvider struct {
	client  *httpclient.Client
	apiKey  string
	breaker *resilience.CircuitBreaker
}

// NewGoogleProvider builds the provider from routing configuration.
func NewGoogleProvider(cfg config.RoutingConfig) *GoogleProvider {
	return &GoogleProvider{
		client: httpclient.NewClient(cfg.BaseURL, cfg.RoutingTimeout(), httpclient.WithDefaultRetry()),
		apiKey: cfg.APIKey,
		breaker: resilience.NewCircuitBreaker(resilience.Settings{
			Name:             "google-routes",
			FailureThreshold: 5,
			Timeout:          cfg.RoutingTimeout() * 4,
		}, nil),
	}
}

type computeRoutesRequest struct {
	Origin            waypoint `json:"origin"`
	Destination       waypoint `json:"destination"`
	TravelMode        string   `json:"travelMode"`
	ExtraComputations []string `json:"extraComputations,omitempty"`
}

type waypoint struct {
	Location struct {
		LatLng struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"latLng"`
	} `json:"location"`
}

type computeRoutesResponse struct {
	Routes []struct {
		DistanceMeters int    `json:"distanceMeters"`
		Duration       string `json:"duration"`
		Polyline       struct {
			EncodedPolyline string `json:"encodedPolyline"`
		} `json:"polyline"`
		TravelAdvisory struct {
			TollInfo struct {
				EstimatedPrice []struct {
					Units string `json:"units"`
					Nanos int64  `json:"nanos"`
				} `json:"estimatedPrice"`
			} `json:"tollInfo"`
		} `json:"travelAdvisory"`
	} `json:"routes"`
}

func newWaypoint(p geo.Point) waypoint {
	var w waypoint
	w.Location.LatLng.Latitude = p.Lat
	w.Location.LatLng.Longitude = p.Lng
	return w
}

// Route implements Provider.
func (g *GoogleProvider) Route(ctx context.Context, from, to geo.Point) (*Route, error) {
	result, err := g.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return g.computeRoute(ctx, from, to)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Route), nil
}

func (g *GoogleProvider) computeRoute(ctx context.Context, from, to geo.Point) (*Route, error) {
	reqBody := computeRoutesRequest{
		Origin:            newWaypoint(from),
		Destination:       newWaypoint(to),
		TravelMode:        "DRIVE",
		ExtraComputations: []string{"TOLLS"},
	}

	headers := map[string]string{
		"X-Goog-Api-Key":   g.apiKey,
		"X-Goog-FieldMask": "routes.distanceMeters,routes.duration,routes.polyline.encodedPolyline,routes.travelAdvisory.tollInfo",
	}

	data, err := g.client.Post(ctx, "/directions/v2:computeRoutes", reqBody, headers)
	if err != nil {
		return nil, fmt.Errorf("routes api call failed: %w", err)
	}

	var resp computeRoutesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("routes api response decode failed: %w", err)
	}
	if len(resp.Routes) == 0 {
		return nil, fmt.Errorf("routes api returned no route")
	}

	r := resp.Routes[0]
	route := &Route{
		Polyline:        r.Polyline.EncodedPolyline,
		DistanceKm:      float64(r.DistanceMeters) / 1000,
		DurationMinutes: parseDurationSeconds(r.Duration) / 60,
		From:            from,
		To:              to,
	}
	if toll := parseTollPrice(r.TravelAdvisory.TollInfo.EstimatedPrice); toll != nil {
		route.TollCost = toll
	}
	return route, nil
}

// parseDurationSeconds parses the API's "1234s" duration format.
func parseDurationSeconds(s string) float64 {
	s = strings.TrimSuffix(s, "s")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseTollPrice(prices []struct {
	Units string `json:"units"`
	Nanos int64  `json:"nanos"`
}) *float64 {
	if len(prices) == 0 {
		return nil
	}
	units, err := strconv.ParseFloat(prices[0].Units, 64)
	if err != nil {
		return nil
	}
	total := units + float64(prices[0].Nanos)/1e9
	return &total
}
