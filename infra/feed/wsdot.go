// Package feed implements the WSDOT Traveler API client behind the
// core/feed contract.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pugetops/ferrytrack/core/logger"
	"github.com/pugetops/ferrytrack/core/model"
)

// Config holds the WSDOT API connection parameters.
type Config struct {
	BaseURL        string `json:"base_url"`
	APIAccessCode  string `json:"api_access_code"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies the public endpoint and a conservative timeout.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.wsdot.wa.gov/ferries/api/vessels/rest"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.APIAccessCode == "" {
		return fmt.Errorf("api_access_code is required")
	}
	return nil
}

// WSDOTClient fetches vessel locations and history from the WSDOT Traveler
// API.
type WSDOTClient struct {
	cfg    Config
	client *http.Client
	log    logger.Logger
}

// NewWSDOTClient builds a client from the configuration.
func NewWSDOTClient(cfg Config, log logger.Logger) (*WSDOTClient, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &WSDOTClient{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:    log,
	}, nil
}

// vesselLocationDTO mirrors the API's vessellocations payload.
type vesselLocationDTO struct {
	VesselID                int        `json:"VesselID"`
	VesselName              string     `json:"VesselName"`
	VesselAbbrev            string     `json:"VesselAbbrev"`
	DepartingTerminalID     int        `json:"DepartingTerminalID"`
	DepartingTerminalName   string     `json:"DepartingTerminalName"`
	DepartingTerminalAbbrev string     `json:"DepartingTerminalAbbrev"`
	ArrivingTerminalID      *int       `json:"ArrivingTerminalID"`
	ArrivingTerminalName    *string    `json:"ArrivingTerminalName"`
	ArrivingTerminalAbbrev  *string    `json:"ArrivingTerminalAbbrev"`
	Latitude                float64    `json:"Latitude"`
	Longitude               float64    `json:"Longitude"`
	Speed                   float64    `json:"Speed"`
	Heading                 float64    `json:"Heading"`
	InService               bool       `json:"InService"`
	AtDock                  bool       `json:"AtDock"`
	ScheduledDeparture      dotnetTime `json:"ScheduledDeparture"`
	LeftDock                dotnetTime `json:"LeftDock"`
	Eta                     dotnetTime `json:"Eta"`
	TimeStamp               dotnetTime `json:"TimeStamp"`
}

// vesselHistoryDTO mirrors the API's vesselhistory payload. Terminal names
// are free text.
type vesselHistoryDTO struct {
	Vessel       string     `json:"Vessel"`
	Departing    string     `json:"Departing"`
	Arriving     string     `json:"Arriving"`
	ScheduledDep dotnetTime `json:"ScheduledDepart"`
	ActualDepart dotnetTime `json:"ActualDepart"`
	EstArrival   dotnetTime `json:"EstArrival"`
	Date         dotnetTime `json:"Date"`
}

// Locations returns one snapshot per vessel currently reported by the API.
func (c *WSDOTClient) Locations(ctx context.Context) ([]model.VesselLocation, error) {
	u := fmt.Sprintf("%s/vessellocations?apiaccesscode=%s",
		c.cfg.BaseURL, url.QueryEscape(c.cfg.APIAccessCode))

	var dtos []vesselLocationDTO
	if err := c.getJSON(ctx, u, &dtos); err != nil {
		return nil, fmt.Errorf("vessel locations: %w", err)
	}

	out := make([]model.VesselLocation, 0, len(dtos))
	for _, d := range dtos {
		loc := model.VesselLocation{
			VesselID:                d.VesselID,
			VesselName:              d.VesselName,
			VesselAbbrev:            d.VesselAbbrev,
			DepartingTerminalID:     d.DepartingTerminalID,
			DepartingTerminalName:   d.DepartingTerminalName,
			DepartingTerminalAbbrev: d.DepartingTerminalAbbrev,
			Latitude:                d.Latitude,
			Longitude:               d.Longitude,
			Speed:                   d.Speed,
			Heading:                 d.Heading,
			InService:               d.InService,
			AtDock:                  d.AtDock,
			ScheduledDeparture:      d.ScheduledDeparture.Time,
			LeftDock:                d.LeftDock.Time,
			ETA:                     d.Eta.Time,
			TimeStamp:               d.TimeStamp.Time,
		}
		if d.ArrivingTerminalID != nil {
			loc.ArrivingTerminalID = *d.ArrivingTerminalID
		}
		if d.ArrivingTerminalName != nil {
			loc.ArrivingTerminalName = *d.ArrivingTerminalName
		}
		if d.ArrivingTerminalAbbrev != nil {
			loc.ArrivingTerminalAbbrev = *d.ArrivingTerminalAbbrev
		}
		out = append(out, loc)
	}
	return out, nil
}

// History returns completed voyages for the vessel between the given dates.
func (c *WSDOTClient) History(ctx context.Context, vesselName string, from, to time.Time) ([]model.VesselHistory, error) {
	u := fmt.Sprintf("%s/vesselhistory/%s/%s/%s?apiaccesscode=%s",
		c.cfg.BaseURL,
		url.PathEscape(vesselName),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		url.QueryEscape(c.cfg.APIAccessCode))

	var dtos []vesselHistoryDTO
	if err := c.getJSON(ctx, u, &dtos); err != nil {
		return nil, fmt.Errorf("vessel history %s: %w", vesselName, err)
	}

	out := make([]model.VesselHistory, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, model.VesselHistory{
			VesselName:   d.Vessel,
			Departing:    d.Departing,
			Arriving:     d.Arriving,
			ScheduledDep: d.ScheduledDep.Time,
			ActualDepart: d.ActualDepart.Time,
			EstArrival:   d.EstArrival.Time,
			Date:         d.Date.Time,
		})
	}
	return out, nil
}

func (c *WSDOTClient) getJSON(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
