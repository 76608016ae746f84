package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"attendance/internal/enrich"
	"attendance/internal/models"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Client talks to a Nominatim server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		userAgent:  "attendance-map/1.0",
	}
}

// ReverseResponse is shaped for the /reverse API response.
type ReverseResponse struct {
	PlaceID     int64  `json:"place_id"`
	OsmType     string `json:"osm_type"`
	OsmID       int64  `json:"osm_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		Amenity  string `json:"amenity"`
		Road     string `json:"road"`
		Suburb   string `json:"suburb"`
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		Province string `json:"province"`
		Country  string `json:"country"`
	} `json:"address"`
}

// Locality returns the most specific settlement name of the address.
func (r *ReverseResponse) Locality() string {
	for _, s := range []string{r.Address.City, r.Address.Town, r.Address.Village} {
		if s != "" {
			return s
		}
	}
	return ""
}

// Label is a short human readable address: road, locality, country.
func (r *ReverseResponse) Label() string {
	var parts []string
	for _, s := range []string{r.Address.Road, r.Locality(), r.Address.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return r.DisplayName
	}
	return strings.Join(parts, ", ")
}

// Reverse looks up the address of a coordinate pair.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*ReverseResponse, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("accept-language", "en")

	reqURL := fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var result ReverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, fmt.Errorf("reverse %v,%v: %s", lat, lon, result.Error)
	}
	return &result, nil
}

// AddressStep fills Record.Address for records that do not carry one.
func (c *Client) AddressStep() enrich.Step[models.Record] {
	return func(ctx context.Context, r *models.Record) error {
		if r.Address != "" {
			return nil
		}
		res, err := c.Reverse(ctx, r.Latitude, r.Longitude)
		if err != nil {
			return fmt.Errorf("address for %q: %w", r.Name, err)
		}
		r.Address = res.Label()
		return nil
	}
}
