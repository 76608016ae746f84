package datasource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"attendance/internal/models"
	"attendance/pkg/locationstore"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// number accepts a JSON number or a numeric string.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		n.value, n.set = v, true
		return nil
	}
	if err := json.Unmarshal(b, &n.value); err != nil {
		return err
	}
	n.set = true
	return nil
}

// rawRecord covers the label and coordinate spellings found in the
// datasets: name/message/title, latitude/lat and longitude/lng/lon.
type rawRecord struct {
	Name      string `json:"name"`
	Message   string `json:"message"`
	Title     string `json:"title"`
	Address   string `json:"address"`
	Latitude  number `json:"latitude"`
	Lat       number `json:"lat"`
	Longitude number `json:"longitude"`
	Lng       number `json:"lng"`
	Lon       number `json:"lon"`
}

func (r rawRecord) label() string {
	for _, s := range []string{r.Name, r.Message, r.Title} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func firstSet(ns ...number) (float64, bool) {
	for _, n := range ns {
		if n.set {
			return n.value, true
		}
	}
	return 0, false
}

// Decode parses a dataset document. Records that cannot be used are returned
// as InvalidDataErrors and left out of the result; a document that cannot be
// parsed at all yields a ParseError.
func Decode(data []byte, format string) ([]models.Record, []*locationstore.InvalidDataError, error) {
	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, &ParseError{Format: format, Err: err}
		}
		js, err := json.Marshal(doc)
		if err != nil {
			return nil, nil, &ParseError{Format: format, Err: err}
		}
		data = js
	}

	items, err := splitDocument(data)
	if err != nil {
		return nil, nil, &ParseError{Format: FormatJSON, Err: err}
	}

	var records []models.Record
	var invalid []*locationstore.InvalidDataError
	for i, item := range items {
		rec, bad := decodeRecord(i, item)
		if bad != nil {
			invalid = append(invalid, bad)
			continue
		}
		records = append(records, rec)
	}
	return records, invalid, nil
}

// splitDocument accepts either a top-level array or {"locations": [...]}.
func splitDocument(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	var items []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var wrapped struct {
		Locations []json.RawMessage `json:"locations"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Locations == nil {
		return nil, fmt.Errorf("document has no locations array")
	}
	return wrapped.Locations, nil
}

func decodeRecord(i int, item json.RawMessage) (models.Record, *locationstore.InvalidDataError) {
	var raw rawRecord
	if err := json.Unmarshal(item, &raw); err != nil {
		return models.Record{}, &locationstore.InvalidDataError{Index: i, Reason: err.Error()}
	}
	name := raw.label()
	lat, ok := firstSet(raw.Latitude, raw.Lat)
	if !ok {
		return models.Record{}, &locationstore.InvalidDataError{Index: i, Name: name, Reason: "missing latitude"}
	}
	lon, ok := firstSet(raw.Longitude, raw.Lng, raw.Lon)
	if !ok {
		return models.Record{}, &locationstore.InvalidDataError{Index: i, Name: name, Reason: "missing longitude"}
	}

	rec := models.Record{
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Address:   strings.TrimSpace(raw.Address),
	}
	if err := locationstore.Validate(i, rec); err != nil {
		if bad, ok := err.(*locationstore.InvalidDataError); ok {
			return models.Record{}, bad
		}
		return models.Record{}, &locationstore.InvalidDataError{Index: i, Name: name, Reason: err.Error()}
	}
	return rec, nil
}
