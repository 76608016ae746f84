// Package datasource fetches the location dataset once at startup and turns
// it into validated records.
package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Source fetches the raw dataset and tells which format it is in.
type Source interface {
	Fetch(ctx context.Context) (data []byte, format string, err error)
	String() string
}

// FormatOf guesses the format of a dataset from its file name.
func FormatOf(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type FileSource struct {
	Path string
}

func (s FileSource) Fetch(_ context.Context) ([]byte, string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, "", &NetworkError{Source: s.String(), Err: err}
	}
	return data, FormatOf(filepath.Base(s.Path)), nil
}

func (s FileSource) String() string { return s.Path }

type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context) ([]byte, string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, "", &NetworkError{Source: s.URL, Err: err}
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &NetworkError{Source: s.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &NetworkError{Source: s.URL, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &NetworkError{Source: s.URL, Err: err}
	}

	format := FormatOf(resp.Request.URL.Path)
	if ct := resp.Header.Get("Content-Type"); strings.Contains(ct, "yaml") {
		format = FormatYAML
	}
	return data, format, nil
}

func (s HTTPSource) String() string { return s.URL }

// ObjectGetter reads an object from an S3-compatible store.
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

type ObjectSource struct {
	Bucket string
	Key    string
	Getter ObjectGetter
}

func (s ObjectSource) Fetch(ctx context.Context) ([]byte, string, error) {
	data, err := s.Getter.GetObject(ctx, s.Bucket, s.Key)
	if err != nil {
		return nil, "", &NetworkError{Source: s.String(), Err: err}
	}
	return data, FormatOf(s.Key), nil
}

func (s ObjectSource) String() string { return "s3://" + s.Bucket + "/" + s.Key }

// Parse builds a Source from a location string: a file path, an http(s) URL
// or s3://bucket/key. getter is only needed for s3 locations.
func Parse(location string, getter ObjectGetter) (Source, error) {
	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// no scheme, or a windows drive letter
		return FileSource{Path: location}, nil
	}
	switch u.Scheme {
	case "http", "https":
		return HTTPSource{URL: location}, nil
	case "file":
		return FileSource{Path: u.Path}, nil
	case "s3":
		if getter == nil {
			return nil, fmt.Errorf("data source %s needs an object store", location)
		}
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("data source %s: want s3://bucket/key", location)
		}
		return ObjectSource{Bucket: u.Host, Key: key, Getter: getter}, nil
	default:
		return nil, fmt.Errorf("data source %s: unsupported scheme %q", location, u.Scheme)
	}
}
