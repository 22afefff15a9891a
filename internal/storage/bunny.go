// Package storage wraps the BunnyCDN storage HTTP API. Uploaded
// objects become publicly reachable through the CDN hostname; the
// storage API itself is a simple authenticated PUT/DELETE/GET per
// object path.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrBadCredentials maps Bunny's 401: the AccessKey is wrong.
var ErrBadCredentials = errors.New("invalid storage access key")

// ErrZoneNotFound maps Bunny's 404 on upload: the storage zone name
// does not exist.
var ErrZoneNotFound = errors.New("storage zone not found")

// BunnyClient talks to one BunnyCDN storage zone.
type BunnyClient struct {
	Zone    string
	CDNHost string
	BaseURL string // https://storage.bunnycdn.com/<zone>, overridable for tests

	apiKey string
	httpc  *http.Client
}

func NewBunnyClient(zone, apiKey, cdnHost string) *BunnyClient {
	return &BunnyClient{
		Zone:    zone,
		CDNHost: cdnHost,
		BaseURL: "https://storage.bunnycdn.com/" + zone,
		apiKey:  apiKey,
		// Uploads can be large; rely on the request context for
		// cancellation instead of a short client timeout.
		httpc: &http.Client{Timeout: 10 * time.Minute},
	}
}

// Upload streams an object to the storage zone and returns its public
// CDN URL. Failures are categorized so operators can tell a bad key
// from a misnamed zone.
func (c *BunnyClient) Upload(ctx context.Context, path string, body io.Reader, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.BaseURL+"/"+path, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("AccessKey", c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage upload: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return c.CDNURL(path), nil
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrBadCredentials
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrZoneNotFound
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage upload: status %d: %s", resp.StatusCode, detail)
	}
}

// Delete removes an object. Callers treat failures as best-effort;
// the error is returned for logging only.
func (c *BunnyClient) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/"+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("AccessKey", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("storage delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("storage delete: status %d", resp.StatusCode)
	}
	return nil
}

// Object is one entry in a storage-zone directory listing.
type Object struct {
	ObjectName  string `json:"ObjectName"`
	Length      int64  `json:"Length"`
	IsDirectory bool   `json:"IsDirectory"`
}

// List returns the objects under a directory path; used by the
// connectivity check endpoint.
func (c *BunnyClient) List(ctx context.Context, dir string) ([]Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+dir, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("AccessKey", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage list: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrBadCredentials
	case http.StatusNotFound:
		return nil, ErrZoneNotFound
	default:
		return nil, fmt.Errorf("storage list: status %d", resp.StatusCode)
	}

	var objects []Object
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		return nil, fmt.Errorf("storage list: %w", err)
	}
	return objects, nil
}

// CDNURL builds the public URL for an object path.
func (c *BunnyClient) CDNURL(path string) string {
	return "https://" + c.CDNHost + "/" + path
}
