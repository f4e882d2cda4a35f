// Package cloudflare reads region statuses from the Cloudflare status page API.
package cloudflare

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/macrat/cfmon/internal/cferr"
	"github.com/macrat/cfmon/internal/region"
)

var (
	UserAgent = "cfmon"
)

const (
	// ErrorBodyLimit is the maximum bytes of the response body to include in an error message.
	ErrorBodyLimit = 1024
)

// Component is a component of the Cloudflare status page.
// A data-center is a component, and a geographic area like "Africa" is a group component.
type Component struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    region.Status `json:"status"`
	Group     bool          `json:"group"`
	GroupID   string        `json:"group_id"`
	UpdatedAt string        `json:"updated_at"`
}

// Code returns the region code of the component.
func (c Component) Code() (string, bool) {
	if c.Group {
		return "", false
	}
	return region.ParseCode(c.Name)
}

// LastChanged returns UpdatedAt as time.Time, or nil if it is not a valid time.
func (c Component) LastChanged() *time.Time {
	t, err := time.Parse(time.RFC3339Nano, c.UpdatedAt)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

type componentsResponse struct {
	Components []Component `json:"components"`
}

// Client is the client of the Cloudflare status API.
type Client struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// New makes a Client for the components API at url.
// Every request is limited by timeout.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DisableKeepAlives:     true,
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

// URL returns the API URL.
func (c *Client) URL() string {
	return c.url
}

func readErrorBody(r io.Reader) string {
	bs, _ := io.ReadAll(io.LimitReader(r, ErrorBodyLimit))
	return strings.TrimSpace(string(bs))
}

// Components fetches all components.
func (c *Client) Components(ctx context.Context) ([]Component, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, cferr.New(cferr.ErrFetch, err, "invalid status URL")
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, cferr.New(cferr.ErrFetch, err, "")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 299 < resp.StatusCode {
		return nil, cferr.New(cferr.ErrFetch, nil, "unexpected status: %s: %s", resp.Status, readErrorBody(resp.Body))
	}

	var cr componentsResponse
	if err := json.NewDecoder(resp.Body).DecodeContext(ctx, &cr); err != nil {
		return nil, cferr.New(cferr.ErrFetch, err, "failed to parse response")
	}
	if cr.Components == nil {
		return nil, cferr.New(cferr.ErrFetch, nil, "failed to parse response: no components in the response")
	}

	return cr.Components, nil
}

// Select picks the statuses of the monitored regions from components.
// Regions not in components are not in the result.
func Select(components []Component, regions region.Table) region.Snapshot {
	s := make(region.Snapshot)

	for _, c := range components {
		code, ok := c.Code()
		if !ok {
			continue
		}
		r, ok := regions.Lookup(code)
		if !ok {
			continue
		}

		s[code] = region.RegionStatus{
			Location:    r.Location,
			Status:      c.Status,
			LastChanged: c.LastChanged(),
		}
	}

	return s
}

// Fetch fetches the current statuses of the monitored regions.
//
// It fails if none of the regions is in the response, because saving an empty snapshot makes every region look new in the next run.
func (c *Client) Fetch(ctx context.Context, regions region.Table) (region.Snapshot, error) {
	cs, err := c.Components(ctx)
	if err != nil {
		return nil, err
	}

	s := Select(cs, regions)
	if len(s) == 0 {
		return nil, cferr.New(cferr.ErrFetch, nil, "none of the %d monitored regions found in %d components", regions.Len(), len(cs))
	}

	return s, nil
}

// Groups returns child components of each named group component.
// Groups that do not exist in components are mapped to nil.
func Groups(components []Component, names []string) map[string][]Component {
	result := make(map[string][]Component, len(names))
	nameByID := make(map[string]string)

	for _, name := range names {
		result[name] = nil
	}

	for _, c := range components {
		if _, ok := result[c.Name]; c.Group && ok {
			nameByID[c.ID] = c.Name
		}
	}

	for _, c := range components {
		if c.GroupID == "" {
			continue
		}
		if name, ok := nameByID[c.GroupID]; ok {
			result[name] = append(result[name], c)
		}
	}

	return result
}

func (c Component) String() string {
	return fmt.Sprintf("%s: %s", c.Name, c.Status)
}
