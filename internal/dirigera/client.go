package dirigera

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nerrad567/dirigera-bridge/internal/infrastructure/config"
)

// requestTimeout bounds every hub API call. Polling runs on a long interval,
// so a stuck request should fail fast rather than stall the cycle.
const requestTimeout = 15 * time.Second

// Client talks to the DIRIGERA hub's REST API over HTTPS.
//
// The hub presents a self-signed certificate, so certificate verification is
// disabled, matching every DIRIGERA client implementation. Traffic never
// leaves the local network.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a hub client from configuration.
// It does not contact the hub; the first API call does.
func NewClient(cfg config.DirigeraConfig) *Client {
	return &Client{
		baseURL: fmt.Sprintf("https://%s:%d/v1", cfg.IP, cfg.Port),
		token:   cfg.Token,
		http: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // hub uses a self-signed cert on the LAN
				},
			},
		},
	}
}

// Devices returns all devices known to the hub.
//
// A non-nil error means the query itself failed; callers must treat that
// differently from an empty slice.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/devices", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}

	var devices []Device
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", ErrRequestFailed, err)
	}

	return devices, nil
}

// EnvironmentSensors returns all environment sensor snapshots.
func (c *Client) EnvironmentSensors(ctx context.Context) ([]Device, error) {
	return c.devicesWhere(ctx, func(d Device) bool { return d.DeviceType == rawDeviceTypeEnvironmentSensor })
}

// MotionSensors returns all motion sensor snapshots.
func (c *Client) MotionSensors(ctx context.Context) ([]Device, error) {
	return c.devicesWhere(ctx, func(d Device) bool { return d.DeviceType == rawDeviceTypeMotionSensor })
}

// OpenCloseSensors returns all door/window sensor snapshots.
func (c *Client) OpenCloseSensors(ctx context.Context) ([]Device, error) {
	return c.devicesWhere(ctx, func(d Device) bool { return d.DeviceType == rawDeviceTypeOpenCloseSensor })
}

// Lights returns all light snapshots.
func (c *Client) Lights(ctx context.Context) ([]Device, error) {
	return c.devicesWhere(ctx, func(d Device) bool { return d.Type == rawTypeLight })
}

// AirPurifiers returns all air purifier snapshots.
func (c *Client) AirPurifiers(ctx context.Context) ([]Device, error) {
	return c.devicesWhere(ctx, func(d Device) bool { return d.Type == rawTypeAirPurifier })
}

// Outlets returns all outlet snapshots.
func (c *Client) Outlets(ctx context.Context) ([]Device, error) {
	return c.devicesWhere(ctx, func(d Device) bool { return d.Type == rawTypeOutlet })
}

// Controllers returns all remote/controller snapshots.
func (c *Client) Controllers(ctx context.Context) ([]Device, error) {
	return c.devicesWhere(ctx, func(d Device) bool { return d.Type == rawTypeController })
}

// devicesWhere lists all devices and filters client-side.
// The hub has no per-category endpoint; each category call is a full listing
// with a predicate, which keeps the poll source contract per-category.
func (c *Client) devicesWhere(ctx context.Context, keep func(Device) bool) ([]Device, error) {
	all, err := c.Devices(ctx)
	if err != nil {
		return nil, err
	}

	var out []Device
	for _, d := range all {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out, nil
}
