package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"clipsaver/internal/api"
	"clipsaver/internal/config"
)

const clientTimeout = 10 * time.Second

// client talks to a running daemon's control API.
type client struct {
	baseURL string
	http    *http.Client
}

func newClient() (*client, error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return nil, err
	}
	if !cfg.HTTP.Enabled {
		return nil, fmt.Errorf("control API is disabled in the config (http.enabled: false)")
	}
	return newClientFor(fmt.Sprintf("http://127.0.0.1:%d", cfg.HTTP.Port)), nil
}

func newClientFor(baseURL string) *client {
	return &client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: clientTimeout},
	}
}

func (c *client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var out api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) Start(ctx context.Context) (*api.ControlResponse, error) {
	return c.control(ctx, "/api/v1/watcher/start")
}

func (c *client) Stop(ctx context.Context) (*api.ControlResponse, error) {
	return c.control(ctx, "/api/v1/watcher/stop")
}

func (c *client) control(ctx context.Context, path string) (*api.ControlResponse, error) {
	var out api.ControlResponse
	if err := c.do(ctx, http.MethodPost, path, &out); err != nil {
		return nil, err
	}
	if !out.OK {
		return &out, fmt.Errorf("%s", out.Error)
	}
	return &out, nil
}

func (c *client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response (HTTP %d): %w", path, resp.StatusCode, err)
	}
	return nil
}
