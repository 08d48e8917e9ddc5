// Package dockerctl drives local containers for the panel. It talks to
// the daemon's API socket and falls back to the docker CLI when the API
// is unreachable.
package dockerctl

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"knurl/panel"
)

const (
	pingTimeout = 2 * time.Second
	psFormat    = "{{.ID}}\t{{.Names}}\t{{.Status}}\t{{.Image}}"
)

// Client implements the panel's container operations. A nil api means CLI
// fallback mode.
type Client struct {
	api *client.Client
	log *slog.Logger
}

// New connects to the daemon named by the environment. When the API does
// not answer a ping the client degrades to shelling out, so the panel
// still works on hosts where only the docker binary is on the socket's
// access list.
func New(ctx context.Context, log *slog.Logger) *Client {
	api, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if _, perr := api.Ping(pingCtx); perr == nil {
			log.Info("docker API connected")
			return &Client{api: api, log: log}
		} else {
			err = perr
			api.Close()
		}
	}
	log.Warn("docker API unreachable, using docker CLI", "error", err)
	return &Client{log: log}
}

func (c *Client) Close() error {
	if c.api == nil {
		return nil
	}
	return c.api.Close()
}

// List returns all containers, running or not.
func (c *Client) List(ctx context.Context) ([]panel.Container, error) {
	if c.api == nil {
		return c.listCLI(ctx)
	}
	list, err := c.api.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, fmt.Errorf("dockerctl: list: %w", err)
	}
	out := make([]panel.Container, 0, len(list))
	for _, ct := range list {
		out = append(out, panel.Container{
			ID:     shortID(ct.ID),
			Name:   primaryName(ct.Names),
			Status: ct.Status,
			Image:  ct.Image,
		})
	}
	return out, nil
}

// Start, Stop and Restart accept a container id or name, like the CLI.

func (c *Client) Start(ctx context.Context, ident string) error {
	if c.api == nil {
		return c.runCLI(ctx, "start", ident)
	}
	if err := c.api.ContainerStart(ctx, ident, container.StartOptions{}); err != nil {
		return fmt.Errorf("dockerctl: start %s: %w", ident, err)
	}
	return nil
}

func (c *Client) Stop(ctx context.Context, ident string) error {
	if c.api == nil {
		return c.runCLI(ctx, "stop", ident)
	}
	if err := c.api.ContainerStop(ctx, ident, container.StopOptions{}); err != nil {
		return fmt.Errorf("dockerctl: stop %s: %w", ident, err)
	}
	return nil
}

func (c *Client) Restart(ctx context.Context, ident string) error {
	if c.api == nil {
		return c.runCLI(ctx, "restart", ident)
	}
	if err := c.api.ContainerRestart(ctx, ident, container.StopOptions{}); err != nil {
		return fmt.Errorf("dockerctl: restart %s: %w", ident, err)
	}
	return nil
}

func (c *Client) listCLI(ctx context.Context) ([]panel.Container, error) {
	out, err := exec.CommandContext(ctx, "docker", "ps", "-a", "--format", psFormat).Output()
	if err != nil {
		return nil, fmt.Errorf("dockerctl: docker ps: %w", err)
	}
	return parsePS(string(out))
}

// parsePS reads the tab-separated docker ps output.
func parsePS(out string) ([]panel.Container, error) {
	var list []panel.Container
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) != 4 {
			return nil, fmt.Errorf("dockerctl: malformed ps line %q", line)
		}
		list = append(list, panel.Container{
			ID:     shortID(parts[0]),
			Name:   parts[1],
			Status: parts[2],
			Image:  parts[3],
		})
	}
	return list, nil
}

func (c *Client) runCLI(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("dockerctl: docker %s: %v: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func primaryName(names []string) string {
	if len(names) == 0 {
		return "<unnamed>"
	}
	return strings.TrimPrefix(names[0], "/")
}
