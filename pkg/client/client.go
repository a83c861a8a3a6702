// Package client connects to the pipeline daemon over its line-delimited
// JSON protocol. Each call dials a fresh connection, writes one request
// line and reads one reply line; the daemon owns project, item and
// workflow-state data when the tool runs in online mode.
package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jamesainslie/slate/pkg/slate/config"
)

// ErrDaemonUnavailable indicates the daemon could not be reached.
var ErrDaemonUnavailable = errors.New("daemon unavailable")

// ErrQueryRejected indicates the daemon refused or failed a query.
var ErrQueryRejected = errors.New("daemon rejected query")

// State is a workflow state as reported by the daemon.
type State struct {
	ShortName  string  `json:"shortName"`
	Name       string  `json:"name"`
	Completion float64 `json:"completionRatio"`
	Color      string  `json:"color"`
}

// Project is the daemon's current project.
type Project struct {
	ShortName string `json:"shortName"`
	Name      string `json:"name"`
	Path      string `json:"path"`
}

// Asset is an asset as reported by the daemon.
type Asset struct {
	ShortName string `json:"shortName"`
	Name      string `json:"name"`
	Group     string `json:"group"`
	Folder    string `json:"folder"`
}

// Shot is a shot as reported by the daemon.
type Shot struct {
	ShortName string  `json:"shortName"`
	Name      string  `json:"name"`
	Folder    string  `json:"folder"`
	Duration  float64 `json:"duration"`
}

// DaemonInfo describes the daemon answering a ping.
type DaemonInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// request is one query line sent to the daemon.
type request struct {
	Query string            `json:"query"`
	Args  map[string]string `json:"args,omitempty"`
}

// reply is one response line from the daemon.
type reply struct {
	Accepted bool            `json:"accepted"`
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
}

// Client talks to the pipeline daemon.
type Client struct {
	addr    string
	timeout time.Duration
}

// New creates a client from daemon configuration.
func New(cfg config.DaemonConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		addr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		timeout: timeout,
	}
}

// Online reports whether the daemon currently answers a ping.
func (c *Client) Online(ctx context.Context) bool {
	_, err := c.Ping(ctx)
	return err == nil
}

// Ping asks the daemon to identify itself.
func (c *Client) Ping(ctx context.Context) (*DaemonInfo, error) {
	var info DaemonInfo
	if err := c.query(ctx, "ping", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// States returns the workflow states configured on the daemon. Their short
// names extend the version-prefix grammar in online mode.
func (c *Client) States(ctx context.Context) ([]State, error) {
	var content struct {
		States []State `json:"states"`
	}
	if err := c.query(ctx, "getStates", nil, &content); err != nil {
		return nil, err
	}
	return content.States, nil
}

// Project returns the daemon's current project.
func (c *Client) Project(ctx context.Context) (*Project, error) {
	var project Project
	if err := c.query(ctx, "getCurrentProject", nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Asset looks up an asset by short name.
func (c *Client) Asset(ctx context.Context, shortName string) (*Asset, error) {
	var asset Asset
	args := map[string]string{"shortName": shortName}
	if err := c.query(ctx, "getAsset", args, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Shot looks up a shot by short name.
func (c *Client) Shot(ctx context.Context, shortName string) (*Shot, error) {
	var shot Shot
	args := map[string]string{"shortName": shortName}
	if err := c.query(ctx, "getShot", args, &shot); err != nil {
		return nil, err
	}
	return &shot, nil
}

// SetStatus updates the workflow state of an item's step on the daemon.
func (c *Client) SetStatus(ctx context.Context, itemShortName, itemType, step, state string) error {
	args := map[string]string{
		"shortName": itemShortName,
		"itemType":  itemType,
		"step":      step,
		"state":     state,
	}
	return c.query(ctx, "setStatus", args, nil)
}

// query performs one request/reply exchange on a fresh connection.
func (c *Client) query(ctx context.Context, name string, args map[string]string, content any) error {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	line, err := json.Marshal(request{Query: name, Args: args})
	if err != nil {
		return fmt.Errorf("encoding query %q: %w", name, err)
	}
	line = append(line, '\n')
	if _, err := conn.Write(line); err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}

	reader := bufio.NewReader(conn)
	respLine, err := reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}

	var resp reply
	if err := json.Unmarshal(respLine, &resp); err != nil {
		return fmt.Errorf("decoding reply to %q: %w", name, err)
	}
	if !resp.Accepted || !resp.Success {
		if resp.Message != "" {
			return fmt.Errorf("%w: %s: %s", ErrQueryRejected, name, resp.Message)
		}
		return fmt.Errorf("%w: %s", ErrQueryRejected, name)
	}

	if content != nil && len(resp.Content) > 0 {
		if err := json.Unmarshal(resp.Content, content); err != nil {
			return fmt.Errorf("decoding content of %q: %w", name, err)
		}
	}
	return nil
}
