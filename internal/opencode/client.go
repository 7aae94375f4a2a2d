// Package opencode talks to a running opencode server: it finds the server
// that owns the editor's working directory and drives its TUI prompt.
package opencode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	sdk "github.com/sst/opencode-sdk-go"
	"github.com/sst/opencode-sdk-go/option"
)

// DefaultTimeout bounds every request to the server.
const DefaultTimeout = 5 * time.Second

// DefaultUsername is the basic-auth user opencode expects when a server
// password is set.
const DefaultUsername = "opencode"

// ErrStatus is returned when the server answers with a non-2xx status.
var ErrStatus = errors.New("unexpected server status")

// TUI commands understood by tui.command.execute.
const (
	CommandPromptClear  = "prompt.clear"
	CommandPromptSubmit = "prompt.submit"
)

// PathInfo is the server's answer to GET /path.
type PathInfo struct {
	Directory string `json:"directory"`
	Worktree  string `json:"worktree"`
}

// Dir returns the directory the server works in.
func (p PathInfo) Dir() string {
	if p.Directory != "" {
		return p.Directory
	}
	return p.Worktree
}

// Command is a custom slash command configured on the server.
type Command struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Template    string `json:"template"`
	Agent       string `json:"agent,omitempty"`
}

// Agent is an agent the server can delegate to.
type Agent struct {
	Name        string
	Description string
	Mode        string
}

// Subagent reports whether the agent can be mentioned with @name.
func (a Agent) Subagent() bool {
	return a.Mode == string(sdk.AgentModeSubagent)
}

// Client is an HTTP client for one opencode server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sdk        *sdk.Client
	username   string
	password   string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at an explicit URL instead of localhost.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithPassword enables basic auth. An empty username means DefaultUsername.
func WithPassword(username, password string) Option {
	return func(c *Client) {
		if username == "" {
			username = DefaultUsername
		}
		c.username, c.password = username, password
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient returns a client for the server on host:port.
func NewClient(host string, port int, opts ...Option) *Client {
	if host == "" {
		host = "localhost"
	}
	c := &Client{
		baseURL: "http://" + host + ":" + strconv.Itoa(port),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	var transport http.RoundTripper = http.DefaultTransport
	if c.password != "" {
		transport = &basicAuth{username: c.username, password: c.password, next: transport}
	}
	c.httpClient = &http.Client{Timeout: c.timeout, Transport: transport}
	c.sdk = sdk.NewClient(
		option.WithBaseURL(c.baseURL),
		option.WithHTTPClient(c.httpClient),
		option.WithMaxRetries(0),
	)
	return c
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Path asks the server for its working directory.
func (c *Client) Path(ctx context.Context) (*PathInfo, error) {
	var info PathInfo
	if err := c.doJSON(ctx, http.MethodGet, "/path", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Commands lists the server's custom commands.
func (c *Client) Commands(ctx context.Context) ([]Command, error) {
	var cmds []Command
	if err := c.doJSON(ctx, http.MethodGet, "/command", nil, &cmds); err != nil {
		return nil, err
	}
	return cmds, nil
}

// Agents lists the server's agents.
func (c *Client) Agents(ctx context.Context) ([]Agent, error) {
	res, err := c.sdk.Agent.List(ctx, sdk.AgentListParams{})
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	agents := make([]Agent, 0, len(*res))
	for _, a := range *res {
		agents = append(agents, Agent{Name: a.Name, Description: a.Description, Mode: string(a.Mode)})
	}
	return agents, nil
}

type publishEvent struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// AppendPrompt appends text to the prompt in the server's TUI.
func (c *Client) AppendPrompt(ctx context.Context, text string) error {
	ev := publishEvent{Type: "tui.prompt.append", Properties: map[string]any{"text": text}}
	if err := c.doJSON(ctx, http.MethodPost, "/tui/publish", ev, nil); err != nil {
		return fmt.Errorf("append prompt: %w", err)
	}
	return nil
}

// ExecuteCommand runs a TUI command such as prompt.submit.
func (c *Client) ExecuteCommand(ctx context.Context, command string) error {
	ev := publishEvent{Type: "tui.command.execute", Properties: map[string]any{"command": command}}
	if err := c.doJSON(ctx, http.MethodPost, "/tui/publish", ev, nil); err != nil {
		return fmt.Errorf("execute %s: %w", command, err)
	}
	return nil
}

// ClearPrompt empties the TUI prompt.
func (c *Client) ClearPrompt(ctx context.Context) error {
	return c.ExecuteCommand(ctx, CommandPromptClear)
}

// SubmitPrompt submits whatever the TUI prompt holds.
func (c *Client) SubmitPrompt(ctx context.Context) error {
	return c.ExecuteCommand(ctx, CommandPromptSubmit)
}

// SendPrompt optionally clears the prompt, appends text, then optionally
// submits it. It stops at the first failing step.
func (c *Client) SendPrompt(ctx context.Context, text string, clear, submit bool) error {
	if clear {
		if err := c.ClearPrompt(ctx); err != nil {
			return err
		}
	}
	if err := c.AppendPrompt(ctx, text); err != nil {
		return err
	}
	if submit {
		return c.SubmitPrompt(ctx)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

type basicAuth struct {
	username, password string
	next               http.RoundTripper
}

func (b *basicAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(b.username, b.password)
	return b.next.RoundTrip(req)
}
